// Package textmatch provides name normalization and similarity scoring for org units,
// departments and position titles.
package textmatch

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// replacements maps typographic variants to their plain forms before folding
var replacements = strings.NewReplacer(
	"ё", "е",
	"Ё", "Е",
	"«", " ",
	"»", " ",
	"\"", " ",
	"'", " ",
	"“", " ",
	"”", " ",
	"–", " ",
	"—", " ",
	"\u00a0", " ",
)

// stopwords are dropped by Tokens; they carry no meaning for unit names
var stopwords = map[string]bool{
	"и":   true,
	"в":   true,
	"по":  true,
	"с":   true,
	"of":  true,
	"the": true,
	"and": true,
	"for": true,
}

// Normalize folds case, applies NFKC, unifies typographic characters and
// collapses whitespace. Punctuation other than '/' becomes a space.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	s = replacements.Replace(s)
	s = cases.Fold().String(s)

	var sb strings.Builder
	sb.Grow(len(s))
	space := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '/' || r == '%':
			sb.WriteRune(r)
			space = false
		default:
			if !space {
				sb.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// Tokens splits the normalized form of s into words, dropping stopwords.
func Tokens(s string) []string {
	fields := strings.Fields(strings.ReplaceAll(Normalize(s), "/", " "))
	out := fields[:0]
	for _, f := range fields {
		if stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Equal reports whether a and b are identical after normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// SplitPath splits a hierarchy path on '/' and trims every segment.
// Empty segments are dropped.
func SplitPath(path string) []string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
