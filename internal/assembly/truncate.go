package assembly

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Truncate shortens text to at most limit characters, cutting at the last
// paragraph break, else line break, else space that keeps at least half of
// the budget. Text within budget, or a non-positive limit, is returned as is.
func Truncate(text string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text, false
	}

	runes := []rune(text)
	head := string(runes[:limit])
	minKeep := len(string(runes[:(limit+1)/2]))

	for _, sep := range []string{"\n\n", "\n", " "} {
		if i := strings.LastIndex(head, sep); i >= minKeep {
			return strings.TrimRight(head[:i], " \t\r\n"), true
		}
	}
	return head, true
}

// EstimateTokens approximates the token count of text as
// ceil(characters / charsPerToken).
func EstimateTokens(text string, charsPerToken float64) int {
	if text == "" {
		return 0
	}
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return int(math.Ceil(float64(utf8.RuneCountInString(text)) / charsPerToken))
}
