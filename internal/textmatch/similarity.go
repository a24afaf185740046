package textmatch

import (
	"sort"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultThreshold is the minimum similarity accepted for a fuzzy match
const DefaultThreshold = 0.8

// scoreEpsilon is the tolerance under which two scores count as a tie
const scoreEpsilon = 1e-9

// Scored is a candidate together with its similarity to a query
type Scored struct {
	Index int
	Value string
	Score float64
}

// Ratio returns the edit-distance similarity of the normalized forms of a and
// b, in [0,1]. Empty input never matches.
func Ratio(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	longest := max(utf8.RuneCountInString(na), utf8.RuneCountInString(nb))
	dist := fuzzy.LevenshteinDistance(na, nb)
	return 1 - float64(dist)/float64(longest)
}

// TokenOverlap returns the Jaccard overlap of the token sets of a and b.
func TokenOverlap(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for tok := range ta {
		if tb[tok] {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	return float64(shared) / float64(union)
}

// Similarity is the larger of Ratio and TokenOverlap.
func Similarity(a, b string) float64 {
	return max(Ratio(a, b), TokenOverlap(a, b))
}

// Rank scores every candidate against query and keeps those at or above
// threshold, best first. Equal scores keep candidate order.
func Rank(query string, candidates []string, threshold float64) []Scored {
	scored := make([]Scored, 0, len(candidates))
	for i, c := range candidates {
		s := Similarity(query, c)
		if s+scoreEpsilon < threshold {
			continue
		}
		scored = append(scored, Scored{Index: i, Value: c, Score: s})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score+scoreEpsilon
	})
	return scored
}

// Best returns the single best candidate at or above threshold. ok is false
// when nothing clears the threshold, or when candidates that differ after
// normalization share the top score.
func Best(query string, candidates []string, threshold float64) (best Scored, ok bool) {
	ranked := Rank(query, candidates, threshold)
	if len(ranked) == 0 {
		return Scored{Index: -1}, false
	}
	best = ranked[0]
	top := Normalize(best.Value)
	for _, other := range TopTies(ranked) {
		if Normalize(other.Value) != top {
			return best, false
		}
	}
	return best, true
}

// TopTies returns the leading entries of a ranked list that share the top score.
func TopTies(ranked []Scored) []Scored {
	if len(ranked) == 0 {
		return nil
	}
	n := 1
	for n < len(ranked) && ranked[0].Score-ranked[n].Score <= scoreEpsilon {
		n++
	}
	return ranked[:n]
}

// Suggest returns up to limit candidates resembling query, for diagnostics.
// Subsequence matches come first, then the closest names by similarity.
func Suggest(query string, candidates []string, limit int) []string {
	if limit <= 0 || query == "" {
		return nil
	}
	ranks := fuzzy.RankFindNormalizedFold(query, candidates)
	sort.Sort(ranks)

	seen := make(map[string]bool)
	out := make([]string, 0, limit)
	for _, r := range ranks {
		if len(out) == limit {
			return out
		}
		if !seen[r.Target] {
			seen[r.Target] = true
			out = append(out, r.Target)
		}
	}
	for _, s := range Rank(query, candidates, 0.5) {
		if len(out) == limit {
			break
		}
		if !seen[s.Value] {
			seen[s.Value] = true
			out = append(out, s.Value)
		}
	}
	return out
}

func tokenSet(s string) map[string]bool {
	toks := Tokens(s)
	set := make(map[string]bool, len(toks))
	for _, t := range toks {
		set[t] = true
	}
	return set
}
