package kpi

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/config"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/logging"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/textmatch"
)

// MapTier names the mapper stage that produced a department key
type MapTier string

// Mapper tiers, in the order they are tried
const (
	TierExact     MapTier = "exact"
	TierAlias     MapTier = "alias"
	TierFuzzy     MapTier = "fuzzy"
	TierUnmatched MapTier = "unmatched"
)

// MapResult is the outcome of mapping a department name to a KPI document key
type MapResult struct {
	Query string
	Key   string
	Tier  MapTier
	Score float64
	// Matched is the input form that produced the match: the query itself
	// or one of its path segments.
	Matched     string
	Suggestions []string
}

// Found reports whether a KPI document key was selected.
func (r MapResult) Found() bool {
	return r.Tier != TierUnmatched && r.Key != ""
}

type aliasRule struct {
	pattern *regexp.Regexp
	key     string
}

// Mapper maps free-text department names to KPI document keys. It is
// immutable after construction.
type Mapper struct {
	keys      []string
	exact     map[string]bool
	aliases   []aliasRule
	threshold float64
	logger    logrus.FieldLogger
}

// NewMapper creates a mapper over the known department keys. Aliases whose
// target is not a known key, or whose pattern does not compile, are dropped.
func NewMapper(keys []string, aliases []config.Alias, threshold float64, logger logrus.FieldLogger) *Mapper {
	if threshold <= 0 || threshold > 1 {
		threshold = textmatch.DefaultThreshold
	}
	m := &Mapper{
		exact:     make(map[string]bool, len(keys)),
		threshold: threshold,
		logger:    logging.Component(logger, "kpi.mapper"),
	}

	for _, k := range keys {
		if k == "" || m.exact[k] {
			continue
		}
		m.exact[k] = true
		m.keys = append(m.keys, k)
	}
	sort.Strings(m.keys)

	var ignored []string
	for _, a := range aliases {
		key, ok := m.lookupKey(a.Department)
		if !ok {
			ignored = append(ignored, a.Department)
			continue
		}
		re, err := regexp.Compile(a.Pattern)
		if err != nil {
			m.logger.WithError(err).WithField("pattern", a.Pattern).Warn("Skipping department alias with invalid pattern")
			continue
		}
		m.aliases = append(m.aliases, aliasRule{pattern: re, key: key})
	}
	if len(ignored) > 0 {
		m.logger.WithField("targets", ignored).Debug("Department aliases point at unknown KPI documents, ignored")
	}

	return m
}

// Keys returns the known department keys in sorted order.
func (m *Mapper) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// FindKPIFile maps department to a KPI document key. Tiers are tried in
// order (exact, alias, fuzzy) and the first hit wins. A path input is tried
// as given and then segment by segment from the deepest one up.
func (m *Mapper) FindKPIFile(department string) MapResult {
	res := MapResult{Query: department, Tier: TierUnmatched}
	query := strings.TrimSpace(department)
	if query == "" {
		return res
	}

	inputs := []string{query}
	if strings.Contains(query, "/") {
		segments := textmatch.SplitPath(query)
		for i := len(segments) - 1; i >= 0; i-- {
			inputs = append(inputs, segments[i])
		}
	}

	for _, in := range inputs {
		if key, ok := m.lookupKey(in); ok {
			return m.matched(res, in, key, TierExact, 1)
		}
	}
	for _, in := range inputs {
		for _, a := range m.aliases {
			if a.pattern.MatchString(in) {
				return m.matched(res, in, a.key, TierAlias, 1)
			}
		}
	}
	for _, in := range inputs {
		if best, ok := textmatch.Best(in, m.keys, m.threshold); ok {
			return m.matched(res, in, best.Value, TierFuzzy, best.Score)
		}
	}

	res.Suggestions = textmatch.Suggest(query, m.keys, 3)
	m.logger.WithFields(logrus.Fields{
		"department":  department,
		"tiers":       "exact,alias,fuzzy",
		"threshold":   m.threshold,
		"suggestions": res.Suggestions,
	}).Warn("No KPI document for department")
	return res
}

// FindKPIFileErr is FindKPIFile returning ErrUnmatched on a miss.
func (m *Mapper) FindKPIFileErr(department string) (string, error) {
	res := m.FindKPIFile(department)
	if !res.Found() {
		return "", fmt.Errorf("%w: %q", ErrUnmatched, department)
	}
	return res.Key, nil
}

func (m *Mapper) matched(res MapResult, input, key string, tier MapTier, score float64) MapResult {
	res.Key = key
	res.Tier = tier
	res.Score = score
	res.Matched = input
	m.logger.WithFields(logrus.Fields{
		"department": res.Query,
		"key":        key,
		"tier":       tier,
		"score":      score,
	}).Debug("Department mapped to KPI document")
	return res
}

// lookupKey matches case-sensitively first, then ignoring case.
func (m *Mapper) lookupKey(in string) (string, bool) {
	if m.exact[in] {
		return in, true
	}
	for _, k := range m.keys {
		if strings.EqualFold(k, in) {
			return k, true
		}
	}
	return "", false
}
