package kpi

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/logging"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/textmatch"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

// ResolverOptions configures a Resolver
type ResolverOptions struct {
	// PositionThreshold is the minimum similarity for a fuzzy title match
	PositionThreshold float64
	// UnitThreshold is the minimum similarity between a unit path segment
	// and a holder hint
	UnitThreshold float64
	Policy        types.UnresolvedPolicy
	Logger        logrus.FieldLogger
}

// Resolver maps a position to the employee column of a KPI document and
// filters the rows that apply. It never picks one of several tied holders
// on its own.
type Resolver struct {
	positionThreshold float64
	unitThreshold     float64
	policy            types.UnresolvedPolicy
	logger            logrus.FieldLogger
}

// NewResolver creates a resolver; zero options take the defaults.
func NewResolver(opts ResolverOptions) *Resolver {
	r := &Resolver{
		positionThreshold: opts.PositionThreshold,
		unitThreshold:     opts.UnitThreshold,
		policy:            opts.Policy,
		logger:            logging.Component(opts.Logger, "kpi.resolver"),
	}
	if r.positionThreshold <= 0 || r.positionThreshold > 1 {
		r.positionThreshold = textmatch.DefaultThreshold
	}
	if r.unitThreshold <= 0 || r.unitThreshold > 1 {
		r.unitThreshold = textmatch.DefaultThreshold
	}
	if r.policy != types.PolicyEmpty {
		r.policy = types.PolicyCorporateOnly
	}
	return r
}

// Policy returns the fallback applied to unresolved positions.
func (r *Resolver) Policy() types.UnresolvedPolicy {
	return r.policy
}

// candidate is a title lookup result before disambiguation
type candidate struct {
	titles     []string
	holders    []types.Holder
	confidence types.MatchConfidence
}

// Resolve selects the employee column for position. unitPath is the org path
// of the position, outermost first; its segments are tried deepest first to
// tell apart holders of a shared title. employeeHint only settles a tie that
// remains after that, and only when it names exactly one tied holder.
func (r *Resolver) Resolve(doc *types.KpiDocument, position string, unitPath []string, employeeHint string) types.PositionResolution {
	res := types.PositionResolution{Position: position, Confidence: types.MatchUnresolved}
	if doc == nil {
		return r.fallback(doc, res, "no KPI document", unitPath)
	}
	if strings.TrimSpace(position) == "" {
		return r.fallback(doc, res, "empty position", unitPath)
	}

	cand, ok := r.lookupTitle(doc, position)
	if !ok {
		return r.fallback(doc, res, "title not found", unitPath)
	}
	res.MatchedTitle = strings.Join(cand.titles, ", ")

	if len(cand.holders) == 1 {
		res.MatchedEmployee = cand.holders[0].Employee
		res.Confidence = cand.confidence
		return r.filtered(doc, res)
	}

	if h, ok := r.disambiguate(cand.holders, unitPath); ok {
		res.MatchedEmployee = h.Employee
		res.MatchedHint = h.Hint
		res.Confidence = types.MatchUnitDisambiguated
		return r.filtered(doc, res)
	}

	if h, ok := byEmployeeHint(cand.holders, employeeHint); ok {
		res.MatchedEmployee = h.Employee
		res.MatchedHint = h.Hint
		res.Confidence = types.MatchExact
		res.EmployeeHintUsed = true
		return r.filtered(doc, res)
	}

	for _, h := range cand.holders {
		res.AmbiguousCandidates = append(res.AmbiguousCandidates, h.Employee)
	}
	return r.fallback(doc, res, "ambiguous title", unitPath)
}

// lookupTitle finds the holders of position: normalized title, then fuzzy.
// Titles equal after normalization are pooled, and so is every title that
// clears the fuzzy threshold, which leaves the choice to disambiguation.
func (r *Resolver) lookupTitle(doc *types.KpiDocument, position string) (candidate, bool) {
	norm := textmatch.Normalize(position)
	var exact candidate
	for _, title := range doc.PositionOrder {
		if textmatch.Normalize(title) == norm {
			exact.titles = append(exact.titles, title)
			exact.holders = append(exact.holders, doc.PositionsMap[title].Holders()...)
		}
	}
	if len(exact.titles) > 0 {
		exact.confidence = types.MatchExact
		exact.holders = collapseSameEmployee(exact.holders)
		return exact, true
	}

	ranked := textmatch.Rank(position, doc.PositionOrder, r.positionThreshold)
	if len(ranked) == 0 {
		return candidate{}, false
	}
	fuzzy := candidate{confidence: types.MatchFuzzy}
	for _, s := range ranked {
		fuzzy.titles = append(fuzzy.titles, s.Value)
		fuzzy.holders = append(fuzzy.holders, doc.PositionsMap[s.Value].Holders()...)
	}
	fuzzy.holders = collapseSameEmployee(fuzzy.holders)
	if len(fuzzy.titles) > 1 {
		r.logger.WithFields(logrus.Fields{
			"position": position,
			"titles":   fuzzy.titles,
			"score":    ranked[0].Score,
		}).Warn("Position is similar to several KPI titles")
	}
	return fuzzy, true
}

// collapseSameEmployee reduces holders that all name the same employee to
// one; pooled titles held by a single person are not ambiguous.
func collapseSameEmployee(holders []types.Holder) []types.Holder {
	for _, h := range holders[1:] {
		if h.Employee != holders[0].Employee {
			return holders
		}
	}
	return holders[:1]
}

// disambiguate matches unit path segments, deepest first, against holder
// hints. A segment matching exactly one holder decides. A segment matching
// several decides only when exactly one of them matches it exactly;
// otherwise the search stops.
func (r *Resolver) disambiguate(holders []types.Holder, unitPath []string) (types.Holder, bool) {
	for i := len(unitPath) - 1; i >= 0; i-- {
		segment := strings.TrimSpace(unitPath[i])
		if segment == "" {
			continue
		}

		var matched []int
		var exact []int
		for j, h := range holders {
			score := hintScore(segment, h.Hint)
			if score+1e-9 < r.unitThreshold {
				continue
			}
			matched = append(matched, j)
			if score >= 1 {
				exact = append(exact, j)
			}
		}

		switch {
		case len(matched) == 1:
			return holders[matched[0]], true
		case len(exact) == 1:
			return holders[exact[0]], true
		case len(matched) > 1:
			return types.Holder{}, false
		}
	}
	return types.Holder{}, false
}

// hintScore rates how well a unit path segment matches a holder hint. A hint
// may be the unit name or its suffix.
func hintScore(segment, hint string) float64 {
	ns, nh := textmatch.Normalize(segment), textmatch.Normalize(hint)
	if ns == "" || nh == "" {
		return 0
	}
	if ns == nh || strings.HasSuffix(ns, " "+nh) {
		return 1
	}
	return textmatch.Similarity(segment, hint)
}

func byEmployeeHint(holders []types.Holder, hint string) (types.Holder, bool) {
	norm := textmatch.Normalize(hint)
	if norm == "" {
		return types.Holder{}, false
	}
	found := -1
	for i, h := range holders {
		if textmatch.Normalize(h.Employee) != norm {
			continue
		}
		if found >= 0 {
			return types.Holder{}, false
		}
		found = i
	}
	if found < 0 {
		return types.Holder{}, false
	}
	return holders[found], true
}

func (r *Resolver) filtered(doc *types.KpiDocument, res types.PositionResolution) types.PositionResolution {
	res.FilteredRows = FilterRows(doc.Rows, res.MatchedEmployee)
	r.logger.WithFields(logrus.Fields{
		"department_key": doc.DepartmentKey,
		"position":       res.Position,
		"employee":       res.MatchedEmployee,
		"confidence":     res.Confidence,
		"rows":           len(res.FilteredRows),
		"hint_used":      res.EmployeeHintUsed,
	}).Debug("KPI position resolved")
	return res
}

// fallback applies the unresolved policy: corporate rows only, or nothing.
func (r *Resolver) fallback(doc *types.KpiDocument, res types.PositionResolution, reason string, unitPath []string) types.PositionResolution {
	res.Confidence = types.MatchUnresolved
	res.MatchedEmployee = ""
	res.Fallback = r.policy

	var rows []types.KpiRow
	key := ""
	if doc != nil {
		rows = doc.Rows
		key = doc.DepartmentKey
	}
	if r.policy == types.PolicyCorporateOnly {
		res.FilteredRows = CorporateRows(rows)
	} else {
		res.FilteredRows = []types.KpiRow{}
	}

	r.logger.WithFields(logrus.Fields{
		"department_key": key,
		"position":       res.Position,
		"unit_path":      unitPath,
		"reason":         reason,
		"candidates":     res.AmbiguousCandidates,
		"policy":         r.policy,
		"rows":           len(res.FilteredRows),
	}).Warn("KPI position unresolved, applying fallback")
	return res
}
