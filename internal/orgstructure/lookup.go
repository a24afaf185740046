package orgstructure

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/textmatch"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

// MatchTier names the lookup stage that produced a match
type MatchTier string

// Lookup tiers, strongest first
const (
	TierFullPath   MatchTier = "full_path"
	TierExact      MatchTier = "exact"
	TierNormalized MatchTier = "normalized"
	TierFuzzy      MatchTier = "fuzzy"
	TierNone       MatchTier = "none"
)

// suggestionLimit bounds the "did you mean" list attached to misses
const suggestionLimit = 3

// Lookup is the outcome of a department search
type Lookup struct {
	Query string
	Found bool
	Node  *types.OrgNode
	Tier  MatchTier
	Score float64
	// Candidates lists the other full paths that matched equally well
	Candidates []string
	// Suggestions lists close unit names when nothing matched
	Suggestions []string
}

// Path returns the full path of the matched unit, or "".
func (l Lookup) Path() string {
	if l.Node == nil {
		return ""
	}
	return l.Node.FullPath()
}

// Segments returns the path segments of the matched unit, or nil.
func (l Lookup) Segments() []string {
	if l.Node == nil {
		return nil
	}
	return l.Node.PathSegments()
}

// PositionLookup is the outcome of a position search inside a department.
// When the position is not found Node is the department unit itself.
type PositionLookup struct {
	Department    Lookup
	Node          *types.OrgNode
	Position      types.Position
	PositionFound bool
	Tier          MatchTier
	Score         float64
}

// Path returns the full path of the unit holding the position, or of the
// department on a miss.
func (p PositionLookup) Path() string {
	if p.Node == nil {
		return ""
	}
	return p.Node.FullPath()
}

// FindDepartmentPath resolves a department name or full path to a unit.
// Tiers: exact full path, exact name, normalized name, fuzzy name. Several
// units sharing a name resolve to the shallowest, then the first in document
// order; the rest are reported as Candidates.
func (idx *Index) FindDepartmentPath(name string) Lookup {
	query := strings.TrimSpace(name)
	res := Lookup{Query: name, Tier: TierNone}
	if query == "" {
		return res
	}

	if n, ok := idx.byPath[query]; ok {
		return found(res, n, TierFullPath, 1)
	}

	if strings.Contains(query, "/") {
		return idx.findByPath(res, query)
	}

	if nodes := idx.byName[query]; len(nodes) > 0 {
		return idx.pick(res, nodes, TierExact, 1)
	}
	if nodes := idx.byNormName[textmatch.Normalize(query)]; len(nodes) > 0 {
		return idx.pick(res, nodes, TierNormalized, 1)
	}

	best, ok := textmatch.Best(query, idx.names, idx.threshold)
	if ok {
		nodes := idx.byNormName[textmatch.Normalize(best.Value)]
		return idx.pick(res, nodes, TierFuzzy, best.Score)
	}

	return idx.miss(res, best)
}

func (idx *Index) findByPath(res Lookup, query string) Lookup {
	if n := idx.byNormPath[normalizePath(query)]; n != nil {
		return found(res, n, TierFullPath, 1)
	}

	canonical := strings.Join(textmatch.SplitPath(query), types.PathSeparator)
	best, ok := textmatch.Best(canonical, idx.paths, idx.threshold)
	if ok {
		return found(res, idx.byPath[best.Value], TierFuzzy, best.Score)
	}
	return idx.miss(res, best)
}

// FindDepartmentPathErr is FindDepartmentPath returning ErrNotFound on a miss.
func (idx *Index) FindDepartmentPathErr(name string) (*types.OrgNode, error) {
	res := idx.FindDepartmentPath(name)
	if !res.Found {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return res.Node, nil
}

func found(res Lookup, n *types.OrgNode, tier MatchTier, score float64) Lookup {
	res.Found = true
	res.Node = n
	res.Tier = tier
	res.Score = score
	return res
}

// pick chooses among units sharing a name: shallowest first, document order
// breaks depth ties.
func (idx *Index) pick(res Lookup, nodes []*types.OrgNode, tier MatchTier, score float64) Lookup {
	ordered := make([]*types.OrgNode, len(nodes))
	copy(ordered, nodes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Depth() < ordered[j].Depth()
	})

	res = found(res, ordered[0], tier, score)
	if len(ordered) > 1 {
		for _, other := range ordered[1:] {
			res.Candidates = append(res.Candidates, other.FullPath())
		}
		idx.logger.WithFields(logrus.Fields{
			"department": res.Query,
			"chosen":     res.Path(),
			"candidates": res.Candidates,
		}).Warn("Department name matches several units, using the shallowest")
	}
	return res
}

func (idx *Index) miss(res Lookup, best textmatch.Scored) Lookup {
	res.Suggestions = textmatch.Suggest(res.Query, idx.names, suggestionLimit)
	fields := logrus.Fields{
		"department":  res.Query,
		"threshold":   idx.threshold,
		"suggestions": res.Suggestions,
	}
	if best.Index >= 0 {
		fields["best_candidate"] = best.Value
		fields["best_score"] = best.Score
	}
	idx.logger.WithFields(fields).Warn("Department not found in org structure")
	return res
}

type positionHit struct {
	node     *types.OrgNode
	position types.Position
}

// FindPosition resolves department, then searches its subtree for the
// position title: exact, normalized, then fuzzy. Units closer to the
// department win. A miss keeps the department unit with PositionFound false.
func (idx *Index) FindPosition(department, position string) PositionLookup {
	dept := idx.FindDepartmentPath(department)
	res := PositionLookup{Department: dept, Node: dept.Node, Tier: TierNone}
	title := strings.TrimSpace(position)
	if !dept.Found || title == "" {
		return res
	}

	hits := subtreePositions(dept.Node)

	for _, h := range hits {
		if h.position.Title == title {
			return positionFound(res, h, TierExact, 1)
		}
	}
	normTitle := textmatch.Normalize(title)
	for _, h := range hits {
		if textmatch.Normalize(h.position.Title) == normTitle {
			return positionFound(res, h, TierNormalized, 1)
		}
	}

	titles := make([]string, len(hits))
	for i, h := range hits {
		titles[i] = h.position.Title
	}
	if best, ok := textmatch.Best(title, titles, idx.threshold); ok {
		return positionFound(res, hits[best.Index], TierFuzzy, best.Score)
	}

	idx.logger.WithFields(logrus.Fields{
		"department": dept.Path(),
		"position":   position,
		"positions":  len(hits),
	}).Warn("Position not found in department, using department-level data")
	return res
}

func positionFound(res PositionLookup, h positionHit, tier MatchTier, score float64) PositionLookup {
	res.Node = h.node
	res.Position = h.position
	res.PositionFound = true
	res.Tier = tier
	res.Score = score
	return res
}

// subtreePositions lists the positions under n breadth-first, so shallower
// units come before deeper ones and siblings keep document order.
func subtreePositions(n *types.OrgNode) []positionHit {
	var hits []positionHit
	queue := []*types.OrgNode{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range cur.Positions {
			hits = append(hits, positionHit{node: cur, position: p})
		}
		queue = append(queue, cur.Children...)
	}
	return hits
}
