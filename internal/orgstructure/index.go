// Package orgstructure loads the organization hierarchy and answers
// department and position lookups against it.
package orgstructure

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/logging"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/textmatch"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

// Index is the read-only view of the organization tree. It is built once and
// is safe for concurrent use.
type Index struct {
	root *types.OrgNode

	// nodes holds every named unit in document (pre-order) order
	nodes []*types.OrgNode

	byPath     map[string]*types.OrgNode
	byNormPath map[string]*types.OrgNode
	byName     map[string][]*types.OrgNode
	byNormName map[string][]*types.OrgNode

	// distinct names and paths, in document order, for fuzzy matching
	names []string
	paths []string

	headcounts map[*types.OrgNode]types.Headcount

	threshold float64
	logger    logrus.FieldLogger
}

// Option configures Build
type Option func(*Index)

// WithThreshold sets the minimum similarity for the fuzzy lookup tier.
func WithThreshold(threshold float64) Option {
	return func(idx *Index) {
		if threshold > 0 && threshold <= 1 {
			idx.threshold = threshold
		}
	}
}

// WithLogger sets the logger used for lookup diagnostics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(idx *Index) {
		idx.logger = logger
	}
}

// Load reads and indexes the org structure file at path.
func Load(path string, opts ...Option) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read org structure: %w", err)
	}
	idx, err := Build(data, opts...)
	if err != nil {
		var mErr *MalformedSourceError
		if errors.As(err, &mErr) {
			mErr.Path = path
		}
		return nil, err
	}
	return idx, nil
}

// Build parses source and indexes every unit by full path and by name.
// Headcounts are aggregated once here.
func Build(source []byte, opts ...Option) (*Index, error) {
	root, err := parseTree(source)
	if err != nil {
		return nil, err
	}

	idx := &Index{
		root:       root,
		byPath:     make(map[string]*types.OrgNode),
		byNormPath: make(map[string]*types.OrgNode),
		byName:     make(map[string][]*types.OrgNode),
		byNormName: make(map[string][]*types.OrgNode),
		headcounts: make(map[*types.OrgNode]types.Headcount),
		threshold:  textmatch.DefaultThreshold,
	}
	for _, opt := range opts {
		opt(idx)
	}
	idx.logger = logging.Component(idx.logger, "orgstructure")

	if err := idx.indexTree(); err != nil {
		return nil, err
	}
	sumHeadcount(root, idx.headcounts)

	idx.logger.WithFields(logrus.Fields{
		"units":     len(idx.nodes),
		"positions": idx.headcounts[root].TotalPositions,
	}).Debug("Org structure indexed")

	return idx, nil
}

func (idx *Index) indexTree() error {
	seenName := make(map[string]bool)
	var walk func(n *types.OrgNode) error
	walk = func(n *types.OrgNode) error {
		path := n.FullPath()
		if _, dup := idx.byPath[path]; dup {
			return malformed("duplicate path %q", path)
		}
		idx.nodes = append(idx.nodes, n)
		idx.byPath[path] = n
		if np := normalizePath(path); idx.byNormPath[np] == nil {
			idx.byNormPath[np] = n
		}
		idx.paths = append(idx.paths, path)
		idx.byName[n.Name] = append(idx.byName[n.Name], n)

		norm := textmatch.Normalize(n.Name)
		idx.byNormName[norm] = append(idx.byNormName[norm], n)
		if !seenName[norm] {
			seenName[norm] = true
			idx.names = append(idx.names, n.Name)
		}

		for _, child := range n.Children {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}

	for _, top := range idx.root.Children {
		if err := walk(top); err != nil {
			return err
		}
	}
	if len(idx.nodes) == 0 {
		return malformed("missing root: no units")
	}
	return nil
}

// ComputeHeadcount returns the aggregated headcount of node. Nodes that do not
// belong to the index are aggregated on the fly.
func (idx *Index) ComputeHeadcount(node *types.OrgNode) types.Headcount {
	if node == nil {
		return types.Headcount{}
	}
	if hc, ok := idx.headcounts[node]; ok {
		return hc
	}
	return sumHeadcount(node, nil)
}

// sumHeadcount aggregates n bottom-up, recording every subtree in memo when
// memo is non-nil.
func sumHeadcount(n *types.OrgNode, memo map[*types.OrgNode]types.Headcount) types.Headcount {
	hc := types.Headcount{}
	for _, p := range n.Positions {
		hc.DirectReports += p.Seats()
	}
	hc.TotalPositions = hc.DirectReports
	for _, child := range n.Children {
		ch := sumHeadcount(child, memo)
		hc.SubordinateDepartments += 1 + ch.SubordinateDepartments
		hc.TotalPositions += ch.TotalPositions
	}
	if memo != nil {
		memo[n] = hc
	}
	return hc
}

// Len returns the number of indexed units.
func (idx *Index) Len() int {
	return len(idx.nodes)
}

// Nodes returns every unit in document order.
func (idx *Index) Nodes() []*types.OrgNode {
	out := make([]*types.OrgNode, len(idx.nodes))
	copy(out, idx.nodes)
	return out
}

// Roots returns the top-level units.
func (idx *Index) Roots() []*types.OrgNode {
	out := make([]*types.OrgNode, len(idx.root.Children))
	copy(out, idx.root.Children)
	return out
}

// Node returns the unit with exactly this full path.
func (idx *Index) Node(path string) (*types.OrgNode, bool) {
	n, ok := idx.byPath[path]
	return n, ok
}

// Totals returns the headcount of the whole organization.
func (idx *Index) Totals() types.Headcount {
	return idx.headcounts[idx.root]
}

// Names returns the distinct unit names in document order.
func (idx *Index) Names() []string {
	out := make([]string, len(idx.names))
	copy(out, idx.names)
	return out
}

func normalizePath(path string) string {
	segments := textmatch.SplitPath(path)
	for i, s := range segments {
		segments[i] = textmatch.Normalize(s)
	}
	return strings.Join(segments, "/")
}
