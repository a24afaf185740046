// Package types provides type definitions for structured data used throughout the profile generator.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// PathSeparator joins org node names into a full hierarchy path.
const PathSeparator = " / "

// MaxOrgDepth is the deepest level the org structure is expected to have.
const MaxOrgDepth = 6

// NodeType classifies a node of the organization tree
type NodeType string

// Node types, in hierarchy order
const (
	NodeBusinessBlock NodeType = "business_block"
	NodeDepartment    NodeType = "department"
	NodeSection       NodeType = "section"
	NodeGroup         NodeType = "group"
	NodeSubSection    NodeType = "sub_section"
	NodeFinalGroup    NodeType = "final_group"
)

var nodeTypesByDepth = []NodeType{
	NodeBusinessBlock,
	NodeDepartment,
	NodeSection,
	NodeGroup,
	NodeSubSection,
	NodeFinalGroup,
}

// NodeTypeForDepth returns the conventional node type for a zero-based depth.
// Depths beyond the last level map to final_group.
func NodeTypeForDepth(depth int) NodeType {
	if depth < 0 {
		depth = 0
	}
	if depth >= len(nodeTypesByDepth) {
		return NodeFinalGroup
	}
	return nodeTypesByDepth[depth]
}

// Valid reports whether t is one of the known node types
func (t NodeType) Valid() bool {
	for _, known := range nodeTypesByDepth {
		if t == known {
			return true
		}
	}
	return false
}

// Position is a position leaf attached to an org node
type Position struct {
	Title     string `json:"title"`
	Headcount int    `json:"headcount,omitempty"`
}

// Seats returns the number of people holding the position (at least one).
func (p Position) Seats() int {
	if p.Headcount > 0 {
		return p.Headcount
	}
	return 1
}

// OrgNode is one unit of the organization tree. A parent exclusively owns its
// children; the tree is read-only once built.
type OrgNode struct {
	Name      string     `json:"name"`
	Type      NodeType   `json:"type"`
	Children  []*OrgNode `json:"children,omitempty"`
	Positions []Position `json:"positions,omitempty"`

	parent *OrgNode
}

// AddChild appends child and makes n its parent.
func (n *OrgNode) AddChild(child *OrgNode) {
	child.parent = n
	n.Children = append(n.Children, child)
}

// Parent returns the owning node, or nil for the root.
func (n *OrgNode) Parent() *OrgNode {
	return n.parent
}

// IsRoot reports whether n has no parent.
func (n *OrgNode) IsRoot() bool {
	return n.parent == nil
}

// PathSegments walks from the root down to n and returns the names on the way.
// Unnamed nodes (the synthetic root) are skipped.
func (n *OrgNode) PathSegments() []string {
	var reversed []string
	for cur := n; cur != nil; cur = cur.parent {
		if cur.Name == "" {
			continue
		}
		reversed = append(reversed, cur.Name)
	}
	segments := make([]string, len(reversed))
	for i, name := range reversed {
		segments[len(reversed)-1-i] = name
	}
	return segments
}

// FullPath returns the hierarchy path of n joined with PathSeparator.
func (n *OrgNode) FullPath() string {
	return strings.Join(n.PathSegments(), PathSeparator)
}

// Depth returns the zero-based depth of n, ignoring the unnamed root.
func (n *OrgNode) Depth() int {
	return len(n.PathSegments()) - 1
}

// Headcount is the aggregated size of an org node
type Headcount struct {
	// DirectReports counts the seats of the positions attached to the node itself.
	DirectReports int `json:"direct_reports"`
	// SubordinateDepartments counts every descendant unit.
	SubordinateDepartments int `json:"subordinate_departments"`
	// TotalPositions counts seats in the whole subtree, the node included.
	TotalPositions int `json:"total_positions"`
}
