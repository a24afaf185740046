package orgstructure

import (
	"encoding/json"

	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

type excerptNode struct {
	Name            string           `json:"name"`
	Type            types.NodeType   `json:"type"`
	Path            string           `json:"path,omitempty"`
	Headcount       types.Headcount  `json:"headcount"`
	Positions       []types.Position `json:"positions,omitempty"`
	Children        []excerptNode    `json:"children,omitempty"`
	OmittedChildren int              `json:"omitted_children,omitempty"`
}

// Excerpt renders node and its descendants down to maxDepth levels as
// indented JSON. A negative maxDepth renders the whole subtree. Returns ""
// for a nil node.
func (idx *Index) Excerpt(node *types.OrgNode, maxDepth int) string {
	if node == nil {
		return ""
	}
	view := idx.excerpt(node, maxDepth)
	view.Path = node.FullPath()

	out, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return ""
	}
	return string(out)
}

func (idx *Index) excerpt(n *types.OrgNode, depthLeft int) excerptNode {
	view := excerptNode{
		Name:      n.Name,
		Type:      n.Type,
		Headcount: idx.ComputeHeadcount(n),
		Positions: n.Positions,
	}
	if depthLeft == 0 {
		view.OmittedChildren = len(n.Children)
		return view
	}
	for _, child := range n.Children {
		view.Children = append(view.Children, idx.excerpt(child, depthLeft-1))
	}
	return view
}
