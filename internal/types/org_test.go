package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree() (root, block, dept, group *OrgNode) {
	root = &OrgNode{}
	block = &OrgNode{Name: "Operations Block", Type: NodeBusinessBlock}
	dept = &OrgNode{Name: "IT Department", Type: NodeDepartment}
	group = &OrgNode{Name: "Backend Group", Type: NodeGroup}
	root.AddChild(block)
	block.AddChild(dept)
	dept.AddChild(group)
	return root, block, dept, group
}

func TestOrgNode_Paths(t *testing.T) {
	root, block, dept, group := buildTree()

	assert.Equal(t, []string{"Operations Block", "IT Department", "Backend Group"}, group.PathSegments())
	assert.Equal(t, "Operations Block / IT Department / Backend Group", group.FullPath())
	assert.Equal(t, 2, group.Depth())
	assert.Equal(t, 0, block.Depth())
	assert.Equal(t, "Operations Block", block.FullPath())

	assert.Same(t, dept, group.Parent())
	assert.True(t, root.IsRoot())
	assert.False(t, block.IsRoot())
	assert.Empty(t, root.PathSegments())
	assert.Equal(t, "", root.FullPath())
}

func TestNodeTypeForDepth(t *testing.T) {
	tests := []struct {
		depth int
		want  NodeType
	}{
		{-1, NodeBusinessBlock},
		{0, NodeBusinessBlock},
		{1, NodeDepartment},
		{2, NodeSection},
		{3, NodeGroup},
		{4, NodeSubSection},
		{5, NodeFinalGroup},
		{9, NodeFinalGroup},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NodeTypeForDepth(tt.depth), "depth %d", tt.depth)
	}

	assert.True(t, NodeSection.Valid())
	assert.False(t, NodeType("division").Valid())
	assert.False(t, NodeType("").Valid())
}

func TestPosition_Seats(t *testing.T) {
	assert.Equal(t, 1, Position{Title: "CIO"}.Seats())
	assert.Equal(t, 4, Position{Title: "Accountant", Headcount: 4}.Seats())
	assert.Equal(t, 1, Position{Title: "Intern", Headcount: -2}.Seats())
}

func TestOrgNode_JSONOmitsParent(t *testing.T) {
	_, block, _, _ := buildTree()

	data, err := json.Marshal(block)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"Operations Block"`)
	assert.Contains(t, string(data), `"type":"business_block"`)
	assert.Contains(t, string(data), `"name":"Backend Group"`)
	assert.NotContains(t, string(data), "parent")
}
