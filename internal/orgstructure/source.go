package orgstructure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/types"
)

// maxNesting guards against pathological documents; real structures are six
// levels deep.
const maxNesting = 64

// rawDocument accepts both source layouts: a nested tree under
// "organization" or a flat unit list under "units".
type rawDocument struct {
	Organization []rawNode `json:"organization"`
	Units        []rawNode `json:"units"`
}

type rawNode struct {
	ID        unitID        `json:"id"`
	ParentID  unitID        `json:"parent_id"`
	Name      string        `json:"name"`
	Type      string        `json:"type"`
	Positions []rawPosition `json:"positions"`
	Children  []rawNode     `json:"children"`
}

// unitID accepts string or numeric identifiers.
type unitID string

func (id *unitID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = unitID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("unit id must be a string or a number: %w", err)
	}
	*id = unitID(n.String())
	return nil
}

// rawPosition accepts either a bare title or {"title", "headcount"}.
type rawPosition types.Position

func (p *rawPosition) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var title string
		if err := json.Unmarshal(data, &title); err != nil {
			return err
		}
		*p = rawPosition{Title: title}
		return nil
	}
	var obj struct {
		Title     string `json:"title"`
		Name      string `json:"name"`
		Headcount int    `json:"headcount"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	title := obj.Title
	if title == "" {
		title = obj.Name
	}
	*p = rawPosition{Title: title, Headcount: obj.Headcount}
	return nil
}

// parseTree decodes source into a tree hanging from an unnamed root.
func parseTree(source []byte) (*types.OrgNode, error) {
	if len(bytes.TrimSpace(source)) == 0 {
		return nil, malformed("document is empty")
	}

	var doc rawDocument
	if err := json.Unmarshal(source, &doc); err != nil {
		return nil, &MalformedSourceError{Message: "invalid JSON", Cause: err}
	}

	root := &types.OrgNode{}
	switch {
	case len(doc.Organization) > 0 && len(doc.Units) > 0:
		return nil, malformed("document has both \"organization\" and \"units\"")
	case len(doc.Organization) > 0:
		for i := range doc.Organization {
			if err := attachNested(root, &doc.Organization[i], 0); err != nil {
				return nil, err
			}
		}
	case len(doc.Units) > 0:
		if err := attachFlat(root, doc.Units); err != nil {
			return nil, err
		}
	default:
		return nil, malformed("missing root: neither \"organization\" nor \"units\" has entries")
	}

	return root, nil
}

func attachNested(parent *types.OrgNode, raw *rawNode, depth int) error {
	if depth >= maxNesting {
		return malformed("nesting deeper than %d levels under %q", maxNesting, parent.FullPath())
	}
	node, err := newNode(raw, depth)
	if err != nil {
		return err
	}
	if err := adopt(parent, node); err != nil {
		return err
	}
	for i := range raw.Children {
		if err := attachNested(node, &raw.Children[i], depth+1); err != nil {
			return err
		}
	}
	return nil
}

// attachFlat rebuilds the tree from parent references. Units that cannot be
// reached from a root unit sit on a cycle.
func attachFlat(root *types.OrgNode, units []rawNode) error {
	byID := make(map[unitID]*rawNode, len(units))
	children := make(map[unitID][]unitID)
	var roots []unitID

	for i := range units {
		u := &units[i]
		if u.ID == "" {
			return malformed("unit %d (%q) has no id", i, u.Name)
		}
		if _, dup := byID[u.ID]; dup {
			return malformed("duplicate unit id %q", u.ID)
		}
		byID[u.ID] = u
	}

	for i := range units {
		u := &units[i]
		if u.ParentID == "" {
			roots = append(roots, u.ID)
			continue
		}
		if u.ParentID == u.ID {
			return malformed("cyclic reference: unit %q is its own parent", u.ID)
		}
		if _, ok := byID[u.ParentID]; !ok {
			return malformed("unit %q references unknown parent %q", u.ID, u.ParentID)
		}
		children[u.ParentID] = append(children[u.ParentID], u.ID)
	}

	if len(roots) == 0 {
		return malformed("missing root: every unit has a parent")
	}

	visited := make(map[unitID]bool, len(units))
	var walk func(parent *types.OrgNode, id unitID, depth int) error
	walk = func(parent *types.OrgNode, id unitID, depth int) error {
		if depth >= maxNesting {
			return malformed("nesting deeper than %d levels at unit %q", maxNesting, id)
		}
		visited[id] = true
		node, err := newNode(byID[id], depth)
		if err != nil {
			return err
		}
		if err := adopt(parent, node); err != nil {
			return err
		}
		for _, child := range children[id] {
			if err := walk(node, child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, id := range roots {
		if err := walk(root, id, 0); err != nil {
			return err
		}
	}

	for i := range units {
		if !visited[units[i].ID] {
			return malformed("cyclic reference involving unit %q", units[i].ID)
		}
	}
	return nil
}

// adopt attaches node under parent. Sibling names must be unique or the
// full path would not identify a single unit.
func adopt(parent, node *types.OrgNode) error {
	for _, sibling := range parent.Children {
		if sibling.Name == node.Name {
			path := append(parent.PathSegments(), node.Name)
			return malformed("duplicate unit %q", strings.Join(path, types.PathSeparator))
		}
	}
	parent.AddChild(node)
	return nil
}

func newNode(raw *rawNode, depth int) (*types.OrgNode, error) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return nil, malformed("unit at depth %d has an empty name", depth)
	}
	if strings.Contains(name, "/") {
		return nil, malformed("unit name %q contains the path separator '/'", name)
	}

	nodeType := types.NodeTypeForDepth(depth)
	if raw.Type != "" {
		nodeType = types.NodeType(strings.TrimSpace(raw.Type))
		if !nodeType.Valid() {
			return nil, malformed("unit %q has unknown type %q", name, raw.Type)
		}
	}

	node := &types.OrgNode{Name: name, Type: nodeType}
	for _, p := range raw.Positions {
		title := strings.TrimSpace(p.Title)
		if title == "" {
			continue
		}
		if p.Headcount < 0 {
			return nil, malformed("position %q of %q has negative headcount", title, name)
		}
		node.Positions = append(node.Positions, types.Position{Title: title, Headcount: p.Headcount})
	}
	return node, nil
}
