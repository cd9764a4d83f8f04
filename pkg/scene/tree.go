package scene

import (
	"github.com/matzehuels/anchorage/pkg/errors"
	"github.com/matzehuels/anchorage/pkg/geometry"
)

// Tree is a rooted forest of transform nodes stored in an arena. Handles
// (NodeID values) index the arena and stay valid for the life of the tree;
// removed subtrees leave tombstones rather than shifting live nodes.
//
// A Tree is not safe for concurrent use. Structural mutation is additionally
// refused while a layout pass is in flight (see BeginPass).
type Tree struct {
	nodes  []Node
	roots  []NodeID
	names  map[string]NodeID
	laying bool
}

// Build constructs a tree from fully specified root definitions, inserting
// parents before children so declaration order is preserved everywhere.
//
// Duplicate non-empty names are a configuration error: the collision is
// reported, never silently overwritten.
func Build(defs []Def) (*Tree, error) {
	t := &Tree{names: make(map[string]NodeID)}
	for _, def := range defs {
		if _, err := t.insert(InvalidNode, def); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// insert adds def and its subtree under parent, returning the new handle.
func (t *Tree) insert(parent NodeID, def Def) (NodeID, error) {
	if def.Name != "" {
		if _, exists := t.names[def.Name]; exists {
			return InvalidNode, errors.New(errors.ErrCodeDuplicateID, "duplicate node id %q", def.Name)
		}
	}

	stretch := def.Stretch
	if stretch == nil {
		stretch = NoStretch{}
	}
	content := def.Content
	if content == nil {
		content = Container{}
	}

	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		Name:    def.Name,
		Anchor:  def.Anchor,
		Offset:  def.Offset,
		Size:    def.Size,
		Stretch: stretch,
		Opaque:  def.Opaque,
		Content: content,
		parent:  parent,
		alive:   true,
		dirty:   true,
	})
	if def.Name != "" {
		t.names[def.Name] = id
	}
	if parent == InvalidNode {
		t.roots = append(t.roots, id)
	} else {
		t.nodes[parent].children = append(t.nodes[parent].children, id)
	}

	for _, child := range def.Children {
		if _, err := t.insert(id, child); err != nil {
			return InvalidNode, err
		}
	}
	return id, nil
}

// Roots returns the root handles in declaration order.
func (t *Tree) Roots() []NodeID { return t.roots }

// Len returns the number of live nodes in the tree.
func (t *Tree) Len() int {
	n := 0
	for i := range t.nodes {
		if t.nodes[i].alive {
			n++
		}
	}
	return n
}

// At returns the node for a handle. The pointer stays valid until the node
// is removed; callers must not retain it across structural mutation.
func (t *Tree) At(id NodeID) *Node {
	return &t.nodes[id]
}

// Lookup finds a node by its configured name.
func (t *Tree) Lookup(name string) (NodeID, error) {
	id, ok := t.names[name]
	if !ok {
		return InvalidNode, errors.New(errors.ErrCodeNodeNotFound, "no node named %q", name)
	}
	return id, nil
}

// AddChild inserts a new subtree under parent (or as a new root when parent
// is InvalidNode) and marks it dirty so the next pass resolves it. Fails
// while a layout pass is in flight.
func (t *Tree) AddChild(parent NodeID, def Def) (NodeID, error) {
	if t.laying {
		return InvalidNode, errors.New(errors.ErrCodeLayoutInProgress, "structural mutation during layout pass")
	}
	if parent != InvalidNode && !t.At(parent).alive {
		return InvalidNode, errors.New(errors.ErrCodeNodeNotFound, "parent %d already removed", parent)
	}
	id, err := t.insert(parent, def)
	if err != nil {
		return InvalidNode, err
	}
	t.MarkDirty(id)
	return id, nil
}

// RemoveSubtree removes a node and everything below it. The parent exclusively
// owns its children, so destroying a node destroys its subtree. Fails while a
// layout pass is in flight.
func (t *Tree) RemoveSubtree(id NodeID) error {
	if t.laying {
		return errors.New(errors.ErrCodeLayoutInProgress, "structural mutation during layout pass")
	}
	n := t.At(id)
	if !n.alive {
		return errors.New(errors.ErrCodeNodeNotFound, "node %d already removed", id)
	}

	if n.parent == InvalidNode {
		t.roots = removeID(t.roots, id)
	} else {
		p := t.At(n.parent)
		p.children = removeID(p.children, id)
		t.MarkDirty(n.parent)
	}
	t.bury(id)
	return nil
}

// bury tombstones a node and its subtree.
func (t *Tree) bury(id NodeID) {
	n := t.At(id)
	for _, child := range n.children {
		t.bury(child)
	}
	if n.Name != "" {
		delete(t.names, n.Name)
	}
	*n = Node{parent: InvalidNode}
}

func removeID(ids []NodeID, id NodeID) []NodeID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// =============================================================================
// Layout Bookkeeping
//
// The methods below are the write surface used by the layout scheduler.
// =============================================================================

// BeginPass marks the tree as being laid out, excluding structural mutation
// until EndPass. It fails if a pass is already in flight.
func (t *Tree) BeginPass() error {
	if t.laying {
		return errors.New(errors.ErrCodeLayoutInProgress, "layout pass already in flight")
	}
	t.laying = true
	return nil
}

// EndPass clears the in-flight guard set by BeginPass.
func (t *Tree) EndPass() { t.laying = false }

// MarkDirty flags a node as needing re-resolution and records the dirtiness
// on its ancestor chain so a pass can find it without visiting clean
// subtrees exhaustively.
func (t *Tree) MarkDirty(id NodeID) {
	n := t.At(id)
	n.dirty = true
	for p := n.parent; p != InvalidNode; p = t.At(p).parent {
		anc := t.At(p)
		if anc.childDirty {
			break
		}
		anc.childDirty = true
	}
}

// MarkClean clears a node's own dirty flag after successful resolution.
func (t *Tree) MarkClean(id NodeID) { t.At(id).dirty = false }

// ClearChildDirty clears the descendant-dirty hint once a pass has visited
// the node's children.
func (t *Tree) ClearChildDirty(id NodeID) { t.At(id).childDirty = false }

// SetResolved writes a node's resolved rectangle. Only layout passes call
// this; configuration fields are immutable post-load.
func (t *Tree) SetResolved(id NodeID, r geometry.Rect) {
	n := t.At(id)
	n.rect = r
	n.hasRect = true
}

// InvalidateResolved drops the resolved rectangles of a node and its whole
// subtree. Used to isolate a failed node: descendants of an unresolved node
// cannot have meaningful rectangles either.
func (t *Tree) InvalidateResolved(id NodeID) {
	n := t.At(id)
	n.hasRect = false
	for _, child := range n.children {
		t.InvalidateResolved(child)
	}
}
