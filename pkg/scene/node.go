// Package scene implements the scene tree: an arena of transform nodes
// composed into a rooted forest with stable identity lookup, hit-testing,
// and the dirty-state bookkeeping consumed by the layout scheduler.
//
// Nodes are batch-inserted fully specified via [Build]; their positioning
// rules are immutable afterwards. The only post-load mutations are
// structural ([Tree.AddChild], [Tree.RemoveSubtree]) and the resolved
// rectangles written back by layout passes.
package scene

import "github.com/matzehuels/anchorage/pkg/geometry"

// NodeID is a stable handle into the tree's node arena.
type NodeID int

// InvalidNode is the zero handle returned alongside lookup failures.
const InvalidNode NodeID = -1

// Stretch selects how a node's dimensions are derived. It is a closed tagged
// union: a node either uses its explicit (or intrinsic) size, or fills its
// parent minus margins. The two shapes share no fields, so there is no
// ambiguity about which one wins.
type Stretch interface {
	isStretch()
}

// NoStretch means the node uses its explicit size, falling back to the
// content adapter's intrinsic size when no explicit size is given.
type NoStretch struct{}

func (NoStretch) isStretch() {}

// StretchXY fills the parent's width and height minus the given margin on
// each side of each axis. KeepAspect additionally constrains the stretched
// box to the node's natural aspect ratio by shrinking the larger axis and
// re-centering it.
type StretchXY struct {
	XMargin    float64
	YMargin    float64
	KeepAspect bool
}

func (StretchXY) isStretch() {}

// Content is the node's content adapter: either pure grouping semantics
// (Container) or text-backed sizing semantics (Label).
type Content interface {
	isContent()
}

// Container is a pure grouping/positioning node with no intrinsic content.
type Container struct{}

func (Container) isContent() {}

// Label carries text content with a font reference, point size, and RGBA
// color (normalized 0-1 channels). Its intrinsic size is the measured text
// bounding box, supplied by the text-measurement collaborator. The layout
// engine never mutates label content.
type Label struct {
	Text     string
	Font     string // opaque font reference, resolved by the measurer
	FontSize float64
	Color    [4]float64 // RGBA, each channel in [0, 1]
}

func (Label) isContent() {}

// Def is a fully specified node description used to construct trees.
// Name may be empty; non-empty names must be unique across the tree.
// A nil Stretch means NoStretch, a nil Content means Container.
type Def struct {
	Name     string
	Anchor   geometry.Anchor
	Offset   geometry.Point
	Size     *geometry.Size
	Stretch  Stretch
	Opaque   bool
	Content  Content
	Children []Def
}

// Node is one element of the scene tree. The exported fields are the
// positioning rules, fixed at construction; the resolved rectangle and
// dirty state are owned by the layout scheduler.
type Node struct {
	Name    string
	Anchor  geometry.Anchor
	Offset  geometry.Point
	Size    *geometry.Size // nil when no explicit size was configured
	Stretch Stretch
	Opaque  bool
	Content Content

	parent     NodeID
	children   []NodeID
	alive      bool
	dirty      bool
	childDirty bool
	rect       geometry.Rect
	hasRect    bool
}

// Parent returns the handle of the node's parent, or InvalidNode for roots.
func (n *Node) Parent() NodeID { return n.parent }

// Children returns the node's children in declaration order. Declaration
// order is paint order: later children paint on top of earlier siblings and
// win hit-test ties.
func (n *Node) Children() []NodeID { return n.children }

// Dirty reports whether the node's resolved rectangle is stale.
func (n *Node) Dirty() bool { return n.dirty }

// ChildDirty reports whether any descendant of the node is dirty.
func (n *Node) ChildDirty() bool { return n.childDirty }

// Resolved returns the node's resolved rectangle. ok is false until a
// layout pass has covered the node, and after the node (or an ancestor)
// fails resolution.
func (n *Node) Resolved() (r geometry.Rect, ok bool) {
	return n.rect, n.hasRect
}

// label returns the node's Label content, if it has one.
func (n *Node) label() (Label, bool) {
	l, ok := n.Content.(Label)
	return l, ok
}
