package scene

import "github.com/matzehuels/anchorage/pkg/geometry"

// HitTest returns the topmost opaque node whose resolved rectangle contains
// p. Later-declared siblings paint on top of earlier ones and therefore win;
// non-opaque nodes are pass-through for hit-testing, but their subtrees still
// participate. Nodes without a resolved rectangle never hit.
func (t *Tree) HitTest(p geometry.Point) (NodeID, bool) {
	for i := len(t.roots) - 1; i >= 0; i-- {
		if id, ok := t.hitTest(t.roots[i], p); ok {
			return id, true
		}
	}
	return InvalidNode, false
}

func (t *Tree) hitTest(id NodeID, p geometry.Point) (NodeID, bool) {
	n := t.At(id)
	if !n.alive {
		return InvalidNode, false
	}

	// Children are not clipped to the parent, so they are tested even when
	// the parent rectangle misses.
	for i := len(n.children) - 1; i >= 0; i-- {
		if hit, ok := t.hitTest(n.children[i], p); ok {
			return hit, true
		}
	}

	if n.Opaque && n.hasRect && n.rect.Contains(p) {
		return id, true
	}
	return InvalidNode, false
}
