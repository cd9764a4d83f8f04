package layout

import (
	"fmt"

	"github.com/matzehuels/anchorage/pkg/errors"
	"github.com/matzehuels/anchorage/pkg/geometry"
	"github.com/matzehuels/anchorage/pkg/scene"
)

// Measurer is the text-measurement collaborator consulted for label
// intrinsic sizes. Implementations must be synchronous and side-effect-free
// from the scheduler's point of view; any glyph-metric caching is theirs.
type Measurer interface {
	Measure(font string, size float64, text string) (geometry.Size, error)
}

// Scheduler drives layout passes over a scene tree. It tracks the viewport
// between passes so a resize marks every root dirty, and it short-circuits
// clean subtrees whose parent rectangle did not change.
//
// A pass is synchronous and runs on the caller's goroutine; the tree's
// in-flight guard excludes structural mutation until it completes. No
// partial-pass state is observable afterwards: every node is either
// resolved or explicitly unresolved when Pass returns.
type Scheduler struct {
	measurer Measurer
	viewport geometry.Size
	passed   bool
}

// NewScheduler creates a scheduler. The measurer may be nil, in which case
// labels have no intrinsic size and must carry explicit sizes.
func NewScheduler(m Measurer) *Scheduler {
	return &Scheduler{measurer: m}
}

// Pass resolves every stale rectangle in the tree against the given
// viewport, depth-first and parent-before-children; within a parent,
// children are visited in declaration order.
//
// Configuration failures are isolated: a failing node and its subtree are
// left unresolved, and the wrapped errors are returned while siblings
// continue to resolve. An empty slice means a fully consistent rectangle
// set. Calling Pass again with no intervening change is a no-op producing
// identical rectangles.
func (s *Scheduler) Pass(t *scene.Tree, viewport geometry.Size) []error {
	if err := t.BeginPass(); err != nil {
		return []error{err}
	}
	defer t.EndPass()

	if !s.passed || viewport != s.viewport {
		for _, root := range t.Roots() {
			t.MarkDirty(root)
		}
		s.viewport = viewport
	}
	s.passed = true

	vp := geometry.Rect{W: viewport.W, H: viewport.H}
	var errs []error
	for _, root := range t.Roots() {
		s.visit(t, root, vp, false, &errs)
	}
	return errs
}

// visit resolves one node and recurses. parentChanged reports whether the
// parent's rectangle changed in this pass; a clean node under an unchanged
// parent is skipped, descending only if a descendant is marked dirty.
func (s *Scheduler) visit(t *scene.Tree, id scene.NodeID, parent geometry.Rect, parentChanged bool, errs *[]error) {
	n := t.At(id)
	rect, hasRect := n.Resolved()

	if !n.Dirty() && !parentChanged && hasRect {
		if !n.ChildDirty() {
			return
		}
		// Clear the hint before descending: a descendant that stays dirty
		// (e.g. a failing node) re-marks the ancestor chain for next pass.
		t.ClearChildDirty(id)
		for _, child := range n.Children() {
			s.visit(t, child, rect, false, errs)
		}
		return
	}

	intrinsic, err := s.intrinsicSize(n)
	if err == nil {
		rect, err = Resolve(n, parent, intrinsic)
	}
	if err != nil {
		code := errors.GetCode(err)
		if code == "" {
			// Plain errors from a custom Measurer carry no code.
			code = errors.ErrCodeInternal
		}
		*errs = append(*errs, errors.Wrap(code, err, "node %s", nodeRef(n, id)))
		t.InvalidateResolved(id)
		// The node stays dirty so the failure is reported on every pass.
		t.MarkDirty(id)
		return
	}

	changed := !hasRect || rect != (mustResolved(n))
	t.SetResolved(id, rect)
	t.MarkClean(id)
	t.ClearChildDirty(id)

	for _, child := range n.Children() {
		s.visit(t, child, rect, changed, errs)
	}
}

// intrinsicSize measures label content when the node's sizing needs it:
// no explicit size, or an aspect-constrained stretch. Measurement failures
// only surface when nothing else can size the node.
func (s *Scheduler) intrinsicSize(n *scene.Node) (*geometry.Size, error) {
	lbl, ok := n.Content.(scene.Label)
	if !ok {
		return nil, nil
	}
	needed := n.Size == nil
	if st, isXY := n.Stretch.(scene.StretchXY); isXY && st.KeepAspect {
		needed = true
	}
	if !needed {
		return nil, nil
	}
	if s.measurer == nil {
		return nil, nil
	}
	sz, err := s.measurer.Measure(lbl.Font, lbl.FontSize, lbl.Text)
	if err != nil {
		if n.Size != nil {
			return nil, nil // explicit size still works
		}
		return nil, err
	}
	return &sz, nil
}

func mustResolved(n *scene.Node) geometry.Rect {
	r, _ := n.Resolved()
	return r
}

func nodeRef(n *scene.Node, id scene.NodeID) string {
	if n.Name != "" {
		return fmt.Sprintf("%q", n.Name)
	}
	return fmt.Sprintf("#%d", id)
}
