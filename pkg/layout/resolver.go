// Package layout implements anchor/stretch resolution for scene trees: a
// pure resolver that turns one node's positioning rules into a screen-space
// rectangle, and a scheduler that drives top-down passes with dirty
// tracking over a whole tree.
package layout

import (
	"github.com/matzehuels/anchorage/pkg/errors"
	"github.com/matzehuels/anchorage/pkg/geometry"
	"github.com/matzehuels/anchorage/pkg/scene"
)

// Resolve computes a node's rectangle from its rules, its parent's resolved
// rectangle (the viewport rectangle for roots), and an optional intrinsic
// content size. It is a pure function: no state is read or written beyond
// the arguments and the return values.
//
// Sizing: without stretch, the explicit size wins, falling back to the
// intrinsic size, falling back to a zero-size box (a pure positioning
// pivot). With StretchXY, each axis is the parent extent minus twice the
// axis margin; KeepAspect then shrinks the over-large axis to the node's
// natural ratio and re-centers it within the margin box.
//
// Positioning: the node's own anchor point, taken on its computed box with
// the same anchor enum value, is placed at the parent's anchor point plus
// the offset.
//
// Margins that produce a negative extent and KeepAspect without any ratio
// source are configuration errors, reported rather than clamped.
func Resolve(n *scene.Node, parent geometry.Rect, intrinsic *geometry.Size) (geometry.Rect, error) {
	var w, h float64
	var inset geometry.Size // shrink applied after positioning, for KeepAspect

	switch st := n.Stretch.(type) {
	case scene.StretchXY:
		w = parent.W - 2*st.XMargin
		h = parent.H - 2*st.YMargin
		if w < 0 || h < 0 {
			return geometry.Rect{}, errors.New(errors.ErrCodeNegativeExtent,
				"margins (%g, %g) exceed parent size (%g, %g)", st.XMargin, st.YMargin, parent.W, parent.H)
		}
		if st.KeepAspect {
			aw, ah, err := aspectSource(n, intrinsic)
			if err != nil {
				return geometry.Rect{}, err
			}
			// Compare w/h against aw/ah without dividing.
			if w*ah > h*aw {
				inset.W = w - h*(aw/ah)
			} else if w*ah < h*aw {
				inset.H = h - w*(ah/aw)
			}
		}
	default:
		switch {
		case n.Size != nil:
			w, h = n.Size.W, n.Size.H
		case intrinsic != nil:
			w, h = intrinsic.W, intrinsic.H
		}
	}

	ref := parent.AnchorPoint(n.Anchor).Add(n.Offset)
	own := geometry.Rect{W: w, H: h}.AnchorPoint(n.Anchor)
	out := geometry.Rect{X: ref.X - own.X, Y: ref.Y - own.Y, W: w, H: h}

	// Aspect shrink re-centers on the shrunk axis inside the stretched box.
	if inset.W > 0 {
		out.X += inset.W / 2
		out.W -= inset.W
	}
	if inset.H > 0 {
		out.Y += inset.H / 2
		out.H -= inset.H
	}
	return out, nil
}

// aspectSource picks the node's natural dimensions for KeepAspect: the
// intrinsic size when available, otherwise the pre-margin explicit size.
func aspectSource(n *scene.Node, intrinsic *geometry.Size) (w, h float64, err error) {
	if intrinsic != nil && intrinsic.W > 0 && intrinsic.H > 0 {
		return intrinsic.W, intrinsic.H, nil
	}
	if n.Size != nil && n.Size.W > 0 && n.Size.H > 0 {
		return n.Size.W, n.Size.H, nil
	}
	return 0, 0, errors.New(errors.ErrCodeAspectUnsatisfiable,
		"keep_aspect_ratio requires an intrinsic or explicit size")
}
