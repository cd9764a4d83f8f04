// Package render turns a resolved scene tree into visual outputs.
//
// # Overview
//
// A "sink" transforms a [Frame] snapshot of resolved rectangles into a
// final output format. This package provides renderers for:
//
//   - SVG: Scalable vector graphics of the resolved layout
//   - PNG: Raster output drawn with fogleman/gg
//   - JSON: Resolved rectangle export for external tools
//
// The [dot] subpackage renders the scene hierarchy itself as a Graphviz
// node-link diagram, which is useful for debugging tree structure rather
// than geometry.
//
// # Snapshots
//
// Sinks never walk the live tree. Call [Snapshot] after a layout pass to
// capture the resolved rectangles in draw order, then hand the Frame to
// any sink:
//
//	frame := render.Snapshot(tree, viewport)
//	svg := render.RenderSVG(frame)
//	png, err := render.RenderPNG(frame, render.WithScale(2))
//
// Nodes without a resolved rectangle (failed or not yet laid out) are
// omitted from the snapshot.
//
// [dot]: github.com/matzehuels/anchorage/pkg/render/dot
package render

import (
	"github.com/matzehuels/anchorage/pkg/geometry"
	"github.com/matzehuels/anchorage/pkg/scene"
)

// Label carries the text payload of a label item.
type Label struct {
	Text     string
	Font     string
	FontSize float64
	Color    [4]float64
}

// Item is one drawable widget: a resolved rectangle plus the content
// needed to draw it. Depth is the distance from the root, used by sinks
// for outline shading.
type Item struct {
	Name   string
	Rect   geometry.Rect
	Depth  int
	Opaque bool
	Label  *Label
}

// Frame is a draw-order snapshot of a laid-out tree. Parents precede
// their children, so painting items in order yields correct stacking.
type Frame struct {
	Width  float64
	Height float64
	Items  []Item
}

// Snapshot captures the resolved rectangles of t in draw order.
// Unresolved nodes contribute nothing, but their subtrees are still
// visited since a child can hold a valid rectangle of its own.
func Snapshot(t *scene.Tree, viewport geometry.Size) Frame {
	f := Frame{Width: viewport.W, Height: viewport.H}
	for _, root := range t.Roots() {
		snapshotNode(t, root, 0, &f)
	}
	return f
}

func snapshotNode(t *scene.Tree, id scene.NodeID, depth int, f *Frame) {
	n := t.At(id)
	if rect, ok := n.Resolved(); ok {
		item := Item{
			Name:   n.Name,
			Rect:   rect,
			Depth:  depth,
			Opaque: n.Opaque,
		}
		if l, ok := n.Content.(scene.Label); ok {
			item.Label = &Label{
				Text:     l.Text,
				Font:     l.Font,
				FontSize: l.FontSize,
				Color:    l.Color,
			}
		}
		f.Items = append(f.Items, item)
	}
	for _, child := range n.Children() {
		snapshotNode(t, child, depth+1, f)
	}
}
