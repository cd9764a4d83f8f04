package geometry

import (
	"fmt"
	"strings"
)

// Anchor names one of the nine reference points of a rectangle. A node's
// offset is measured from the anchor point on its parent's rectangle, and
// the same anchor applied to the node's own rectangle is the point that gets
// aligned there.
//
// The set is closed: resolution switches over it exhaustively, so adding an
// anchor is a compile-time-checked change.
type Anchor int

const (
	TopLeft Anchor = iota
	TopMiddle
	TopRight
	MiddleLeft
	Middle
	MiddleRight
	BottomLeft
	BottomMiddle
	BottomRight
)

var anchorNames = [...]string{
	TopLeft:      "TopLeft",
	TopMiddle:    "TopMiddle",
	TopRight:     "TopRight",
	MiddleLeft:   "MiddleLeft",
	Middle:       "Middle",
	MiddleRight:  "MiddleRight",
	BottomLeft:   "BottomLeft",
	BottomMiddle: "BottomMiddle",
	BottomRight:  "BottomRight",
}

// String returns the canonical name of the anchor.
func (a Anchor) String() string {
	if a < TopLeft || a > BottomRight {
		return fmt.Sprintf("Anchor(%d)", int(a))
	}
	return anchorNames[a]
}

// Valid reports whether a is one of the nine defined anchors.
func (a Anchor) Valid() bool { return a >= TopLeft && a <= BottomRight }

// ParseAnchor converts a scene-file anchor name to an Anchor. Matching is
// case-insensitive and tolerates snake_case ("top_left" and "TopLeft" are
// equivalent). An empty or unknown name is an error; no fallback anchor
// exists.
func ParseAnchor(s string) (Anchor, error) {
	key := strings.ToLower(strings.ReplaceAll(s, "_", ""))
	for a, name := range anchorNames {
		if key == strings.ToLower(name) {
			return Anchor(a), nil
		}
	}
	return 0, fmt.Errorf("unknown anchor %q", s)
}

// AnchorPoint returns the position of the given anchor on the rectangle.
func (r Rect) AnchorPoint(a Anchor) Point {
	switch a {
	case TopLeft:
		return Point{r.X, r.Y}
	case TopMiddle:
		return Point{r.CenterX(), r.Y}
	case TopRight:
		return Point{r.Right(), r.Y}
	case MiddleLeft:
		return Point{r.X, r.CenterY()}
	case Middle:
		return Point{r.CenterX(), r.CenterY()}
	case MiddleRight:
		return Point{r.Right(), r.CenterY()}
	case BottomLeft:
		return Point{r.X, r.Bottom()}
	case BottomMiddle:
		return Point{r.CenterX(), r.Bottom()}
	case BottomRight:
		return Point{r.Right(), r.Bottom()}
	}
	panic(fmt.Sprintf("geometry: invalid anchor %d", int(a)))
}
