// Package geometry provides the rectangle, point, and anchor primitives used
// by the layout engine. All coordinates are screen-space user units with the
// origin at the top-left corner and y increasing downward.
package geometry

// Point is a 2D position or displacement.
type Point struct {
	X, Y float64
}

// Add returns the point translated by d.
func (p Point) Add(d Point) Point { return Point{p.X + d.X, p.Y + d.Y} }

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X, Y float64 // top-left corner
	W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// CenterX returns the horizontal center of the rectangle.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{r.W, r.H} }

// Contains reports whether p lies within the rectangle.
// All four edges are inclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}
