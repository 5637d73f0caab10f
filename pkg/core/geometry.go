// pkg/core/geometry.go
package core

import "math"

// Position2D is a coordinate in map space. For geographic CRSs X is the
// longitude and Y the latitude.
type Position2D struct {
	X float64 `json:"x"` // easting / longitude
	Y float64 `json:"y"` // northing / latitude
}

// Point is a location in screen space, in pixels, y growing downwards.
type Point struct {
	X float64
	Y float64
}

// Add returns p translated by v.
func (p Point) Add(v Vector) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Vector is a displacement in screen space.
type Vector struct {
	X float64
	Y float64
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64
	Height float64
}

// IsEmpty reports whether either dimension is zero or negative.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is an axis aligned screen rectangle. Min is inclusive, Max exclusive.
type Rect struct {
	Min Point
	Max Point
}

// RectFrom builds the rectangle with top-left corner p and size s.
func RectFrom(p Point, s Size) Rect {
	return Rect{Min: p, Max: Point{X: p.X + s.Width, Y: p.Y + s.Height}}
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Size returns the dimensions of r.
func (r Rect) Size() Size {
	return Size{Width: r.Width(), Height: r.Height()}
}

// Empty reports whether r contains no points.
func (r Rect) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

// Inset shrinks r by d on every side. A rectangle that would turn inside out
// collapses to an empty rectangle at its centre.
func (r Rect) Inset(d float64) Rect {
	out := Rect{
		Min: Point{X: r.Min.X + d, Y: r.Min.Y + d},
		Max: Point{X: r.Max.X - d, Y: r.Max.Y - d},
	}
	if out.Min.X > out.Max.X {
		c := (r.Min.X + r.Max.X) / 2
		out.Min.X, out.Max.X = c, c
	}
	if out.Min.Y > out.Max.Y {
		c := (r.Min.Y + r.Max.Y) / 2
		out.Min.Y, out.Max.Y = c, c
	}
	return out
}

// Intersect returns the largest rectangle contained in both r and s.
func (r Rect) Intersect(s Rect) Rect {
	out := Rect{
		Min: Point{X: math.Max(r.Min.X, s.Min.X), Y: math.Max(r.Min.Y, s.Min.Y)},
		Max: Point{X: math.Min(r.Max.X, s.Max.X), Y: math.Min(r.Max.Y, s.Max.Y)},
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// Contains reports whether s lies completely inside r.
func (r Rect) Contains(s Rect) bool {
	return s.Min.X >= r.Min.X && s.Min.Y >= r.Min.Y &&
		s.Max.X <= r.Max.X && s.Max.Y <= r.Max.Y
}
