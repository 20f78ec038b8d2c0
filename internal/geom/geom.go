// Package geom holds the plane geometry shared by the map engine: points,
// rectangles, visible bounds and the logical-to-pixel scale model.
package geom

import (
	"math"

	"gioui.org/f32"
)

// Point is a position in either logical map units or viewport pixels.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns p scaled by s.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Lerp interpolates linearly between p and q at t in [0, 1].
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// F32 converts to a Gio point for drawing.
func (p Point) F32() f32.Point {
	return f32.Pt(float32(p.X), float32(p.Y))
}

// FromF32 converts a Gio point.
func FromF32(p f32.Point) Point {
	return Point{X: float64(p.X), Y: float64(p.Y)}
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Right returns the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Intersect clips r to the rectangle (0,0)-(w,h). An empty intersection
// yields a zero-size rectangle at the nearest edge.
func (r Rect) Intersect(w, h float64) Rect {
	left := clamp(r.Left, 0, w)
	top := clamp(r.Top, 0, h)
	right := clamp(r.Right(), 0, w)
	bottom := clamp(r.Bottom(), 0, h)
	return Rect{Left: left, Top: top, Width: math.Max(right-left, 0), Height: math.Max(bottom-top, 0)}
}

// Bounds is the logical-space rectangle visible through the viewport,
// together with the zoom it was sampled at.
type Bounds struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
	Zoom   float64
}

// IsInBounds reports whether p lies inside b, edges included.
func IsInBounds(p Point, b Bounds) bool {
	return p.X >= b.Left && p.X <= b.Right && p.Y >= b.Top && p.Y <= b.Bottom
}

// Frame describes the bounding box of a polygon.
type Frame struct {
	Width   float64
	Height  float64
	Left    float64
	Top     float64
	Right   float64
	Bottom  float64
	CenterX float64
	CenterY float64
}

// Center returns the frame centre.
func (f Frame) Center() Point {
	return Point{X: f.CenterX, Y: f.CenterY}
}

// degenerateFrame is returned for point sets that cannot describe a region.
var degenerateFrame = Frame{}

// FrameOf computes the bounding box of points. Fewer than three points do not
// form a region and yield a zero-size frame at the origin.
func FrameOf(points []Point) Frame {
	if len(points) < 3 {
		return degenerateFrame
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	width := maxX - minX
	height := maxY - minY
	return Frame{
		Width:   width,
		Height:  height,
		Left:    minX,
		Top:     minY,
		Right:   maxX,
		Bottom:  maxY,
		CenterX: minX + width/2,
		CenterY: minY + height/2,
	}
}

// ContainsPoint reports whether p is inside the polygon using the even-odd rule.
func ContainsPoint(polygon []Point, p Point) bool {
	if len(polygon) < 3 {
		return false
	}
	inside := false
	j := len(polygon) - 1
	for i := range polygon {
		a, b := polygon[i], polygon[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return clamp(v, lo, hi)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
