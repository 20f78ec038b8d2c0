// Package scene keeps the grade shapes placed on the map and answers the
// lookups the engine needs: by grade, by point, and by visibility mode.
package scene

import (
	"image/color"

	"github.com/elektrokombinacija/venuemap/internal/geom"
)

// Kind distinguishes the parts drawn for one grade shape.
type Kind int

const (
	KindRegion Kind = iota // clickable polygon
	KindAbbreviation       // circle with the grade abbreviation
	KindPrice              // price bubble
)

func (k Kind) String() string {
	switch k {
	case KindRegion:
		return "region"
	case KindAbbreviation:
		return "abbreviation"
	case KindPrice:
		return "price"
	}
	return "unknown"
}

// Object is one placed shape. Points are in pixel space at the current view
// scale (logical coordinates already scaled, camera not applied).
type Object struct {
	GradeID    string
	ShapeIndex int
	Kind       Kind
	Label      string
	Color      color.NRGBA
	Points     []geom.Point
	Frame      geom.Frame
	Opacity    float64
	Disabled   bool
}

// NewObject builds an object and computes its frame.
func NewObject(gradeID string, shapeIndex int, kind Kind, points []geom.Point) *Object {
	return &Object{
		GradeID:    gradeID,
		ShapeIndex: shapeIndex,
		Kind:       kind,
		Points:     points,
		Frame:      geom.FrameOf(points),
		Opacity:    1,
	}
}

// FromPoint returns a 1x1 placeholder object at p, used to zoom to an
// arbitrary location through the object API.
func FromPoint(p geom.Point) *Object {
	return &Object{
		ShapeIndex: -1,
		Points:     []geom.Point{p, {X: p.X + 1, Y: p.Y}, {X: p.X + 1, Y: p.Y + 1}, {X: p.X, Y: p.Y + 1}},
		Frame: geom.Frame{
			Width: 1, Height: 1,
			Left: p.X, Top: p.Y, Right: p.X + 1, Bottom: p.Y + 1,
			CenterX: p.X + 0.5, CenterY: p.Y + 0.5,
		},
		Opacity: 1,
	}
}

// Center returns the object's centre point.
func (o *Object) Center() geom.Point {
	return o.Frame.Center()
}

// Visible reports whether the object is drawn.
func (o *Object) Visible() bool {
	return o.Opacity > 0
}

// Contains reports whether p hits the object.
func (o *Object) Contains(p geom.Point) bool {
	if len(o.Points) >= 3 {
		return geom.ContainsPoint(o.Points, p)
	}
	return p.X >= o.Frame.Left && p.X <= o.Frame.Right && p.Y >= o.Frame.Top && p.Y <= o.Frame.Bottom
}

// SubID identifies a grade shape independent of its parts.
func (o *Object) SubID() SubID {
	return SubID{GradeID: o.GradeID, ShapeIndex: o.ShapeIndex}
}

// SubID is the (grade, shape) pair every part of one grade shape shares.
type SubID struct {
	GradeID    string
	ShapeIndex int
}
