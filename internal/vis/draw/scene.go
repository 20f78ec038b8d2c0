// Package draw renders the map scene with Gio.
package draw

import (
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/venuemap/internal/config"
	"github.com/elektrokombinacija/venuemap/internal/geom"
	"github.com/elektrokombinacija/venuemap/internal/scene"
)

// Region fill opacity; the background shows through.
const regionAlpha = 0.55

// Style is what the scene drawing needs beyond the objects.
type Style struct {
	Palette  config.Palette
	Theme    *material.Theme
	FontSize float64
	// Stroke is the outline width in pixels at zoom 1.
	Stroke   float64
}

// Background paints img scaled by scale from the origin. The caller pushes
// the camera transform first.
func Background(gtx layout.Context, img paint.ImageOp, scale float64) {
	s := float32(scale)
	defer op.Affine(f32.Affine2D{}.Scale(f32.Point{}, f32.Pt(s, s))).Push(gtx.Ops).Pop()
	img.Add(gtx.Ops)
	paint.PaintOp{}.Add(gtx.Ops)
}

// Scene draws objs in order. Object points are already in scaled map pixels;
// the caller pushes the camera transform first.
func Scene(gtx layout.Context, objs []*scene.Object, st Style, selected *scene.Object) {
	for _, o := range objs {
		if !o.Visible() {
			continue
		}
		switch o.Kind {
		case scene.KindRegion:
			drawRegion(gtx, o, st, o == selected)
		case scene.KindAbbreviation:
			drawAbbreviation(gtx, o, st)
		case scene.KindPrice:
			drawPrice(gtx, o, st)
		}
	}
}

func drawRegion(gtx layout.Context, o *scene.Object, st Style, selected bool) {
	fill := o.Color
	if o.Disabled {
		fill = st.Palette.DisabledGrade
	}
	a := regionAlpha
	if selected {
		a = 0.85
	}
	fill = withOpacity(fill, a*o.Opacity)
	Polygon(gtx.Ops, o.Points, fill)
	Outline(gtx.Ops, o.Points, withOpacity(st.Palette.GradeStroke, o.Opacity), float32(st.Stroke))
}

func drawAbbreviation(gtx layout.Context, o *scene.Object, st Style) {
	Polygon(gtx.Ops, o.Points, withOpacity(o.Color, o.Opacity))
	Outline(gtx.Ops, o.Points, withOpacity(st.Palette.GradeStroke, o.Opacity), float32(st.Stroke))
	Label(gtx, st, o.Frame, o.Label, withOpacity(st.Palette.GradeText, o.Opacity))
}

func drawPrice(gtx layout.Context, o *scene.Object, st Style) {
	shadow := make([]geom.Point, len(o.Points))
	for i, p := range o.Points {
		shadow[i] = p.Add(geom.Pt(1, 2))
	}
	Polygon(gtx.Ops, shadow, withOpacity(st.Palette.Shadow, o.Opacity))
	Polygon(gtx.Ops, o.Points, withOpacity(st.Palette.PriceBackground, o.Opacity))
	Outline(gtx.Ops, o.Points, withOpacity(st.Palette.PriceBubbleStroke, o.Opacity), float32(st.Stroke))
	Label(gtx, st, o.Frame, o.Label, withOpacity(st.Palette.PriceText, o.Opacity))
}

func polygonPath(ops *op.Ops, pts []geom.Point) clip.PathSpec {
	var path clip.Path
	path.Begin(ops)
	path.MoveTo(pts[0].F32())
	for _, p := range pts[1:] {
		path.LineTo(p.F32())
	}
	path.Close()
	return path.End()
}

// Polygon fills a closed polygon.
func Polygon(ops *op.Ops, pts []geom.Point, col color.NRGBA) {
	if len(pts) < 3 || col.A == 0 {
		return
	}
	paint.FillShape(ops, col, clip.Outline{Path: polygonPath(ops, pts)}.Op())
}

// Outline strokes a closed polygon.
func Outline(ops *op.Ops, pts []geom.Point, col color.NRGBA, width float32) {
	if len(pts) < 2 || col.A == 0 || width <= 0 {
		return
	}
	paint.FillShape(ops, col, clip.Stroke{Path: polygonPath(ops, pts), Width: width}.Op())
}

// Label centres text inside frame.
func Label(gtx layout.Context, st Style, frame geom.Frame, text string, col color.NRGBA) {
	if text == "" || st.Theme == nil || col.A == 0 {
		return
	}
	size := image.Pt(int(frame.Width+0.5), int(frame.Height+0.5))
	if size.X <= 0 || size.Y <= 0 {
		return
	}
	defer op.Offset(image.Pt(int(frame.Left), int(frame.Top))).Push(gtx.Ops).Pop()
	gtx.Constraints = layout.Exact(size)
	layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints.Min = image.Point{}
		l := material.Label(st.Theme, unit.Sp(float32(st.FontSize)), text)
		l.Color = col
		l.MaxLines = 1
		return l.Layout(gtx)
	})
}

func withOpacity(c color.NRGBA, o float64) color.NRGBA {
	if o >= 1 {
		return c
	}
	if o <= 0 {
		c.A = 0
		return c
	}
	c.A = uint8(float64(c.A)*o + 0.5)
	return c
}
