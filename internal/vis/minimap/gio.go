package minimap

import (
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
)

// Layout draws the snapshot with the viewport overlay filled in col at the
// configured opacity. The caller positions it with an op.Offset.
func (s *Synchronizer) Layout(gtx layout.Context, bg, col color.NRGBA) layout.Dimensions {
	size := image.Pt(int(s.width+0.5), int(s.height+0.5))
	if !s.ready || size.X == 0 || size.Y == 0 {
		return layout.Dimensions{}
	}
	defer clip.Rect(image.Rectangle{Max: size}).Push(gtx.Ops).Pop()

	paint.Fill(gtx.Ops, bg)
	if s.snapshot != nil {
		imgOp := paint.NewImageOp(s.snapshot)
		imgOp.Add(gtx.Ops)
		paint.PaintOp{}.Add(gtx.Ops)
	}

	if r, ok := s.Rect(); ok && r.Width > 0 && r.Height > 0 {
		overlay := col
		overlay.A = uint8(float64(col.A) * s.cfg.Opacity)
		rect := image.Rect(int(r.Left), int(r.Top), int(r.Right()+0.5), int(r.Bottom()+0.5))
		paint.FillShape(gtx.Ops, overlay, clip.Rect(rect).Op())
	}

	// Thin border so the minimap reads as a separate surface.
	border := clip.Stroke{
		Path:  clip.Rect(image.Rectangle{Max: size}).Path(),
		Width: 1,
	}.Op()
	paint.FillShape(gtx.Ops, color.NRGBA{A: 90}, border)

	return layout.Dimensions{Size: size}
}

// LayoutAt draws the minimap with its top-left corner at off.
func (s *Synchronizer) LayoutAt(gtx layout.Context, off image.Point, bg, col color.NRGBA) layout.Dimensions {
	defer op.Offset(off).Push(gtx.Ops).Pop()
	return s.Layout(gtx, bg, col)
}
