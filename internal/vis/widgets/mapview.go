// Package widgets provides the Gio widgets of the map viewer.
package widgets

import (
	"image"

	"gioui.org/io/event"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/venuemap/internal/config"
	"github.com/elektrokombinacija/venuemap/internal/venuemap"
	"github.com/elektrokombinacija/venuemap/internal/vis/draw"
	"github.com/elektrokombinacija/venuemap/internal/vis/interact"
)

// miniMapMargin is the gap between the minimap and the canvas corner.
const miniMapMargin = 12

// MapView is the interactive map canvas.
type MapView struct {
	engine *venuemap.Engine
	cfg    *config.MapConfiguration
	input  *interact.PointerAdapter

	// OnAttach runs once, after the first layout has sized the canvas.
	OnAttach func()

	size  image.Point
	bgSrc image.Image
	bgOp  paint.ImageOp
}

// NewMapView creates a canvas for e. cfg is applied on the first layout,
// when the view size is known.
func NewMapView(e *venuemap.Engine, cfg *config.MapConfiguration) *MapView {
	return &MapView{
		engine: e,
		cfg:    cfg,
		input:  interact.NewPointerAdapter(e.Gestures()),
	}
}

// Layout renders the map and feeds pointer input to the engine.
func (v *MapView) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	bounds := gtx.Constraints.Max
	v.resize(bounds)

	defer clip.Rect(image.Rectangle{Max: bounds}).Push(gtx.Ops).Pop()
	pal := v.engine.Palette()
	paint.Fill(gtx.Ops, pal.CanvasBackground)

	event.Op(gtx.Ops, v)
	v.input.Events(gtx, v)

	cfg := v.engine.Config()
	st := draw.Style{
		Palette:  pal,
		Theme:    th,
		FontSize: v.engine.ScaleValue(cfg.FontSize),
		Stroke:   v.engine.ScaleValue(cfg.Circle.Stroke),
	}

	cam := op.Affine(v.engine.Camera().Transform()).Push(gtx.Ops)
	if bg := v.background(); bg != nil {
		draw.Background(gtx, *bg, v.engine.View().Scale)
	}
	objs := v.engine.Store().Visible(v.engine.VisibleBounds(0))
	draw.Scene(gtx, objs, st, v.engine.SelectedGrade())
	cam.Pop()

	if v.engine.ShowMiniMap() {
		mini := v.engine.MiniMap()
		_, h := mini.Size()
		off := image.Pt(miniMapMargin, bounds.Y-int(h+0.5)-miniMapMargin)
		mini.LayoutAt(gtx, off, pal.CanvasBackground, pal.MiniMapViewport)
	}

	return layout.Dimensions{Size: bounds}
}

func (v *MapView) resize(bounds image.Point) {
	if bounds == v.size || bounds.X <= 0 || bounds.Y <= 0 {
		return
	}
	w, h := float64(bounds.X), float64(bounds.Y)
	first := v.size == (image.Point{})
	v.size = bounds
	if !first {
		v.engine.Resize(w, h)
		return
	}
	v.engine.Initialize(config.NewViewDimensions(w, h, v.cfg.Height), v.cfg)
	v.engine.SetupCanvas(w, h)
	if v.OnAttach != nil {
		v.OnAttach()
	}
}

// background caches the image op for the current background.
func (v *MapView) background() *paint.ImageOp {
	img := v.engine.Background()
	if img == nil {
		return nil
	}
	if img != v.bgSrc {
		v.bgSrc = img
		v.bgOp = paint.NewImageOp(img)
	}
	return &v.bgOp
}
