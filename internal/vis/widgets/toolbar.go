package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/venuemap/internal/venuemap"
	"github.com/elektrokombinacija/venuemap/internal/vis/anim"
)

// Toolbar provides the zoom controls and the label mode switch.
type Toolbar struct {
	engine *venuemap.Engine

	zoomInBtn  widget.Clickable
	zoomOutBtn widget.Clickable
	resetBtn   widget.Clickable
	centerBtn  widget.Clickable
	priceMode  widget.Bool
}

// NewToolbar creates a toolbar driving e.
func NewToolbar(e *venuemap.Engine) *Toolbar {
	return &Toolbar{engine: e}
}

// Layout renders the toolbar.
func (t *Toolbar) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	height := 48

	rect := image.Rect(0, 0, gtx.Constraints.Max.X, height)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 40, G: 43, B: 48, A: 255}, clip.Rect(rect).Op())

	t.handleClicks(gtx)

	return layout.Inset{Left: unit.Dp(10), Right: unit.Dp(10), Top: unit.Dp(8), Bottom: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle, Spacing: layout.SpaceStart}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.layoutZoomControls(gtx, th)
			}),
			layout.Rigid(t.layoutSeparator),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				sw := material.Switch(th, &t.priceMode, "Price mode")
				return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
					layout.Rigid(sw.Layout),
					layout.Rigid(layout.Spacer{Width: unit.Dp(6)}.Layout),
					layout.Rigid(t.label(th, "Prices")),
				)
			}),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return layout.Dimensions{}
			}),
			layout.Rigid(t.label(th, t.status())),
		)
	})
}

func (t *Toolbar) layoutZoomControls(gtx layout.Context, th *material.Theme) layout.Dimensions {
	return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceStart}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return t.button(gtx, th, &t.zoomOutBtn, "-", t.engine.DisableZoomOut())
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return t.button(gtx, th, &t.zoomInBtn, "+", t.engine.DisableZoomIn())
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return t.button(gtx, th, &t.resetBtn, "1:1", false)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return t.button(gtx, th, &t.centerBtn, "[ ]", !t.engine.Ready())
		}),
	)
}

func (t *Toolbar) status() string {
	s := fmt.Sprintf("%.0f%%", t.engine.Zoom()*100)
	if sel := t.engine.SelectedGrade(); sel != nil {
		s = sel.Label + "  " + s
	}
	return s
}

func (t *Toolbar) label(th *material.Theme, text string) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		l := material.Label(th, 12, text)
		l.Color = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
		return l.Layout(gtx)
	}
}

func (t *Toolbar) layoutSeparator(gtx layout.Context) layout.Dimensions {
	return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		rect := image.Rect(0, 0, 1, 24)
		paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255}, clip.Rect(rect).Op())
		return layout.Dimensions{Size: image.Point{X: 1, Y: 24}}
	})
}

func (t *Toolbar) button(gtx layout.Context, th *material.Theme, btn *widget.Clickable, text string, disabled bool) layout.Dimensions {
	bg := color.NRGBA{R: 55, G: 58, B: 65, A: 255}
	fg := color.NRGBA{R: 220, G: 220, B: 220, A: 255}
	if disabled {
		fg = color.NRGBA{R: 120, G: 120, B: 120, A: 255}
	} else if btn.Hovered() {
		bg.R = minU8(bg.R+15, 255)
		bg.G = minU8(bg.G+15, 255)
		bg.B = minU8(bg.B+15, 255)
	}

	return btn.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Background{}.Layout(gtx,
			func(gtx layout.Context) layout.Dimensions {
				gtx.Constraints.Min = image.Point{X: 32, Y: 28}
				rect := image.Rect(0, 0, gtx.Constraints.Min.X, gtx.Constraints.Min.Y)
				paint.FillShape(gtx.Ops, bg, clip.Rect(rect).Op())
				return layout.Dimensions{Size: gtx.Constraints.Min}
			},
			func(gtx layout.Context) layout.Dimensions {
				return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					label := material.Label(th, 12, text)
					label.Color = fg
					return label.Layout(gtx)
				})
			},
		)
	})
}

func (t *Toolbar) handleClicks(gtx layout.Context) {
	for t.zoomInBtn.Clicked(gtx) {
		if !t.engine.DisableZoomIn() {
			t.engine.HandleZoomButton(anim.ZoomIn)
		}
	}
	for t.zoomOutBtn.Clicked(gtx) {
		if !t.engine.DisableZoomOut() {
			t.engine.HandleZoomButton(anim.ZoomOut)
		}
	}
	for t.resetBtn.Clicked(gtx) {
		t.engine.ResetZoom()
	}
	for t.centerBtn.Clicked(gtx) {
		if t.engine.Ready() {
			t.engine.AdjustViewToCenter(nil)
		}
	}
	if t.priceMode.Update(gtx) {
		t.engine.SetPriceMode(t.priceMode.Value)
	}
}

func minU8(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}
