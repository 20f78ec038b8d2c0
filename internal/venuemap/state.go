package venuemap

import (
	"image"

	"github.com/elektrokombinacija/venuemap/internal/config"
	"github.com/elektrokombinacija/venuemap/internal/geom"
	"github.com/elektrokombinacija/venuemap/internal/scene"
	"github.com/elektrokombinacija/venuemap/internal/vis/interact"
	"github.com/elektrokombinacija/venuemap/internal/vis/minimap"
	"github.com/elektrokombinacija/venuemap/internal/vis/render"
)

// Camera returns the engine camera.
func (e *Engine) Camera() *interact.Camera { return e.camera }

// Gestures returns the gesture machine.
func (e *Engine) Gestures() *interact.Machine { return e.gestures }

// MiniMap returns the minimap synchronizer.
func (e *Engine) MiniMap() *minimap.Synchronizer { return e.mini }

// Loop returns the render loop.
func (e *Engine) Loop() *render.Loop { return e.loop }

// Store returns the scene objects.
func (e *Engine) Store() *scene.Store { return e.store }

// Config returns the active configuration, with the map size taken from the
// background once loaded.
func (e *Engine) Config() config.MapConfiguration { return e.cfg }

// View returns the view dimensions.
func (e *Engine) View() config.ViewDimensions { return e.view }

// Palette returns the parsed theme colours.
func (e *Engine) Palette() config.Palette { return e.palette }

// Background returns the loaded background image, or nil.
func (e *Engine) Background() image.Image { return e.background }

// MapWidth returns the scaled map width, never narrower than the view.
func (e *Engine) MapWidth() float64 { return e.mapWidth }

// Ready reports whether the background has loaded.
func (e *Engine) Ready() bool { return e.ready && !e.disposed }

// Zoom returns the current zoom level.
func (e *Engine) Zoom() float64 { return e.camera.Zoom() }

// DisableZoomIn reports whether the zoom is at its maximum.
func (e *Engine) DisableZoomIn() bool { return !e.camera.CanZoomIn() }

// DisableZoomOut reports whether the zoom is at its minimum.
func (e *Engine) DisableZoomOut() bool { return !e.camera.CanZoomOut() }

// ShowMiniMap reports whether the zoom is deep enough for the minimap.
func (e *Engine) ShowMiniMap() bool {
	return e.camera.Zoom() >= e.cfg.Zoom.ShowMiniMapAtLevel
}

// SelectedGrade returns the grade region last focused by a click, or nil.
func (e *Engine) SelectedGrade() *scene.Object { return e.selected }

// ClearSelection forgets the selected grade region.
func (e *Engine) ClearSelection() { e.selected = nil }

// FindObjectByGrade returns the region of grade id at shapeIndex, or nil.
func (e *Engine) FindObjectByGrade(id string, shapeIndex int) *scene.Object {
	return e.store.FindByGrade(id, shapeIndex)
}

// CreateObjectFromPoint returns a 1x1 object at p, usable as a zoom target.
func (e *Engine) CreateObjectFromPoint(p geom.Point) *scene.Object {
	return scene.FromPoint(p)
}

// SetPriceMode shows price bubbles instead of abbreviations when on.
func (e *Engine) SetPriceMode(on bool) {
	if on {
		e.store.SetMode(scene.ModePrice)
		return
	}
	e.store.SetMode(scene.ModeGrade)
}

// PriceMode reports whether price bubbles are shown.
func (e *Engine) PriceMode() bool { return e.store.Mode() == scene.ModePrice }

// ScaleValue converts a logical length to pixels at the current scale.
func (e *Engine) ScaleValue(v float64) float64 { return geom.ScaleValue(v, e.view.Scale) }

// CenterPoint returns the scaled centre of the map.
func (e *Engine) CenterPoint() geom.Point {
	return geom.ScalePoint(geom.Pt(e.cfg.Width/2, e.cfg.Height/2), e.view.Scale)
}
