// Package minimap keeps a miniature copy of the map with a rectangle marking
// the part of the map currently on screen.
package minimap

import (
	"image"

	"github.com/rs/zerolog"
	xdraw "golang.org/x/image/draw"

	"github.com/elektrokombinacija/venuemap/internal/config"
	"github.com/elektrokombinacija/venuemap/internal/geom"
)

// Camera is the camera state the overlay is derived from.
type Camera interface {
	Zoom() float64
	Offset() geom.Point
	Size() (width, height float64)
}

// ViewportRect returns the on-screen region in minimap pixels. pan is the
// camera translation, canvasW/canvasH the main canvas size, viewW the
// hosting view width and s the minimap scale.
func ViewportRect(zoom float64, pan geom.Point, canvasW, canvasH, viewW, s float64) geom.Rect {
	if zoom <= 0 {
		zoom = 1
	}
	canvasWS := canvasW * s / zoom
	width := viewW * s / zoom
	return geom.Rect{
		Left:   -pan.X*s/zoom + (canvasWS-width)/2,
		Top:    -pan.Y * s / zoom,
		Width:  width,
		Height: canvasH * s / zoom,
	}
}

// Size returns the minimap pixel size. mapWidth is already in view pixels
// (the engine's max(scale(width), viewWidth)) and is not scaled again.
func Size(mapWidth float64, view config.ViewDimensions, s float64) (width, height float64) {
	return mapWidth * s, view.Height * s
}

// Synchronizer owns the minimap snapshot and its viewport overlay.
type Synchronizer struct {
	log zerolog.Logger

	cfg    config.MiniMap
	policy config.ZoomPolicy
	view   config.ViewDimensions

	width, height float64
	snapshot      *image.RGBA
	rect          geom.Rect
	hasRect       bool
	ready         bool
}

// New creates an uninitialised synchronizer.
func New(log zerolog.Logger) *Synchronizer {
	return &Synchronizer{log: log.With().Str("component", "minimap").Logger()}
}

// Initialize sizes the minimap for a map of the given scaled width and takes
// a downscaled snapshot of background, which may be nil.
func (s *Synchronizer) Initialize(mapWidth float64, view config.ViewDimensions, cfg *config.MapConfiguration, background image.Image) {
	s.cfg = cfg.MiniMap
	s.policy = cfg.Zoom
	s.view = view
	s.width, s.height = Size(mapWidth, view, cfg.MiniMap.Scale)
	s.snapshot = nil
	s.hasRect = false
	s.ready = true

	if background != nil {
		s.snapshot = Downscale(background, int(s.width+0.5), int(s.height+0.5))
	}
	s.log.Debug().Float64("width", s.width).Float64("height", s.height).Msg("minimap initialised")
}

// Sync replaces the overlay rectangle with one derived from cam. It is a
// no-op before Initialize.
func (s *Synchronizer) Sync(cam Camera) {
	if !s.ready {
		return
	}
	w, h := cam.Size()
	s.rect = ViewportRect(cam.Zoom(), cam.Offset(), w, h, s.view.Width, s.cfg.Scale)
	s.hasRect = true
}

// Rect returns the current overlay clamped to the minimap.
func (s *Synchronizer) Rect() (geom.Rect, bool) {
	if !s.hasRect {
		return geom.Rect{}, false
	}
	return s.rect.Intersect(s.width, s.height), true
}

// RawRect returns the overlay without clamping.
func (s *Synchronizer) RawRect() geom.Rect {
	return s.rect
}

// Visible reports whether the minimap should be shown at zoom.
func (s *Synchronizer) Visible(zoom float64) bool {
	return s.ready && zoom >= s.policy.ShowMiniMapAtLevel
}

// Ready reports whether Initialize has run since the last Cleanup.
func (s *Synchronizer) Ready() bool {
	return s.ready
}

// Size returns the minimap pixel size.
func (s *Synchronizer) Size() (width, height float64) {
	return s.width, s.height
}

// Snapshot returns the downscaled background, or nil.
func (s *Synchronizer) Snapshot() image.Image {
	if s.snapshot == nil {
		return nil
	}
	return s.snapshot
}

// Opacity is the overlay opacity from the configuration.
func (s *Synchronizer) Opacity() float64 {
	return s.cfg.Opacity
}

// Cleanup drops the snapshot and overlay.
func (s *Synchronizer) Cleanup() {
	s.snapshot = nil
	s.hasRect = false
	s.ready = false
	s.width, s.height = 0, 0
}

// Downscale resamples src to w x h, stretching both axes independently.
func Downscale(src image.Image, w, h int) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
