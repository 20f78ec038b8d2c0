package minimap

import (
	"image"
	"image/color"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/venuemap/internal/config"
	"github.com/elektrokombinacija/venuemap/internal/geom"
)

type camera struct {
	zoom float64
	pan  geom.Point
	w, h float64
}

func (c camera) Zoom() float64            { return c.zoom }
func (c camera) Offset() geom.Point       { return c.pan }
func (c camera) Size() (float64, float64) { return c.w, c.h }

func TestViewportRect(t *testing.T) {
	tests := []struct {
		name string
		zoom float64
		pan  geom.Point
		want geom.Rect
	}{
		{name: "identity", zoom: 1, want: geom.Rect{Left: 0, Top: 0, Width: 80, Height: 60}},
		{name: "zoomed", zoom: 2, want: geom.Rect{Left: 0, Top: 0, Width: 40, Height: 30}},
		{name: "panned", zoom: 2, pan: geom.Pt(-400, -200), want: geom.Rect{Left: 20, Top: 10, Width: 40, Height: 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ViewportRect(tt.zoom, tt.pan, 800, 600, 800, 0.1)
			assert.InDelta(t, tt.want.Left, got.Left, 1e-9)
			assert.InDelta(t, tt.want.Top, got.Top, 1e-9)
			assert.InDelta(t, tt.want.Width, got.Width, 1e-9)
			assert.InDelta(t, tt.want.Height, got.Height, 1e-9)
		})
	}
}

func TestViewportRect_WidthInverseToZoom(t *testing.T) {
	for _, z := range []float64{0.5, 1, 1.3, 2.5} {
		a := ViewportRect(z, geom.Pt(-30, 12), 1024, 768, 1024, 0.12)
		b := ViewportRect(2*z, geom.Pt(-30, 12), 1024, 768, 1024, 0.12)
		assert.InDelta(t, a.Width/2, b.Width, 1e-9)
	}
}

func TestViewportRect_NarrowView(t *testing.T) {
	// A view narrower than the canvas centres the overlay horizontally.
	got := ViewportRect(1, geom.Point{}, 1000, 600, 600, 0.1)
	assert.InDelta(t, 20, got.Left, 1e-9)
	assert.InDelta(t, 60, got.Width, 1e-9)
}

func TestSize(t *testing.T) {
	tests := []struct {
		name     string
		mapWidth float64
		view     config.ViewDimensions
		s        float64
		wantW    float64
		wantH    float64
	}{
		{name: "wide map", mapWidth: 1200, view: config.NewViewDimensions(800, 600, 1500), s: 0.1, wantW: 120, wantH: 60},
		{name: "narrow map padded to view", mapWidth: 800, view: config.NewViewDimensions(800, 600, 1000), s: 0.12, wantW: 96, wantH: 72},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Size(tt.mapWidth, tt.view, tt.s)
			assert.InDelta(t, tt.wantW, w, 1e-9)
			assert.InDelta(t, tt.wantH, h, 1e-9)
		})
	}
}

func newConfig() *config.MapConfiguration {
	cfg := config.Default()
	cfg.MiniMap = config.MiniMap{Scale: 0.1, Opacity: 0.5}
	return &cfg
}

func TestSynchronizer_Lifecycle(t *testing.T) {
	s := New(zerolog.Nop())
	cam := camera{zoom: 1, w: 800, h: 600}

	s.Sync(cam)
	_, ok := s.Rect()
	assert.False(t, ok, "sync before initialise is a no-op")
	assert.False(t, s.Visible(5))

	bg := image.NewRGBA(image.Rect(0, 0, 400, 300))
	bg.Set(0, 0, color.RGBA{R: 255, A: 255})
	s.Initialize(1600, config.NewViewDimensions(800, 600, 1200), newConfig(), bg)

	w, h := s.Size()
	assert.Equal(t, 160.0, w)
	assert.Equal(t, 60.0, h)
	require.NotNil(t, s.Snapshot())
	assert.Equal(t, image.Rect(0, 0, 160, 60), s.Snapshot().Bounds())

	s.Sync(cam)
	r, ok := s.Rect()
	require.True(t, ok)
	assert.Equal(t, geom.Rect{Width: 80, Height: 60}, r)

	s.Sync(camera{zoom: 2, pan: geom.Pt(-800, -600), w: 800, h: 600})
	r, _ = s.Rect()
	assert.Equal(t, geom.Rect{Left: 40, Top: 30, Width: 40, Height: 30}, r)

	assert.False(t, s.Visible(1))
	assert.True(t, s.Visible(1.2))

	s.Cleanup()
	assert.False(t, s.Ready())
	assert.Nil(t, s.Snapshot())
	_, ok = s.Rect()
	assert.False(t, ok)
}

func TestSynchronizer_RectClamped(t *testing.T) {
	s := New(zerolog.Nop())
	s.Initialize(800, config.NewViewDimensions(800, 600, 600), newConfig(), nil)

	s.Sync(camera{zoom: 1, pan: geom.Pt(500, 0), w: 800, h: 600})
	raw := s.RawRect()
	assert.InDelta(t, -50, raw.Left, 1e-9)

	r, _ := s.Rect()
	assert.Equal(t, 0.0, r.Left)
	assert.InDelta(t, 30, r.Width, 1e-9)
}

func TestDownscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			src.Set(x, y, color.RGBA{B: 200, A: 255})
		}
	}
	dst := Downscale(src, 10, 0)
	assert.Equal(t, image.Rect(0, 0, 10, 1), dst.Bounds())
	px := dst.RGBAAt(5, 0)
	assert.Equal(t, uint8(255), px.A)
	assert.InDelta(t, 200, int(px.B), 2)
}
