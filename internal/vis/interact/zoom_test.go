package interact

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elektrokombinacija/venuemap/internal/config"
	"github.com/elektrokombinacija/venuemap/internal/geom"
)

var testPolicy = config.ZoomPolicy{Min: 0.5, Max: 4, Step: 0.2, ShowMiniMapAtLevel: 1.2}

func newLiveCamera(w, h float64) *Camera {
	c := NewCamera(testPolicy)
	c.SetupCanvas(w, h)
	return c
}

func TestCamera_ZoomClamped(t *testing.T) {
	tests := []struct {
		request float64
		want    float64
	}{
		{request: 0.01, want: 0.5},
		{request: 0.5, want: 0.5},
		{request: 2, want: 2},
		{request: 4, want: 4},
		{request: 100, want: 4},
		{request: -3, want: 0.5},
	}

	for _, tt := range tests {
		c := newLiveCamera(800, 600)
		c.SetZoom(tt.request)
		if got := c.Zoom(); got != tt.want {
			t.Errorf("SetZoom(%v) = %v, want %v", tt.request, got, tt.want)
		}
		c.ZoomAtPoint(geom.Pt(300, 200), tt.request)
		if got := c.Zoom(); got != tt.want {
			t.Errorf("ZoomAtPoint(%v) = %v, want %v", tt.request, got, tt.want)
		}
	}
}

func TestCamera_ZoomAtPointKeepsPivot(t *testing.T) {
	c := newLiveCamera(800, 600)
	c.Pan(-120, 35)

	for _, z := range []float64{1.7, 3.2, 0.6, 4} {
		pivot := geom.Pt(431, 207)
		before := c.ScreenToWorld(pivot)
		c.ZoomAtPoint(pivot, z)
		after := c.ScreenToWorld(pivot)
		assert.InDelta(t, before.X, after.X, 1e-9)
		assert.InDelta(t, before.Y, after.Y, 1e-9)
	}
}

func TestCamera_VisibleBounds(t *testing.T) {
	c := newLiveCamera(800, 600)
	assert.Equal(t, geom.Bounds{Left: 0, Top: 0, Right: 800, Bottom: 600, Zoom: 1}, c.VisibleBounds(0))

	c.SetViewport(2, -200, -100)
	assert.Equal(t, geom.Bounds{Left: 90, Top: 40, Right: 510, Bottom: 360, Zoom: 2}, c.VisibleBounds(10))
}

func TestCamera_PanUnbounded(t *testing.T) {
	c := newLiveCamera(800, 600)
	c.Pan(-1e6, 5e5)
	assert.Equal(t, geom.Pt(-1e6, 5e5), c.Offset())
}

func TestCamera_NotLiveIsNoop(t *testing.T) {
	c := NewCamera(testPolicy)
	c.Pan(10, 10)
	c.ZoomAtPoint(geom.Pt(5, 5), 3)
	c.CenterOn(geom.Pt(100, 100), 2)
	assert.Equal(t, 1.0, c.Zoom())
	assert.Equal(t, geom.Point{}, c.Offset())
	assert.Equal(t, geom.Bounds{Zoom: 1}, c.VisibleBounds(0))

	c.SetupCanvas(800, 600)
	c.Pan(10, 10)
	c.Dispose()
	c.Pan(10, 10)
	c.Reset()
	assert.Equal(t, geom.Pt(10, 10), c.Offset())
	assert.False(t, c.Live())
}

func TestCamera_CenterOn(t *testing.T) {
	c := newLiveCamera(800, 600)
	c.CenterOn(geom.Pt(1000, 500), 2)

	assert.Equal(t, 2.0, c.Zoom())
	center := c.Center()
	assert.InDelta(t, 1000, center.X, 1e-9)
	assert.InDelta(t, 500, center.Y, 1e-9)
	assert.Equal(t, geom.Pt(400, 300), c.WorldToScreen(geom.Pt(1000, 500)))
}

func TestCamera_SetPolicyReclamps(t *testing.T) {
	c := newLiveCamera(800, 600)
	c.SetZoom(3)
	c.SetPolicy(config.ZoomPolicy{Min: 1, Max: 2})
	assert.Equal(t, 2.0, c.Zoom())
	assert.False(t, c.CanZoomIn())
	assert.True(t, c.CanZoomOut())
}

func TestCamera_Transform(t *testing.T) {
	c := newLiveCamera(800, 600)
	c.SetViewport(2, 10, -20)

	got := c.Transform().Transform(geom.Pt(5, 5).F32())
	assert.Equal(t, geom.Pt(20, -10).F32(), got)
}
