// Package interact handles user interactions like pan, zoom, and click
// recognition on the map canvas.
package interact

import (
	"gioui.org/f32"

	"github.com/elektrokombinacija/venuemap/internal/config"
	"github.com/elektrokombinacija/venuemap/internal/geom"
)

// Camera manages the view transformation (pan and zoom) of the main canvas.
// screen = world*Zoom + Pan.
type Camera struct {
	zoom float64
	panX float64 // Pan offset in screen pixels
	panY float64

	policy config.ZoomPolicy

	// Canvas size in pixels; zero until SetupCanvas.
	width  float64
	height float64
	live   bool
}

// NewCamera creates a camera bounded by policy at the identity transform.
func NewCamera(policy config.ZoomPolicy) *Camera {
	return &Camera{
		zoom:   policy.Clamp(1),
		policy: policy,
	}
}

// SetupCanvas attaches the camera to a canvas of the given pixel size.
func (c *Camera) SetupCanvas(width, height float64) {
	c.width = width
	c.height = height
	c.live = true
}

// Resize updates the canvas size without touching the transform.
func (c *Camera) Resize(width, height float64) {
	c.width = width
	c.height = height
}

// Dispose detaches the camera; every later mutation is a no-op.
func (c *Camera) Dispose() {
	c.live = false
}

// Live reports whether the canvas is set up and not disposed.
func (c *Camera) Live() bool {
	return c.live
}

// SetPolicy replaces the zoom bounds and re-clamps the current zoom.
func (c *Camera) SetPolicy(p config.ZoomPolicy) {
	c.policy = p
	c.zoom = p.Clamp(c.zoom)
}

// Policy returns the zoom bounds.
func (c *Camera) Policy() config.ZoomPolicy {
	return c.policy
}

// Zoom returns the current zoom level (1.0 = 100%).
func (c *Camera) Zoom() float64 {
	return c.zoom
}

// Offset returns the pan translation in screen pixels.
func (c *Camera) Offset() geom.Point {
	return geom.Pt(c.panX, c.panY)
}

// Size returns the canvas size in pixels.
func (c *Camera) Size() (width, height float64) {
	return c.width, c.height
}

// Reset returns to the identity transform (zoom clamped into policy).
func (c *Camera) Reset() {
	if !c.live {
		return
	}
	c.zoom = c.policy.Clamp(1)
	c.panX = 0
	c.panY = 0
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(p geom.Point) geom.Point {
	return geom.Pt(p.X*c.zoom+c.panX, p.Y*c.zoom+c.panY)
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(p geom.Point) geom.Point {
	return geom.Pt((p.X-c.panX)/c.zoom, (p.Y-c.panY)/c.zoom)
}

// SetZoom zooms about the canvas origin. Out-of-range values are clamped.
func (c *Camera) SetZoom(z float64) {
	c.ZoomAtPoint(geom.Point{}, z)
}

// ZoomAtPoint changes the zoom while keeping the world point under the
// screen point p fixed on screen. Out-of-range values are clamped.
func (c *Camera) ZoomAtPoint(p geom.Point, z float64) {
	if !c.live {
		return
	}

	// World position under the pivot before zoom
	world := c.ScreenToWorld(p)

	c.zoom = c.policy.Clamp(z)

	// Adjust offset to keep world point under the pivot
	after := c.WorldToScreen(world)
	c.panX += p.X - after.X
	c.panY += p.Y - after.Y
}

// Pan moves the camera by the given screen delta. There are no map edge
// limits: the view may be dragged arbitrarily far off the image.
func (c *Camera) Pan(dx, dy float64) {
	if !c.live {
		return
	}
	c.panX += dx
	c.panY += dy
}

// SetViewport replaces the whole transform; the zoom is clamped.
func (c *Camera) SetViewport(zoom, panX, panY float64) {
	if !c.live {
		return
	}
	c.zoom = c.policy.Clamp(zoom)
	c.panX = panX
	c.panY = panY
}

// Center returns the world point at the middle of the canvas.
func (c *Camera) Center() geom.Point {
	return c.ScreenToWorld(geom.Pt(c.width/2, c.height/2))
}

// CenterOn centers the camera on a world position at zoom z.
func (c *Camera) CenterOn(world geom.Point, z float64) {
	if !c.live {
		return
	}
	z = c.policy.Clamp(z)
	x := world.X - c.width/z/2
	y := world.Y - c.height/z/2
	c.SetViewport(z, -x*z, -y*z)
}

// VisibleBounds returns the world rectangle currently on screen, grown by
// buffer world units on every side. Before setup it is empty at zoom 1.
func (c *Camera) VisibleBounds(buffer float64) geom.Bounds {
	if !c.live {
		return geom.Bounds{Zoom: 1}
	}
	return geom.Bounds{
		Left:   -c.panX/c.zoom - buffer,
		Top:    -c.panY/c.zoom - buffer,
		Right:  c.width/c.zoom - c.panX/c.zoom + buffer,
		Bottom: c.height/c.zoom - c.panY/c.zoom + buffer,
		Zoom:   c.zoom,
	}
}

// Transform returns the camera as a Gio affine transform for drawing.
func (c *Camera) Transform() f32.Affine2D {
	z := float32(c.zoom)
	return f32.Affine2D{}.
		Scale(f32.Point{}, f32.Pt(z, z)).
		Offset(f32.Pt(float32(c.panX), float32(c.panY)))
}

// CanZoomIn reports whether the zoom is below the policy maximum.
func (c *Camera) CanZoomIn() bool {
	return c.zoom < c.policy.Max
}

// CanZoomOut reports whether the zoom is above the policy minimum.
func (c *Camera) CanZoomOut() bool {
	return c.zoom > c.policy.Min
}
