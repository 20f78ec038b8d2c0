package anim

import (
	"fmt"
	"strings"

	"github.com/elektrokombinacija/venuemap/internal/config"
	"github.com/elektrokombinacija/venuemap/internal/geom"
)

// Direction is a zoom button.
type Direction int

const (
	ZoomIn Direction = iota
	ZoomOut
)

func (d Direction) String() string {
	if d == ZoomOut {
		return "out"
	}
	return "in"
}

// ParseDirection accepts "in", "out", "zoomIn" and "zoomOut".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "in", "zoomin":
		return ZoomIn, nil
	case "out", "zoomout":
		return ZoomOut, nil
	}
	return ZoomIn, fmt.Errorf("unknown zoom direction %q", s)
}

// ZoomAndPanToObject centres obj at zoom.
func (a *Animator) ZoomAndPanToObject(obj Target, zoom float64, done func()) bool {
	return a.AnimateZoom(obj.Center(), zoom, DefaultDuration, done)
}

// ZoomToObjectBufferHeight centres obj at zoom, shifted up on screen so a
// panel of priceHeight pixels plus BufferShare of the view fits below it.
func (a *Animator) ZoomToObjectBufferHeight(obj Target, zoom, viewHeight, priceHeight float64, done func()) bool {
	c := obj.Center()
	c.Y += (viewHeight*BufferShare + priceHeight) / 2
	return a.AnimateZoom(c, zoom, DefaultDuration, done)
}

// HandleZoomButton zooms by one policy step, proportional to the current
// zoom, about the middle of the view.
func (a *Animator) HandleZoomButton(d Direction) bool {
	if !a.cam.Live() {
		return false
	}
	z := a.cam.Zoom()
	step := a.cam.Policy().Step * z
	if d == ZoomOut {
		step = -step
	}
	return a.AnimateZoom(a.cam.Center(), z+step, DefaultDuration, nil)
}

// CenterZoom returns the zoom at which the map fills fill of the view: by
// width on a portrait view, by height otherwise.
func CenterZoom(view config.ViewDimensions, mapWidth, mapHeight, fill float64) float64 {
	z := 1.0
	if view.Width < view.Height {
		if mapWidth > 0 {
			z = view.Width / mapWidth
		}
	} else if h := geom.ScaleValue(mapHeight, view.Scale); h > 0 {
		z = view.Height / h
	}
	return z * fill
}

// AdjustViewToCenter animates to the whole map centred. mapWidth is the
// scaled map width; mapHeight and logicalWidth are in logical units. done
// always runs exactly once: when the animation finishes or is cancelled, or
// at once if it could not start.
func (a *Animator) AdjustViewToCenter(view config.ViewDimensions, mapWidth, logicalWidth, mapHeight, fill float64, done func()) {
	if fill <= 0 {
		fill = CenterFill
	}
	center := geom.ScalePoint(geom.Pt(logicalWidth/2, mapHeight/2), view.Scale)
	if !a.animate(center, CenterZoom(view, mapWidth, mapHeight, fill), DefaultDuration, done, true) && done != nil {
		done()
	}
}
