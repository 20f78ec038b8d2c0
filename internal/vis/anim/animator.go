// Package anim drives programmatic camera transitions: zoom-to-point,
// zoom-to-object, zoom buttons and centring the whole map.
package anim

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/elektrokombinacija/venuemap/internal/clock"
	"github.com/elektrokombinacija/venuemap/internal/config"
	"github.com/elektrokombinacija/venuemap/internal/geom"
)

const (
	// DefaultDuration is the length of every stock zoom transition.
	DefaultDuration = 500 * time.Millisecond
	// TickInterval caps camera updates at roughly 60 Hz.
	TickInterval = 16 * time.Millisecond
	// ZoomThreshold is the default zoom used when focusing an object.
	ZoomThreshold = 1.2
	// CenterFill is the share of the viewport the map fills when centred.
	CenterFill = 0.9
	// BufferShare is the share of the viewport height kept free below a
	// focused object.
	BufferShare = 0.3
)

// Camera is the camera surface an animation writes to.
type Camera interface {
	Live() bool
	Zoom() float64
	Policy() config.ZoomPolicy
	Center() geom.Point
	CenterOn(world geom.Point, z float64)
}

// Target is anything with a world-space centre, such as a scene object.
type Target interface {
	Center() geom.Point
}

// Animator interpolates camera zoom and centre over time. Only one
// animation runs at a time.
type Animator struct {
	cam   Camera
	sched *clock.Scheduler
	log   zerolog.Logger

	active   bool
	start    time.Time
	duration time.Duration

	fromZoom, toZoom     float64
	fromCenter, toCenter geom.Point

	ticker *clock.Timer
	done   func()
	always bool // done also runs when the animation is cancelled
	onStep func()
}

// New creates an animator writing to cam.
func New(cam Camera, sched *clock.Scheduler, log zerolog.Logger) *Animator {
	return &Animator{
		cam:   cam,
		sched: sched,
		log:   log.With().Str("component", "anim").Logger(),
	}
}

// OnStep registers a hook run after every camera write.
func (a *Animator) OnStep(fn func()) {
	a.onStep = fn
}

// Active reports whether an animation is in flight.
func (a *Animator) Active() bool {
	return a.active
}

// AnimateZoom moves the camera so that target ends up centred at zoom,
// interpolating zoom and centre linearly over duration. It returns false and
// does nothing if another animation is in flight or the camera is not live.
// done runs when the animation completes; it does not run if the animation
// is cancelled.
func (a *Animator) AnimateZoom(target geom.Point, zoom float64, duration time.Duration, done func()) bool {
	return a.animate(target, zoom, duration, done, false)
}

func (a *Animator) animate(target geom.Point, zoom float64, duration time.Duration, done func(), always bool) bool {
	if a.active || !a.cam.Live() {
		a.log.Debug().Bool("active", a.active).Msg("zoom animation dropped")
		return false
	}
	if duration <= 0 {
		duration = DefaultDuration
	}

	a.active = true
	a.start = a.sched.Now()
	a.duration = duration
	a.fromZoom = a.cam.Zoom()
	a.toZoom = a.cam.Policy().Clamp(zoom)
	a.fromCenter = a.cam.Center()
	a.toCenter = target
	a.done = done
	a.always = always

	a.log.Debug().
		Float64("zoom", a.toZoom).
		Float64("x", target.X).
		Float64("y", target.Y).
		Dur("duration", duration).
		Msg("zoom animation start")

	a.ticker = a.sched.AfterFunc(0, a.tick)
	return true
}

// Cancel stops the animation in flight, leaving the camera where the last
// tick put it. A completion registered to run regardless is posted to the
// scheduler. It reports whether an animation was stopped.
func (a *Animator) Cancel() bool {
	done, stopped := a.stop()
	if done != nil {
		a.sched.Post(done)
	}
	return stopped
}

// Abort is Cancel without running any completion.
func (a *Animator) Abort() bool {
	_, stopped := a.stop()
	return stopped
}

func (a *Animator) stop() (func(), bool) {
	if !a.active {
		return nil, false
	}
	a.ticker.Stop()
	a.ticker = nil
	a.active = false
	done := a.done
	if !a.always {
		done = nil
	}
	a.done = nil
	a.always = false
	a.log.Debug().Bool("completion", done != nil).Msg("zoom animation cancelled")
	return done, true
}

// Progress returns how far the animation has run, 0-1.
func (a *Animator) Progress() float64 {
	if !a.active {
		return 0
	}
	return a.progress()
}

func (a *Animator) progress() float64 {
	elapsed := a.sched.Now().Sub(a.start)
	if elapsed >= a.duration {
		return 1
	}
	return float64(elapsed) / float64(a.duration)
}

func (a *Animator) tick() {
	a.ticker = nil
	if !a.cam.Live() {
		a.active = false
		a.done = nil
		a.always = false
		return
	}

	v := a.progress()
	zoom := a.fromZoom + (a.toZoom-a.fromZoom)*v
	a.cam.CenterOn(a.fromCenter.Lerp(a.toCenter, v), zoom)
	if a.onStep != nil {
		a.onStep()
	}

	if v < 1 {
		next := TickInterval
		if rest := a.duration - a.sched.Now().Sub(a.start); rest < next {
			next = rest
		}
		a.ticker = a.sched.AfterFunc(next, a.tick)
		return
	}

	a.active = false
	done := a.done
	a.done = nil
	a.always = false
	a.log.Debug().Float64("zoom", a.cam.Zoom()).Msg("zoom animation done")
	if done != nil {
		done()
	}
}
