// Package render drives the continuous repaint of the map canvas.
package render

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/elektrokombinacija/venuemap/internal/clock"
)

// FrameInterval is the frame period used by the clock-driven scheduler.
const FrameInterval = 16 * time.Millisecond

// FrameScheduler arranges for fn to run at the next frame. The returned
// cancel function drops the request if it has not run yet.
type FrameScheduler interface {
	RequestFrame(fn func()) (cancel func())
}

// Loop repaints every frame while running: each frame draws, then requests
// the next one.
type Loop struct {
	frames FrameScheduler
	log    zerolog.Logger

	draw    func()
	running bool
	cancel  func()
	count   uint64
}

// NewLoop creates a stopped loop that calls draw on every frame.
func NewLoop(frames FrameScheduler, draw func(), log zerolog.Logger) *Loop {
	return &Loop{
		frames: frames,
		draw:   draw,
		log:    log.With().Str("component", "render").Logger(),
	}
}

// SetDraw replaces the per-frame draw step. A nil fn keeps frames ticking
// without drawing.
func (l *Loop) SetDraw(fn func()) {
	l.draw = fn
}

// Start begins repainting. Starting a running loop is a no-op.
func (l *Loop) Start() {
	if l.running {
		return
	}
	l.running = true
	l.log.Debug().Msg("render loop started")
	l.cancel = l.frames.RequestFrame(l.frame)
}

// Stop cancels the pending frame. Stopping a stopped loop is a no-op.
func (l *Loop) Stop() {
	if !l.running {
		return
	}
	l.running = false
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.log.Debug().Uint64("frames", l.count).Msg("render loop stopped")
}

// Running reports whether the loop is started.
func (l *Loop) Running() bool {
	return l.running
}

// Frames returns the number of frames drawn so far.
func (l *Loop) Frames() uint64 {
	return l.count
}

func (l *Loop) frame() {
	l.cancel = nil
	if !l.running {
		return
	}
	l.count++
	if l.draw != nil {
		l.draw()
	}
	// draw may have stopped the loop.
	if l.running {
		l.cancel = l.frames.RequestFrame(l.frame)
	}
}

// ClockFrames schedules frames on a clock.Scheduler at a fixed interval.
type ClockFrames struct {
	Sched    *clock.Scheduler
	Interval time.Duration
}

// RequestFrame implements FrameScheduler.
func (c ClockFrames) RequestFrame(fn func()) func() {
	d := c.Interval
	if d <= 0 {
		d = FrameInterval
	}
	t := c.Sched.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// StepFrames queues frame requests until Step runs them. Tests use it to
// single-step a loop.
type StepFrames struct {
	pending []*stepRequest
}

type stepRequest struct {
	fn        func()
	cancelled bool
}

// RequestFrame implements FrameScheduler.
func (s *StepFrames) RequestFrame(fn func()) func() {
	r := &stepRequest{fn: fn}
	s.pending = append(s.pending, r)
	return func() { r.cancelled = true }
}

// Pending returns the number of live frame requests.
func (s *StepFrames) Pending() int {
	n := 0
	for _, r := range s.pending {
		if !r.cancelled {
			n++
		}
	}
	return n
}

// Step runs every request queued before the call and reports how many ran.
func (s *StepFrames) Step() int {
	batch := s.pending
	s.pending = nil
	ran := 0
	for _, r := range batch {
		if !r.cancelled {
			r.fn()
			ran++
		}
	}
	return ran
}

// Invalidator is a window that can be asked to produce a new frame.
type Invalidator interface {
	Invalidate()
}

// WindowFrames ties frame requests to a window's frame events: a request
// invalidates the window and Fire, called from the frame handler, runs it.
type WindowFrames struct {
	win Invalidator

	mu      sync.Mutex
	pending *stepRequest
}

// NewWindowFrames creates a scheduler for win.
func NewWindowFrames(win Invalidator) *WindowFrames {
	return &WindowFrames{win: win}
}

// RequestFrame implements FrameScheduler.
func (w *WindowFrames) RequestFrame(fn func()) func() {
	r := &stepRequest{fn: fn}
	w.mu.Lock()
	w.pending = r
	w.mu.Unlock()
	w.win.Invalidate()
	return func() {
		w.mu.Lock()
		r.cancelled = true
		w.mu.Unlock()
	}
}

// Fire runs the pending request, if any. It reports whether one ran.
func (w *WindowFrames) Fire() bool {
	w.mu.Lock()
	r := w.pending
	w.pending = nil
	cancelled := r == nil || r.cancelled
	w.mu.Unlock()
	if cancelled {
		return false
	}
	r.fn()
	return true
}
