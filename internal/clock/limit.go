package clock

import (
	"time"

	"golang.org/x/time/rate"
)

// Debouncer delays a call until Delay has passed without another Schedule.
// Only the most recent scheduled call runs.
type Debouncer struct {
	s     *Scheduler
	delay time.Duration
	timer *Timer
}

// NewDebouncer creates a debouncer on s.
func NewDebouncer(s *Scheduler, delay time.Duration) *Debouncer {
	return &Debouncer{s: s, delay: delay}
}

// Schedule replaces any pending call with fn.
func (d *Debouncer) Schedule(fn func()) {
	d.timer.Stop()
	d.timer = d.s.AfterFunc(d.delay, func() {
		d.timer = nil
		fn()
	})
}

// Cancel drops the pending call, if any. It reports whether one was dropped.
func (d *Debouncer) Cancel() bool {
	stopped := d.timer.Stop()
	d.timer = nil
	return stopped
}

// Pending reports whether a call is waiting to run.
func (d *Debouncer) Pending() bool {
	return d.timer.Pending()
}

// Throttle admits at most one event per window, leading edge. It is a
// burst-of-one token bucket read against the scheduler's clock, so it runs
// on virtual time in tests.
type Throttle struct {
	s       *Scheduler
	window  time.Duration
	limiter *rate.Limiter
}

// NewThrottle creates a rate limiter on s.
func NewThrottle(s *Scheduler, window time.Duration) *Throttle {
	return &Throttle{s: s, window: window, limiter: newLimiter(window)}
}

func newLimiter(window time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(window), 1)
}

// Allow reports whether an event arriving now may be handled, and if so
// starts a new window.
func (t *Throttle) Allow() bool {
	return t.limiter.AllowN(t.s.Now(), 1)
}

// Reset forgets the last admitted event.
func (t *Throttle) Reset() {
	t.limiter = newLimiter(t.window)
}
