// Package clock provides the single-threaded time source the map engine runs
// on. Timers never fire on their own goroutine: callbacks run inside Advance,
// on whichever goroutine drives the event loop, so engine state needs no locks.
package clock

import (
	"container/heap"
	"sync"
	"time"
)

// Scheduler is a virtual-time timer queue. The host advances it from its
// event loop (a window frame, a replay step, a test).
type Scheduler struct {
	now    time.Time
	timers timerHeap
	seq    uint64

	mu     sync.Mutex
	posted []func()
	wake   func(at time.Time)
}

// Timer is a pending callback created by AfterFunc.
type Timer struct {
	s     *Scheduler
	at    time.Time
	seq   uint64
	fn    func()
	index int // heap index, -1 once fired or stopped
}

// New returns a scheduler whose clock starts at start.
func New(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// OnWake registers a hook called whenever the earliest deadline changes or a
// callback is posted, so a real-time host can arrange to call Advance again.
// It may be called from any goroutine.
func (s *Scheduler) OnWake(fn func(at time.Time)) {
	s.mu.Lock()
	s.wake = fn
	s.mu.Unlock()
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.now
}

// AfterFunc arranges for fn to run once d has elapsed on the scheduler clock.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &Timer{s: s, at: s.now.Add(d), seq: s.seq, fn: fn}
	heap.Push(&s.timers, t)
	if s.timers[0] == t {
		s.notify(t.at)
	}
	return t
}

// Stop cancels the timer. It reports whether the call stopped a pending
// timer. Stop on a nil timer is a no-op.
func (t *Timer) Stop() bool {
	if t == nil || t.index < 0 {
		return false
	}
	heap.Remove(&t.s.timers, t.index)
	return true
}

// Pending reports whether the timer has neither fired nor been stopped.
func (t *Timer) Pending() bool {
	return t != nil && t.index >= 0
}

// Post queues fn to run at the start of the next Advance. Unlike every other
// method it is safe to call from any goroutine; it is how asynchronous
// collaborators hand results back to the loop.
func (s *Scheduler) Post(fn func()) {
	s.mu.Lock()
	s.posted = append(s.posted, fn)
	wake := s.wake
	s.mu.Unlock()
	if wake != nil {
		wake(time.Time{})
	}
}

// Advance moves the clock to to, running posted callbacks and then every
// timer due by then in deadline order. The clock reads each timer's deadline
// while its callback runs. Timers scheduled by callbacks fire in the same
// call if they fall due. It returns the number of callbacks run.
func (s *Scheduler) Advance(to time.Time) int {
	ran := s.drainPosted()
	for len(s.timers) > 0 && !s.timers[0].at.After(to) {
		t := heap.Pop(&s.timers).(*Timer)
		if t.at.After(s.now) {
			s.now = t.at
		}
		t.fn()
		ran++
		ran += s.drainPosted()
	}
	if to.After(s.now) {
		s.now = to
	}
	if next, ok := s.Next(); ok {
		s.notify(next)
	}
	return ran
}

// Step advances the clock by d.
func (s *Scheduler) Step(d time.Duration) int {
	return s.Advance(s.now.Add(d))
}

// Next returns the earliest pending deadline.
func (s *Scheduler) Next() (time.Time, bool) {
	if len(s.timers) == 0 {
		return time.Time{}, false
	}
	return s.timers[0].at, true
}

// Len returns the number of pending timers.
func (s *Scheduler) Len() int {
	return len(s.timers)
}

func (s *Scheduler) drainPosted() int {
	s.mu.Lock()
	posted := s.posted
	s.posted = nil
	s.mu.Unlock()
	for _, fn := range posted {
		fn()
	}
	return len(posted)
}

func (s *Scheduler) notify(at time.Time) {
	s.mu.Lock()
	wake := s.wake
	s.mu.Unlock()
	if wake != nil {
		wake(at)
	}
}

type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
