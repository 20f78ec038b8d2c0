package render

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/elektrokombinacija/venuemap/internal/clock"
)

func TestLoop_StepFrames(t *testing.T) {
	frames := &StepFrames{}
	draws := 0
	l := NewLoop(frames, func() { draws++ }, zerolog.Nop())

	l.Start()
	l.Start()
	assert.Equal(t, 1, frames.Pending(), "second Start must not chain another frame")

	for i := 0; i < 5; i++ {
		assert.Equal(t, 1, frames.Step())
	}
	assert.Equal(t, 5, draws)
	assert.Equal(t, uint64(5), l.Frames())

	l.Stop()
	assert.False(t, l.Running())
	assert.Zero(t, frames.Pending())
	assert.Zero(t, frames.Step())
	assert.Equal(t, 5, draws)
}

func TestLoop_StopFromDraw(t *testing.T) {
	frames := &StepFrames{}
	var l *Loop
	l = NewLoop(frames, func() {
		if l.Frames() == 3 {
			l.Stop()
		}
	}, zerolog.Nop())

	l.Start()
	for frames.Step() > 0 {
	}
	assert.Equal(t, uint64(3), l.Frames())
	assert.Zero(t, frames.Pending())
}

func TestLoop_ClockFrames(t *testing.T) {
	sched := clock.New(time.Unix(0, 0))
	draws := 0
	l := NewLoop(ClockFrames{Sched: sched}, func() { draws++ }, zerolog.Nop())

	l.Start()
	sched.Step(160 * time.Millisecond)
	assert.Equal(t, 10, draws)

	l.Stop()
	assert.Zero(t, sched.Len())
	sched.Step(time.Second)
	assert.Equal(t, 10, draws)
}

func TestLoop_SetDraw(t *testing.T) {
	frames := &StepFrames{}
	a, b := 0, 0
	l := NewLoop(frames, func() { a++ }, zerolog.Nop())
	l.Start()
	frames.Step()
	l.SetDraw(func() { b++ })
	frames.Step()
	l.SetDraw(nil)
	frames.Step()

	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, uint64(3), l.Frames())
}

type fakeWindow struct{ invalidations int }

func (w *fakeWindow) Invalidate() { w.invalidations++ }

func TestWindowFrames(t *testing.T) {
	win := &fakeWindow{}
	frames := NewWindowFrames(win)
	draws := 0
	l := NewLoop(frames, func() { draws++ }, zerolog.Nop())

	l.Start()
	assert.Equal(t, 1, win.invalidations)
	assert.True(t, frames.Fire())
	assert.Equal(t, 1, draws)
	assert.Equal(t, 2, win.invalidations)

	l.Stop()
	assert.False(t, frames.Fire())
	assert.Equal(t, 1, draws)
}
