package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestScheduler_FiresInDeadlineOrder(t *testing.T) {
	s := New(epoch)
	var order []string

	s.AfterFunc(30*time.Millisecond, func() { order = append(order, "c") })
	s.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
	s.AfterFunc(20*time.Millisecond, func() { order = append(order, "b") })

	assert.Equal(t, 0, s.Step(5*time.Millisecond))
	assert.Equal(t, 3, s.Step(30*time.Millisecond))
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, epoch.Add(35*time.Millisecond), s.Now())
}

func TestScheduler_NowIsDeadlineDuringCallback(t *testing.T) {
	s := New(epoch)
	var seen time.Time
	s.AfterFunc(15*time.Millisecond, func() { seen = s.Now() })

	s.Step(100 * time.Millisecond)
	assert.Equal(t, epoch.Add(15*time.Millisecond), seen)
}

func TestScheduler_ChainedTimersFireInSameAdvance(t *testing.T) {
	s := New(epoch)
	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 5 {
			s.AfterFunc(16*time.Millisecond, tick)
		}
	}
	s.AfterFunc(16*time.Millisecond, tick)

	s.Step(time.Second)
	assert.Equal(t, 5, count)
	assert.Equal(t, 0, s.Len())
}

func TestTimer_Stop(t *testing.T) {
	s := New(epoch)
	fired := false
	tm := s.AfterFunc(10*time.Millisecond, func() { fired = true })

	assert.True(t, tm.Pending())
	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())
	assert.False(t, tm.Pending())

	s.Step(time.Second)
	assert.False(t, fired)

	var nilTimer *Timer
	assert.False(t, nilTimer.Stop())
}

func TestScheduler_PostFromOtherGoroutine(t *testing.T) {
	s := New(epoch)
	var wakes int
	var mu sync.Mutex
	s.OnWake(func(time.Time) {
		mu.Lock()
		wakes++
		mu.Unlock()
	})

	done := make(chan struct{})
	ran := false
	go func() {
		s.Post(func() { ran = true })
		close(done)
	}()
	<-done

	assert.Equal(t, 1, s.Step(0))
	assert.True(t, ran)
	mu.Lock()
	assert.GreaterOrEqual(t, wakes, 1)
	mu.Unlock()
}

func TestScheduler_NextAndWake(t *testing.T) {
	s := New(epoch)
	var last time.Time
	s.OnWake(func(at time.Time) { last = at })

	_, ok := s.Next()
	assert.False(t, ok)

	s.AfterFunc(50*time.Millisecond, func() {})
	next, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, epoch.Add(50*time.Millisecond), next)
	assert.Equal(t, next, last)
}

func TestDebouncer_CollapsesToLast(t *testing.T) {
	s := New(epoch)
	d := NewDebouncer(s, 250*time.Millisecond)
	var got []int

	d.Schedule(func() { got = append(got, 1) })
	s.Step(100 * time.Millisecond)
	d.Schedule(func() { got = append(got, 2) })
	s.Step(200 * time.Millisecond)
	assert.Empty(t, got)
	assert.True(t, d.Pending())

	s.Step(50 * time.Millisecond)
	assert.Equal(t, []int{2}, got)
	assert.False(t, d.Pending())
}

func TestDebouncer_Cancel(t *testing.T) {
	s := New(epoch)
	d := NewDebouncer(s, 250*time.Millisecond)
	fired := false

	assert.False(t, d.Cancel())
	d.Schedule(func() { fired = true })
	assert.True(t, d.Cancel())

	s.Step(time.Second)
	assert.False(t, fired)
}

func TestThrottle(t *testing.T) {
	s := New(epoch)
	th := NewThrottle(s, 100*time.Millisecond)

	assert.True(t, th.Allow())
	s.Step(50 * time.Millisecond)
	assert.False(t, th.Allow())
	s.Step(50 * time.Millisecond)
	assert.True(t, th.Allow())

	th.Reset()
	assert.True(t, th.Allow())
}

func TestThrottle_IdleDoesNotBank(t *testing.T) {
	s := New(epoch)
	th := NewThrottle(s, 50*time.Millisecond)

	require.True(t, th.Allow())
	s.Step(10 * time.Second)
	assert.True(t, th.Allow())
	assert.False(t, th.Allow(), "a long idle admits one event, not a burst")
}
