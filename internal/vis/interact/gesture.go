package interact

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/elektrokombinacija/venuemap/internal/clock"
	"github.com/elektrokombinacija/venuemap/internal/config"
	"github.com/elektrokombinacija/venuemap/internal/geom"
)

// Gesture timing and thresholds.
const (
	LongPressDuration = 200 * time.Millisecond
	ClickDebounce     = 250 * time.Millisecond
	SettleDelay       = 150 * time.Millisecond
	WheelInterval     = 100 * time.Millisecond
	GestureInterval   = 100 * time.Millisecond
	PinchInterval     = 50 * time.Millisecond

	ClickThreshold = 5.0  // pixels on either axis
	DragStepLimit  = 50.0 // largest host drag step applied as a pan

	PinchDamping   = 0.5
	PinchSmoothing = 0.5
	WheelBase      = 0.999
)

// Viewport is the camera surface the gesture machine drives.
type Viewport interface {
	Zoom() float64
	Policy() config.ZoomPolicy
	ZoomAtPoint(p geom.Point, z float64)
	Pan(dx, dy float64)
	ScreenToWorld(p geom.Point) geom.Point
}

// Machine turns raw pointer, touch and wheel input into camera mutations and
// click results. It is not safe for concurrent use; every method, and every
// timer it arms, runs on the scheduler's loop.
type Machine struct {
	vp    Viewport
	sched *clock.Scheduler
	log   zerolog.Logger

	state   TouchState
	panned  bool // this gesture moved the camera
	pinched bool // this gesture had two contacts

	longPress *clock.Timer
	settle    *clock.Timer
	click     *clock.Debouncer
	wheel     *clock.Throttle
	pinch     *clock.Throttle
	gesture   *clock.Throttle

	last          geom.Point // differential pan reference
	zoomStartDist float64
	lastScale     float64

	onResult    func(Result)
	onInterrupt func()
}

// NewMachine creates a gesture machine driving vp.
func NewMachine(vp Viewport, sched *clock.Scheduler, log zerolog.Logger) *Machine {
	return &Machine{
		vp:      vp,
		sched:   sched,
		log:     log.With().Str("component", "gesture").Logger(),
		click:   clock.NewDebouncer(sched, ClickDebounce),
		wheel:   clock.NewThrottle(sched, WheelInterval),
		pinch:   clock.NewThrottle(sched, PinchInterval),
		gesture: clock.NewThrottle(sched, GestureInterval),
	}
}

// OnResult registers the callback receiving drag, pinch and wheel results as
// they happen and click results once the click debounce elapses.
func (m *Machine) OnResult(fn func(Result)) {
	m.onResult = fn
}

// OnInterrupt registers a hook run whenever user input is about to move the
// camera, so programmatic animations can yield.
func (m *Machine) OnInterrupt(fn func()) {
	m.onInterrupt = fn
}

// State returns a copy of the current flags.
func (m *Machine) State() TouchState {
	return m.state
}

// Phase derives the coarse gesture state.
func (m *Machine) Phase() Phase {
	s := m.state
	switch {
	case s.IsPinching:
		return PhasePinching
	case (s.IsMoving || s.IsDragging) && m.panned:
		return PhaseDragging
	case s.IsMoving || s.IsDragging:
		return PhaseLongPress
	case s.IsTouching:
		return PhaseTouching
	}
	return PhaseIdle
}

// ClickPending reports whether a recognised click is waiting on its debounce.
func (m *Machine) ClickPending() bool {
	return m.click.Pending()
}

// CancelClick drops a recognised click still waiting on its debounce. It
// reports whether one was dropped.
func (m *Machine) CancelClick() bool {
	return m.click.Cancel()
}

// Handle dispatches one raw event.
func (m *Machine) Handle(ev Event) Result {
	switch ev.Kind {
	case EventMouseDown:
		m.MouseDown(ev.Point)
	case EventMouseMove:
		return m.MouseMove(ev.Point)
	case EventMouseUp:
		return m.MouseUp(ev.Point)
	case EventTouchStart:
		m.TouchStart(ev.Touches)
	case EventTouchMove:
		return m.TouchMove(ev.Touches)
	case EventTouchEnd:
		return m.TouchEnd(ev.Touches, ev.Changed)
	case EventWheel:
		return m.Wheel(ev.Point, ev.DeltaY)
	case EventGesture:
		return m.Gesture(ev.Touches)
	case EventDrag:
		return m.Drag(ev.Point)
	case EventSelectionCreated:
		m.SelectionCreated()
	case EventSelectionCleared:
		m.SelectionCleared()
	case EventCancel:
		m.Cancel()
	}
	return Result{}
}

// MouseDown starts a mouse gesture at p.
func (m *Machine) MouseDown(p geom.Point) {
	m.begin()
	m.state.IsTouching = true
	m.last = p
	m.armLongPress(func() {
		if m.state.IsTouching {
			m.state.IsMoving = true
			m.click.Cancel()
		}
	})
}

// MouseMove pans while the button is held and the pointer has moved more
// than ClickThreshold from the last reference position.
func (m *Machine) MouseMove(p geom.Point) Result {
	s := &m.state
	if !s.IsTouching || s.IsPinching || s.IsZooming || s.PausePanning {
		return Result{}
	}
	delta := p.Sub(m.last)
	if !exceeds(delta, ClickThreshold) {
		return Result{}
	}
	m.click.Cancel()
	m.stopLongPress()
	s.IsMoving = true
	return m.panBy(delta, p)
}

// MouseUp ends a mouse gesture. A release close to the last reference with no
// move, long-press or pinch in between is a click.
func (m *Machine) MouseUp(p geom.Point) Result {
	m.state.IsTouching = false
	m.stopLongPress()

	var res Result
	s := m.state
	if !exceeds(p.Sub(m.last), ClickThreshold) && !s.IsMoving && !s.IsPinching && !s.IsDragging {
		res = m.dispatchClick(p)
	}
	m.resetAction()
	return res
}

// TouchStart handles a new contact; touches lists every contact now down.
func (m *Machine) TouchStart(touches []geom.Point) {
	if len(touches) == 0 {
		return
	}
	m.begin()
	m.state.IsTouching = true

	if len(touches) >= 2 {
		m.stopLongPress()
		m.pinched = true
		m.state.PausePanning = true
		m.state.IsZooming = true
		m.state.IsPinching = true
		m.state.IsDragging = false
		m.zoomStartDist = geom.Distance(touches[0], touches[1])
		m.log.Debug().Float64("distance", m.zoomStartDist).Msg("pinch start")
		return
	}

	m.last = touches[0]
	m.armLongPress(func() {
		if m.state.IsTouching && !m.state.IsPinching {
			m.state.IsDragging = true
			m.click.Cancel()
		}
	})
}

// TouchMove handles contact movement; touches lists every contact still down.
func (m *Machine) TouchMove(touches []geom.Point) Result {
	switch {
	case len(touches) >= 2:
		return m.pinchMove(touches[0], touches[1])
	case len(touches) == 1:
		return m.singleTouchMove(touches[0])
	}
	return Result{}
}

func (m *Machine) pinchMove(a, b geom.Point) Result {
	m.click.Cancel()
	dist := geom.Distance(a, b)

	if !m.state.IsPinching {
		m.state.IsPinching = true
		m.pinched = true
		m.zoomStartDist = dist
		return Result{}
	}

	m.state.IsDragging = false
	if !m.pinch.Allow() {
		return Result{}
	}

	start := m.zoomStartDist
	if start == 0 {
		start = dist
	}
	scale := PinchScale(dist/start, m.lastScale)
	m.lastScale = scale

	policy := m.vp.Policy()
	zoom := policy.Clamp(m.vp.Zoom() * scale)
	mid := geom.Midpoint(a, b)
	m.interrupt()
	m.vp.ZoomAtPoint(mid, zoom)

	// Re-base only while there is room to keep zooming; at a bound the
	// ratio keeps accumulating against the old start distance.
	if zoom > policy.Min && zoom < policy.Max {
		m.zoomStartDist = dist
	}
	return m.emit(Result{Kind: ResultPinch, Point: mid, Zoom: zoom})
}

func (m *Machine) singleTouchMove(p geom.Point) Result {
	s := &m.state
	if s.PausePanning || s.IsPinching {
		return Result{}
	}
	delta := p.Sub(m.last)
	if !exceeds(delta, ClickThreshold) {
		return Result{}
	}
	m.click.Cancel()
	m.stopLongPress()
	s.IsDragging = true
	return m.panBy(delta, p)
}

// TouchEnd handles contacts lifting. remaining lists the contacts still down,
// changed the ones that ended. A single untouched tap is a click.
func (m *Machine) TouchEnd(remaining, changed []geom.Point) Result {
	m.click.Cancel()
	m.stopLongPress()
	m.state.IsTouching = len(remaining) > 0

	// Continue single-touch tracking from the finger left on the glass.
	if m.state.IsPinching && len(remaining) == 1 {
		m.last = remaining[0]
	}

	var res Result
	s := m.state
	if !s.IsDragging && !s.IsPinching && !s.IsZooming && !m.pinched && len(changed) == 1 {
		res = m.dispatchClick(changed[0])
	}
	if len(remaining) == 0 {
		m.pinched = false
	}
	m.resetAction()
	return res
}

// Wheel zooms by WheelBase^deltaY about p, at most once per WheelInterval.
func (m *Machine) Wheel(p geom.Point, deltaY float64) Result {
	m.click.Cancel()
	if !m.wheel.Allow() || m.state.IsZooming {
		return Result{}
	}
	m.interrupt()
	zoom := m.vp.Policy().Clamp(m.vp.Zoom() * math.Pow(WheelBase, deltaY))
	m.vp.ZoomAtPoint(p, zoom)
	return m.emit(Result{Kind: ResultWheel, Point: p, Zoom: zoom})
}

// Gesture handles a host-synthesised two-finger gesture sample. The scale is
// the damped ratio to the previous sample.
func (m *Machine) Gesture(touches []geom.Point) Result {
	if len(touches) != 2 || !m.gesture.Allow() {
		return Result{}
	}
	m.click.Cancel()
	m.state.PausePanning = true

	dist := geom.Distance(touches[0], touches[1])
	if m.zoomStartDist == 0 {
		m.zoomStartDist = dist
		return Result{}
	}

	scale := PinchScale(dist/m.zoomStartDist, 0)
	m.zoomStartDist = dist
	zoom := m.vp.Policy().Clamp(m.vp.Zoom() * scale)
	mid := geom.Midpoint(touches[0], touches[1])
	m.interrupt()
	m.vp.ZoomAtPoint(mid, zoom)
	return m.emit(Result{Kind: ResultPinch, Point: mid, Zoom: zoom})
}

// Drag handles a host-synthesised touch drag sample. Steps larger than
// DragStepLimit are treated as jumps and only move the reference.
func (m *Machine) Drag(p geom.Point) Result {
	if m.state.PausePanning || m.state.IsZooming {
		return Result{}
	}
	delta := p.Sub(m.last)
	if delta == (geom.Point{}) || exceeds(delta, DragStepLimit) {
		m.last = p
		return Result{}
	}
	m.click.Cancel()
	m.state.IsDragging = true
	return m.panBy(delta, p)
}

// SelectionCreated pauses panning while the host draws a selection box.
func (m *Machine) SelectionCreated() {
	m.state.PausePanning = true
}

// SelectionCleared resumes panning.
func (m *Machine) SelectionCleared() {
	m.state.PausePanning = false
}

// Cancel aborts the current gesture: pending click, long-press and settle
// timers are dropped and the flags return to idle.
func (m *Machine) Cancel() {
	m.click.Cancel()
	m.stopLongPress()
	m.settle.Stop()
	m.settle = nil
	m.state = TouchState{}
	m.panned = false
	m.pinched = false
	m.zoomStartDist = 0
	m.lastScale = 0
}

// PinchScale converts a distance ratio into a zoom factor: damped toward 1 by
// PinchDamping, then blended with the previous factor (when non-zero) by
// PinchSmoothing.
func PinchScale(ratio, last float64) float64 {
	scale := 1 + (ratio-1)*PinchDamping
	if last != 0 {
		scale = last + (scale-last)*PinchSmoothing
	}
	return scale
}

// begin runs at the start of every contact: input takes precedence over
// whatever was pending from the previous gesture.
func (m *Machine) begin() {
	m.click.Cancel()
	if m.settle.Stop() {
		m.settleNow()
	}
	m.interrupt()
	if !m.state.IsTouching {
		m.panned = false
	}
}

func (m *Machine) panBy(delta, p geom.Point) Result {
	m.interrupt()
	m.vp.Pan(delta.X, delta.Y)
	m.last = p
	m.panned = true
	return m.emit(Result{Kind: ResultDrag, Point: p, Delta: delta, Zoom: m.vp.Zoom()})
}

// dispatchClick resolves the world point under p now, while the camera is
// the one the user tapped, and emits the click after the debounce.
func (m *Machine) dispatchClick(p geom.Point) Result {
	res := Result{Kind: ResultClick, Point: p, World: m.vp.ScreenToWorld(p), Zoom: m.vp.Zoom()}
	m.log.Debug().Float64("x", p.X).Float64("y", p.Y).Msg("click recognised")
	m.click.Schedule(func() {
		m.emit(res)
	})
	return res
}

func (m *Machine) armLongPress(fn func()) {
	m.stopLongPress()
	m.longPress = m.sched.AfterFunc(LongPressDuration, func() {
		m.longPress = nil
		fn()
	})
}

func (m *Machine) stopLongPress() {
	m.longPress.Stop()
	m.longPress = nil
}

// resetAction clears the per-contact state; the zoom flags survive for the
// settle cooldown so trailing events of a pinch are not read as a pan.
func (m *Machine) resetAction() {
	m.zoomStartDist = 0
	m.lastScale = 0
	m.state.IsMoving = false
	m.state.IsDragging = false
	if m.state.IsPinching || m.state.IsZooming || m.state.PausePanning {
		m.settle.Stop()
		m.settle = m.sched.AfterFunc(SettleDelay, m.settleNow)
	}
}

func (m *Machine) settleNow() {
	m.settle = nil
	m.state.PausePanning = false
	m.state.IsZooming = false
	m.state.IsPinching = false
}

func (m *Machine) interrupt() {
	if m.onInterrupt != nil {
		m.onInterrupt()
	}
}

func (m *Machine) emit(r Result) Result {
	if m.onResult != nil {
		m.onResult(r)
	}
	return r
}

func exceeds(d geom.Point, limit float64) bool {
	return math.Abs(d.X) > limit || math.Abs(d.Y) > limit
}
