package interact

import (
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"

	"github.com/elektrokombinacija/venuemap/internal/geom"
)

// PointerAdapter feeds Gio pointer events into a Machine, keeping track of
// which touch contacts are down.
type PointerAdapter struct {
	machine *Machine

	order   []pointer.ID
	touches map[pointer.ID]geom.Point
}

// NewPointerAdapter creates an adapter for m.
func NewPointerAdapter(m *Machine) *PointerAdapter {
	return &PointerAdapter{
		machine: m,
		touches: make(map[pointer.ID]geom.Point),
	}
}

// Events drains the pointer events queued for target and feeds them to the
// machine. The caller registers target with event.Op inside its clip area.
func (a *PointerAdapter) Events(gtx layout.Context, target event.Tag) {
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  target,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll | pointer.Move | pointer.Cancel,
			ScrollY: pointer.ScrollRange{Min: -1 << 20, Max: 1 << 20},
		})
		if !ok {
			break
		}
		if pe, ok := ev.(pointer.Event); ok {
			a.Handle(pe)
		}
	}
}

// Handle translates one pointer event.
func (a *PointerAdapter) Handle(ev pointer.Event) Result {
	p := geom.FromF32(ev.Position)

	if ev.Kind == pointer.Cancel {
		a.order = a.order[:0]
		clear(a.touches)
		a.machine.Cancel()
		return Result{}
	}
	if ev.Source == pointer.Touch {
		return a.touch(ev, p)
	}

	switch ev.Kind {
	case pointer.Press:
		if ev.Buttons.Contain(pointer.ButtonPrimary) {
			a.machine.MouseDown(p)
		}
	case pointer.Drag, pointer.Move:
		return a.machine.MouseMove(p)
	case pointer.Release:
		return a.machine.MouseUp(p)
	case pointer.Scroll:
		return a.machine.Wheel(p, float64(ev.Scroll.Y))
	}
	return Result{}
}

func (a *PointerAdapter) touch(ev pointer.Event, p geom.Point) Result {
	switch ev.Kind {
	case pointer.Press:
		if _, ok := a.touches[ev.PointerID]; !ok {
			a.order = append(a.order, ev.PointerID)
		}
		a.touches[ev.PointerID] = p
		a.machine.TouchStart(a.active())
	case pointer.Drag:
		if _, ok := a.touches[ev.PointerID]; !ok {
			return Result{}
		}
		a.touches[ev.PointerID] = p
		return a.machine.TouchMove(a.active())
	case pointer.Release:
		if _, ok := a.touches[ev.PointerID]; !ok {
			return Result{}
		}
		delete(a.touches, ev.PointerID)
		for i, id := range a.order {
			if id == ev.PointerID {
				a.order = append(a.order[:i], a.order[i+1:]...)
				break
			}
		}
		return a.machine.TouchEnd(a.active(), []geom.Point{p})
	}
	return Result{}
}

// active lists the contacts in press order.
func (a *PointerAdapter) active() []geom.Point {
	pts := make([]geom.Point, 0, len(a.order))
	for _, id := range a.order {
		pts = append(pts, a.touches[id])
	}
	return pts
}
