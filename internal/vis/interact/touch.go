package interact

import (
	"fmt"
	"strings"

	"github.com/elektrokombinacija/venuemap/internal/geom"
)

// TouchState holds the per-gesture flags. It exists only between first
// contact and the settle cooldown after release.
type TouchState struct {
	IsTouching   bool
	IsDragging   bool // touch pan or touch long-press
	IsPinching   bool
	IsZooming    bool // two-finger zoom in progress
	IsMoving     bool // mouse pan or mouse long-press
	PausePanning bool
}

// Idle reports whether every flag is clear.
func (s TouchState) Idle() bool {
	return s == TouchState{}
}

// Phase is the coarse gesture state derived from the flags.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseTouching
	PhaseLongPress
	PhaseDragging
	PhasePinching
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseTouching:
		return "touching"
	case PhaseLongPress:
		return "long-press"
	case PhaseDragging:
		return "dragging"
	case PhasePinching:
		return "pinching"
	}
	return "unknown"
}

// EventKind enumerates the raw inputs the gesture machine consumes.
type EventKind int

const (
	EventMouseDown EventKind = iota + 1
	EventMouseMove
	EventMouseUp
	EventTouchStart
	EventTouchMove
	EventTouchEnd
	EventWheel
	EventGesture // host-synthesised two-finger gesture
	EventDrag    // host-synthesised touch drag
	EventSelectionCreated
	EventSelectionCleared
	EventCancel
)

var eventNames = map[EventKind]string{
	EventMouseDown:        "mouse_down",
	EventMouseMove:        "mouse_move",
	EventMouseUp:          "mouse_up",
	EventTouchStart:       "touch_start",
	EventTouchMove:        "touch_move",
	EventTouchEnd:         "touch_end",
	EventWheel:            "wheel",
	EventGesture:          "gesture",
	EventDrag:             "drag",
	EventSelectionCreated: "selection_created",
	EventSelectionCleared: "selection_cleared",
	EventCancel:           "cancel",
}

func (k EventKind) String() string {
	if s, ok := eventNames[k]; ok {
		return s
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EventKind) UnmarshalText(b []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(b)))
	for kind, s := range eventNames {
		if s == name {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", string(b))
}

// Event is one raw input in canvas pixel coordinates. Touches lists every
// contact still down; Changed lists the contacts that ended (touch_end only).
type Event struct {
	Kind    EventKind    `yaml:"kind"`
	Point   geom.Point   `yaml:"point"`
	Touches []geom.Point `yaml:"touches"`
	Changed []geom.Point `yaml:"changed"`
	DeltaY  float64      `yaml:"delta_y"`
}

// ResultKind classifies what a gesture did.
type ResultKind int

const (
	ResultNone ResultKind = iota
	ResultClick
	ResultDrag
	ResultPinch
	ResultWheel
)

func (k ResultKind) String() string {
	switch k {
	case ResultNone:
		return "none"
	case ResultClick:
		return "click"
	case ResultDrag:
		return "drag"
	case ResultPinch:
		return "pinch"
	case ResultWheel:
		return "wheel"
	}
	return "unknown"
}

// Result is the outcome of one input. Point is the click position or zoom
// pivot in canvas pixels; Delta is the pan step; Zoom the zoom after the step.
// World is the world point under a click when it was recognised.
type Result struct {
	Kind  ResultKind
	Point geom.Point
	World geom.Point
	Delta geom.Point
	Zoom  float64
}
