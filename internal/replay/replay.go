// Package replay drives an engine from a scripted sequence of inputs on
// virtual time and records the camera after every step.
package replay

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/venuemap/internal/clock"
	"github.com/elektrokombinacija/venuemap/internal/config"
	"github.com/elektrokombinacija/venuemap/internal/scene"
	"github.com/elektrokombinacija/venuemap/internal/venuemap"
	"github.com/elektrokombinacija/venuemap/internal/vis/anim"
	"github.com/elektrokombinacija/venuemap/internal/vis/interact"
)

// DefaultSettle is the time run after the last step when a script sets none.
const DefaultSettle = time.Second

// ErrBadStep is returned for a step with neither an event nor a known action.
var ErrBadStep = errors.New("replay: bad step")

// Canvas is the simulated canvas size in pixels.
type Canvas struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Step is one scripted input. After is the virtual time elapsed before it.
// Exactly one of Event and Action is set.
type Step struct {
	After  time.Duration   `yaml:"after"`
	Event  *interact.Event `yaml:"event"`
	Action string          `yaml:"action"`
	Arg    string          `yaml:"arg"`
}

// Script is a named input sequence.
type Script struct {
	Name   string        `yaml:"name"`
	Canvas Canvas        `yaml:"canvas"`
	Settle time.Duration `yaml:"settle"`
	Steps  []Step        `yaml:"steps"`
}

// Parse decodes a YAML script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	if s.Canvas.Width <= 0 || s.Canvas.Height <= 0 {
		s.Canvas = Canvas{Width: 800, Height: 600}
	}
	if s.Settle <= 0 {
		s.Settle = DefaultSettle
	}
	for i, st := range s.Steps {
		if (st.Event == nil) == (st.Action == "") {
			return nil, fmt.Errorf("%w %d: want exactly one of event and action", ErrBadStep, i)
		}
	}
	return &s, nil
}

// LoadFile reads a YAML script file.
func LoadFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return Parse(data)
}

// Row is the engine state after one step.
type Row struct {
	Script  string
	Step    int
	At      time.Duration
	Input   string
	Result  string
	Zoom    float64
	OffsetX float64
	OffsetY float64
	Phase   string
	Clicks  int
	Grade   string
}

// Header is the CSV header matching Row.Record.
var Header = []string{"script", "step", "at_ms", "input", "result", "zoom", "offset_x", "offset_y", "phase", "clicks", "selected"}

// Record formats r as CSV fields.
func (r Row) Record() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
	return []string{
		r.Script,
		strconv.Itoa(r.Step),
		strconv.FormatInt(r.At.Milliseconds(), 10),
		r.Input,
		r.Result,
		f(r.Zoom),
		f(r.OffsetX),
		f(r.OffsetY),
		r.Phase,
		strconv.Itoa(r.Clicks),
		r.Grade,
	}
}

// Runner replays scripts against fresh engines.
type Runner struct {
	Config        config.MapConfiguration
	Grades        []scene.Grade
	GradeMapWidth float64
	Log           zerolog.Logger
}

// Run replays s and returns one row per step plus a final row after the
// settle time.
func (r *Runner) Run(s *Script) ([]Row, error) {
	start := time.Unix(0, 0)
	sched := clock.New(start)
	e := venuemap.New(sched, venuemap.Options{Logger: r.Log})
	defer e.Dispose()

	cfg := r.Config
	e.Initialize(config.NewViewDimensions(s.Canvas.Width, s.Canvas.Height, cfg.Height), &cfg)
	e.SetGrades(r.Grades, r.GradeMapWidth)
	e.SetupCanvas(s.Canvas.Width, s.Canvas.Height)

	clicks := 0
	e.SetClickHandler(func(venuemap.Click) { clicks++ })

	row := func(i int, input, result string) Row {
		off := e.Camera().Offset()
		rw := Row{
			Script:  s.Name,
			Step:    i,
			At:      sched.Now().Sub(start),
			Input:   input,
			Result:  result,
			Zoom:    e.Zoom(),
			OffsetX: off.X,
			OffsetY: off.Y,
			Phase:   e.Gestures().Phase().String(),
			Clicks:  clicks,
		}
		if sel := e.SelectedGrade(); sel != nil {
			rw.Grade = sel.GradeID
		}
		return rw
	}

	rows := make([]Row, 0, len(s.Steps)+1)
	for i, st := range s.Steps {
		sched.Step(st.After)
		if st.Event != nil {
			res := e.HandleEvent(*st.Event)
			rows = append(rows, row(i, st.Event.Kind.String(), res.Kind.String()))
			continue
		}
		if err := apply(e, st); err != nil {
			return rows, fmt.Errorf("step %d: %w", i, err)
		}
		rows = append(rows, row(i, st.Action, ""))
	}

	sched.Step(s.Settle)
	rows = append(rows, row(len(s.Steps), "settle", ""))
	r.Log.Debug().Str("script", s.Name).Int("steps", len(s.Steps)).Int("clicks", clicks).Msg("script replayed")
	return rows, nil
}

func apply(e *venuemap.Engine, st Step) error {
	switch st.Action {
	case "zoom":
		d, err := anim.ParseDirection(st.Arg)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadStep, err)
		}
		e.HandleZoomButton(d)
	case "reset":
		e.ResetZoom()
	case "center":
		e.AdjustViewToCenter(nil)
	case "minimap":
		e.InitializeMiniMap()
	case "prices":
		on, err := strconv.ParseBool(st.Arg)
		if err != nil {
			return fmt.Errorf("%w: prices wants a bool, got %q", ErrBadStep, st.Arg)
		}
		e.SetPriceMode(on)
	case "focus":
		obj := e.FindObjectByGrade(st.Arg, 0)
		if obj == nil {
			return fmt.Errorf("%w: no grade %q", ErrBadStep, st.Arg)
		}
		e.ZoomToObjectBufferHeight(obj, 0, 0, nil)
	default:
		return fmt.Errorf("%w: unknown action %q", ErrBadStep, st.Action)
	}
	return nil
}
