// Package vis implements the Gio desktop viewer for a venue map.
package vis

import (
	"context"
	"image/color"
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/widget/material"
	"github.com/rs/zerolog"

	"github.com/elektrokombinacija/venuemap/internal/clock"
	"github.com/elektrokombinacija/venuemap/internal/config"
	"github.com/elektrokombinacija/venuemap/internal/scene"
	"github.com/elektrokombinacija/venuemap/internal/venuemap"
	"github.com/elektrokombinacija/venuemap/internal/vis/anim"
	"github.com/elektrokombinacija/venuemap/internal/vis/render"
	"github.com/elektrokombinacija/venuemap/internal/vis/widgets"
)

// Options configures the viewer.
type Options struct {
	Config        *config.MapConfiguration
	Grades        []scene.Grade
	GradeMapWidth float64
	Loader        venuemap.BackgroundLoader
	Logger        zerolog.Logger
}

// App is the viewer application.
type App struct {
	log   zerolog.Logger
	theme *material.Theme

	sched  *clock.Scheduler
	frames *render.WindowFrames
	engine *venuemap.Engine

	mapView *widgets.MapView
	toolbar *widgets.Toolbar

	ctx    context.Context
	cancel context.CancelFunc

	wakeMu    sync.Mutex
	wakeTimer *time.Timer
}

// NewApp creates a viewer that renders into w.
func NewApp(w *app.Window, opts Options) *App {
	sched := clock.New(time.Now())
	frames := render.NewWindowFrames(w)
	e := venuemap.New(sched, venuemap.Options{
		Loader: opts.Loader,
		Frames: frames,
		Logger: opts.Logger,
	})
	e.SetGrades(opts.Grades, opts.GradeMapWidth)

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		log:     opts.Logger.With().Str("component", "app").Logger(),
		theme:   material.NewTheme(),
		sched:   sched,
		frames:  frames,
		engine:  e,
		toolbar: widgets.NewToolbar(e),
		ctx:     ctx,
		cancel:  cancel,
	}
	a.mapView = widgets.NewMapView(e, opts.Config)
	a.mapView.OnAttach = a.attach

	e.SetClickHandler(func(c venuemap.Click) {
		if c.Object == nil {
			return
		}
		a.log.Info().Str("grade", c.Object.GradeID).Int("shape", c.Object.ShapeIndex).Msg("grade selected")
	})

	// Timers and posted results need a frame to run in.
	sched.OnWake(func(at time.Time) {
		if at.IsZero() {
			w.Invalidate()
			return
		}
		a.wakeAt(w, at)
	})
	return a
}

// Engine returns the map engine.
func (a *App) Engine() *venuemap.Engine { return a.engine }

func (a *App) attach() {
	a.engine.LoadBackgroundImage(a.ctx, nil, func() {
		a.engine.FocusAfterLoad(nil)
	})
}

func (a *App) wakeAt(w *app.Window, at time.Time) {
	a.wakeMu.Lock()
	defer a.wakeMu.Unlock()
	d := time.Until(at)
	if a.wakeTimer == nil {
		a.wakeTimer = time.AfterFunc(d, w.Invalidate)
		return
	}
	a.wakeTimer.Reset(d)
}

// Run starts the window event loop.
func (a *App) Run(w *app.Window) error {
	var ops op.Ops
	defer a.shutdown()

	tag := new(int)

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			a.sched.Advance(time.Now())
			a.frames.Fire()

			gtx := app.NewContext(&ops, e)

			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag, Optional: key.ModCtrl | key.ModShift})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					a.handleKeyEvent(ke)
				}
			}
			event.Op(gtx.Ops, tag)

			a.layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func (a *App) shutdown() {
	a.cancel()
	a.engine.Dispose()
	a.wakeMu.Lock()
	if a.wakeTimer != nil {
		a.wakeTimer.Stop()
	}
	a.wakeMu.Unlock()
}

func (a *App) handleKeyEvent(e key.Event) {
	switch e.Name {
	case "+", "=":
		a.engine.HandleZoomButton(anim.ZoomIn)
	case "-":
		a.engine.HandleZoomButton(anim.ZoomOut)
	case "0", key.NameHome:
		a.engine.ResetZoom()
	case "C":
		a.engine.AdjustViewToCenter(nil)
	case "P":
		a.engine.SetPriceMode(!a.engine.PriceMode())
	case key.NameEscape:
		a.engine.ClearSelection()
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, color.NRGBA{R: 30, G: 30, B: 35, A: 255})

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.toolbar.Layout(gtx, a.theme)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return a.mapView.Layout(gtx, a.theme)
		}),
	)
}
