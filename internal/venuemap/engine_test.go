package venuemap

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/venuemap/internal/clock"
	"github.com/elektrokombinacija/venuemap/internal/config"
	"github.com/elektrokombinacija/venuemap/internal/geom"
	"github.com/elektrokombinacija/venuemap/internal/scene"
	"github.com/elektrokombinacija/venuemap/internal/vis/anim"
	"github.com/elektrokombinacija/venuemap/internal/vis/interact"
	"github.com/elektrokombinacija/venuemap/internal/vis/render"
)

type fakeLoader struct {
	img   image.Image
	err   error
	paths chan []string
}

func (f *fakeLoader) Load(_ context.Context, paths []string, _, _ int) (image.Image, error) {
	if f.paths != nil {
		f.paths <- paths
	}
	return f.img, f.err
}

func testConfig() *config.MapConfiguration {
	cfg := config.Default()
	cfg.Path = config.Paths{"map.png"}
	cfg.Width = 2000
	cfg.Height = 1000
	cfg.Zoom.Min = 0.5
	return &cfg
}

func vipGrade() scene.Grade {
	return scene.Grade{
		ID:           "vip",
		Name:         "VIP",
		Abbreviation: "V",
		Price:        150,
		Settings: []scene.GradeSetting{{
			Color:  "#B60000",
			Points: []geom.Point{{X: 500, Y: 500}, {X: 700, Y: 500}, {X: 700, Y: 700}, {X: 500, Y: 700}},
		}},
	}
}

func newEngine(t *testing.T, loader BackgroundLoader, frames render.FrameScheduler) (*Engine, *clock.Scheduler) {
	t.Helper()
	sched := clock.New(time.Unix(0, 0))
	e := New(sched, Options{Loader: loader, Frames: frames, Logger: zerolog.Nop()})
	cfg := testConfig()
	e.Initialize(config.NewViewDimensions(800, 600, cfg.Height), cfg)
	return e, sched
}

// drain advances the scheduler until cond holds, so results posted by the
// loader goroutine get applied.
func drain(t *testing.T, sched *clock.Scheduler, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		sched.Step(0)
		return cond()
	}, time.Second, time.Millisecond)
}

func TestEngine_VisibleBounds(t *testing.T) {
	e, _ := newEngine(t, nil, &render.StepFrames{})

	assert.Equal(t, geom.Bounds{Zoom: 1}, e.VisibleBounds(0))

	e.SetupCanvas(800, 600)
	assert.Equal(t, geom.Bounds{Left: 0, Top: 0, Right: 800, Bottom: 600, Zoom: 1}, e.VisibleBounds(0))
	assert.True(t, e.IsInBounds(geom.Pt(800, 0), e.VisibleBounds(0)))
	assert.False(t, e.IsInBounds(geom.Pt(801, 0), e.VisibleBounds(0)))
}

func TestEngine_LoadBackground(t *testing.T) {
	loader := &fakeLoader{img: image.NewRGBA(image.Rect(0, 0, 3000, 1500)), paths: make(chan []string, 1)}
	e, sched := newEngine(t, loader, &render.StepFrames{})
	e.SetupCanvas(800, 600)

	ready := false
	e.LoadBackgroundImage(context.Background(), nil, func() { ready = true })
	assert.Equal(t, []string{"map.png"}, <-loader.paths)
	drain(t, sched, func() bool { return ready })

	assert.True(t, e.Ready())
	cfg := e.Config()
	assert.Equal(t, 3000.0, cfg.Width)
	assert.Equal(t, 1500.0, cfg.Height)
	assert.InDelta(t, 0.4, e.View().Scale, 1e-12)
	assert.InDelta(t, 1200, e.MapWidth(), 1e-9)
	assert.True(t, e.Loop().Running())
}

func TestEngine_LoadNarrowBackgroundKeepsViewWidth(t *testing.T) {
	loader := &fakeLoader{img: image.NewRGBA(image.Rect(0, 0, 500, 1000))}
	e, sched := newEngine(t, loader, &render.StepFrames{})
	e.SetupCanvas(800, 600)

	e.LoadBackgroundImage(context.Background(), []string{"narrow.png"}, nil)
	drain(t, sched, e.Ready)
	assert.Equal(t, 800.0, e.MapWidth())
}

func TestEngine_LoadFailure(t *testing.T) {
	loader := &fakeLoader{err: errors.New("boom"), paths: make(chan []string, 1)}
	e, sched := newEngine(t, loader, &render.StepFrames{})
	e.SetupCanvas(800, 600)

	called := false
	e.LoadBackgroundImage(context.Background(), nil, func() { called = true })
	<-loader.paths
	require.Eventually(t, func() bool { return sched.Step(0) > 0 }, time.Second, time.Millisecond)

	assert.False(t, called)
	assert.False(t, e.Ready())
}

func TestEngine_LoadBeforeSetupIgnored(t *testing.T) {
	loader := &fakeLoader{img: image.NewRGBA(image.Rect(0, 0, 10, 10)), paths: make(chan []string, 1)}
	e, _ := newEngine(t, loader, &render.StepFrames{})

	e.LoadBackgroundImage(context.Background(), nil, nil)
	assert.Empty(t, loader.paths)
}

func TestEngine_FocusAfterLoad(t *testing.T) {
	e, sched := newEngine(t, nil, &render.StepFrames{})
	e.SetupCanvas(800, 600)

	done := false
	e.FocusAfterLoad(func() { done = true })
	sched.Step(FocusDelay - time.Millisecond)
	assert.False(t, e.MiniMap().Ready())

	sched.Step(time.Millisecond)
	assert.True(t, e.MiniMap().Ready())
	sched.Step(time.Second)

	assert.True(t, done)
	assert.InDelta(t, 0.9, e.Zoom(), 1e-9)
	center := e.Camera().Center()
	assert.InDelta(t, 600, center.X, 1e-6)
	assert.InDelta(t, 300, center.Y, 1e-6)
}

func TestEngine_ClickSelectsGrade(t *testing.T) {
	e, sched := newEngine(t, nil, &render.StepFrames{})
	e.SetGrades([]scene.Grade{vipGrade()}, 0)
	e.SetupCanvas(800, 600)

	var clicks []Click
	e.SetClickHandler(func(c Click) { clicks = append(clicks, c) })

	e.HandleEvent(interact.Event{Kind: interact.EventMouseDown, Point: geom.Pt(350, 350)})
	e.HandleEvent(interact.Event{Kind: interact.EventMouseUp, Point: geom.Pt(350, 350)})
	assert.Empty(t, clicks)

	sched.Step(interact.ClickDebounce)
	require.Len(t, clicks, 1)
	region := e.FindObjectByGrade("vip", 0)
	require.NotNil(t, region)
	assert.Same(t, region, clicks[0].Object)
	assert.Same(t, region, e.SelectedGrade())

	sched.Step(time.Second)
	assert.InDelta(t, anim.ZoomThreshold, e.Zoom(), 1e-9)
	center := e.Camera().Center()
	assert.InDelta(t, 360, center.X, 1e-6)
	assert.InDelta(t, 360+600*0.3/2, center.Y, 1e-6)
}

func TestEngine_ClickOnEmptySpace(t *testing.T) {
	e, sched := newEngine(t, nil, &render.StepFrames{})
	e.SetGrades([]scene.Grade{vipGrade()}, 0)
	e.SetupCanvas(800, 600)

	var got Click
	e.SetClickHandler(func(c Click) { got = c })
	e.HandleEvent(interact.Event{Kind: interact.EventMouseDown, Point: geom.Pt(20, 20)})
	e.HandleEvent(interact.Event{Kind: interact.EventMouseUp, Point: geom.Pt(20, 20)})
	sched.Step(time.Second)

	assert.Nil(t, got.Object)
	assert.Equal(t, geom.Pt(20, 20), got.World)
	assert.Equal(t, 1.0, e.Zoom())
}

func TestEngine_InputCancelsAnimation(t *testing.T) {
	e, sched := newEngine(t, nil, &render.StepFrames{})
	e.SetupCanvas(800, 600)

	called := false
	require.True(t, e.ZoomAndPanToObject(e.CreateObjectFromPoint(geom.Pt(1000, 500)), 2, func() { called = true }))
	sched.Step(100 * time.Millisecond)

	e.HandleEvent(interact.Event{Kind: interact.EventMouseDown, Point: geom.Pt(10, 10)})
	zoom := e.Zoom()
	sched.Step(time.Second)

	assert.False(t, called)
	assert.Equal(t, zoom, e.Zoom())
}

func TestEngine_CameraMutationCancelsPendingClick(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *Engine)
	}{
		{name: "zoom button", mutate: func(e *Engine) { e.HandleZoomButton(anim.ZoomIn) }},
		{name: "reset", mutate: func(e *Engine) { e.ResetZoom() }},
		{name: "center", mutate: func(e *Engine) { e.AdjustViewToCenter(nil) }},
		{name: "focus object", mutate: func(e *Engine) {
			e.ZoomAndPanToObject(e.CreateObjectFromPoint(geom.Pt(100, 100)), 0, nil)
		}},
		{name: "focus with buffer", mutate: func(e *Engine) {
			e.ZoomToObjectBufferHeight(e.CreateObjectFromPoint(geom.Pt(100, 100)), 0, 40, nil)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, sched := newEngine(t, nil, &render.StepFrames{})
			e.SetGrades([]scene.Grade{vipGrade()}, 0)
			e.SetupCanvas(800, 600)

			var clicks []Click
			e.SetClickHandler(func(c Click) { clicks = append(clicks, c) })

			e.HandleEvent(interact.Event{Kind: interact.EventMouseDown, Point: geom.Pt(350, 350)})
			e.HandleEvent(interact.Event{Kind: interact.EventMouseUp, Point: geom.Pt(350, 350)})
			sched.Step(50 * time.Millisecond)
			require.True(t, e.Gestures().ClickPending())

			tt.mutate(e)
			assert.False(t, e.Gestures().ClickPending())

			sched.Step(time.Second)
			assert.Empty(t, clicks)
			assert.Nil(t, e.SelectedGrade())
		})
	}
}

func TestEngine_ClickHitsWhatWasTapped(t *testing.T) {
	e, sched := newEngine(t, nil, &render.StepFrames{})
	e.SetGrades([]scene.Grade{vipGrade()}, 0)
	e.SetupCanvas(800, 600)

	var clicks []Click
	e.SetClickHandler(func(c Click) { clicks = append(clicks, c) })

	e.HandleEvent(interact.Event{Kind: interact.EventMouseDown, Point: geom.Pt(350, 350)})
	e.HandleEvent(interact.Event{Kind: interact.EventMouseUp, Point: geom.Pt(350, 350)})
	// Moves the region out from under the tap before the debounce elapses.
	e.Camera().Pan(300, 0)
	sched.Step(interact.ClickDebounce)

	require.Len(t, clicks, 1)
	assert.Equal(t, geom.Pt(350, 350), clicks[0].World)
	assert.Equal(t, geom.Pt(350, 350), clicks[0].Screen)
	assert.Same(t, e.FindObjectByGrade("vip", 0), clicks[0].Object)
}

func TestEngine_FocusAfterLoadCompletesWhenInterrupted(t *testing.T) {
	e, sched := newEngine(t, nil, &render.StepFrames{})
	e.SetupCanvas(800, 600)

	done := 0
	e.FocusAfterLoad(func() { done++ })
	sched.Step(FocusDelay + 100*time.Millisecond)
	require.True(t, e.animator.Active())

	e.HandleEvent(interact.Event{Kind: interact.EventMouseDown, Point: geom.Pt(10, 10)})
	e.HandleEvent(interact.Event{Kind: interact.EventMouseUp, Point: geom.Pt(10, 10)})
	assert.False(t, e.animator.Active())

	sched.Step(5 * time.Second)
	assert.Equal(t, 1, done)
}

func TestEngine_DisposeDropsFocusCompletion(t *testing.T) {
	e, sched := newEngine(t, nil, &render.StepFrames{})
	e.SetupCanvas(800, 600)

	done := 0
	e.FocusAfterLoad(func() { done++ })
	sched.Step(FocusDelay + 100*time.Millisecond)

	e.Dispose()
	sched.Step(5 * time.Second)
	assert.Zero(t, done)
}

func TestEngine_ZoomButtonsAndQueries(t *testing.T) {
	e, sched := newEngine(t, nil, &render.StepFrames{})
	e.SetupCanvas(800, 600)

	assert.False(t, e.ShowMiniMap())
	for i := 0; i < 10; i++ {
		e.HandleZoomButton(anim.ZoomIn)
		sched.Step(time.Second)
	}
	assert.Equal(t, 2.5, e.Zoom())
	assert.True(t, e.DisableZoomIn())
	assert.False(t, e.DisableZoomOut())
	assert.True(t, e.ShowMiniMap())

	e.ResetZoom()
	assert.Equal(t, 1.0, e.Zoom())
	assert.Equal(t, geom.Point{}, e.Camera().Offset())
}

func TestEngine_PriceMode(t *testing.T) {
	e, _ := newEngine(t, nil, &render.StepFrames{})
	e.SetGrades([]scene.Grade{vipGrade()}, 0)

	var price *scene.Object
	for _, o := range e.Store().Objects() {
		if o.Kind == scene.KindPrice {
			price = o
		}
	}
	require.NotNil(t, price)
	assert.False(t, price.Visible())

	e.SetPriceMode(true)
	assert.True(t, e.PriceMode())
	assert.True(t, price.Visible())
}

func TestEngine_RenderHookAndMiniMapSync(t *testing.T) {
	frames := &render.StepFrames{}
	e, _ := newEngine(t, nil, frames)
	e.SetupCanvas(800, 600)
	e.InitializeMiniMap()

	hooks := 0
	e.SetRenderHook(func() { hooks++ })
	frames.Step()
	frames.Step()
	assert.Equal(t, 2, hooks)

	e.HandleEvent(interact.Event{Kind: interact.EventMouseDown, Point: geom.Pt(400, 300)})
	e.HandleEvent(interact.Event{Kind: interact.EventMouseMove, Point: geom.Pt(300, 300)})
	frames.Step()
	r, ok := e.MiniMap().Rect()
	require.True(t, ok)
	assert.InDelta(t, 100*e.Config().MiniMap.Scale, r.Left, 1e-9)
}

func TestEngine_DisposeLeavesNothingPending(t *testing.T) {
	loader := &fakeLoader{img: image.NewRGBA(image.Rect(0, 0, 2000, 1000))}
	e, sched := newEngine(t, loader, nil)
	e.SetGrades([]scene.Grade{vipGrade()}, 0)
	e.SetupCanvas(800, 600)
	e.LoadBackgroundImage(context.Background(), nil, nil)
	drain(t, sched, e.Ready)

	e.FocusAfterLoad(nil)
	e.HandleEvent(interact.Event{Kind: interact.EventMouseDown, Point: geom.Pt(5, 5)})
	e.HandleEvent(interact.Event{Kind: interact.EventMouseUp, Point: geom.Pt(5, 5)})
	e.HandleZoomButton(anim.ZoomIn)
	sched.Step(50 * time.Millisecond)
	require.NotZero(t, sched.Len())

	e.Dispose()
	assert.Zero(t, sched.Len())
	assert.False(t, e.Loop().Running())

	zoom, off := e.Zoom(), e.Camera().Offset()
	sched.Step(10 * time.Second)
	assert.Equal(t, zoom, e.Zoom())
	assert.Equal(t, off, e.Camera().Offset())
	assert.Zero(t, sched.Len())

	// Operations after dispose are no-ops.
	e.HandleEvent(interact.Event{Kind: interact.EventMouseDown, Point: geom.Pt(5, 5)})
	assert.False(t, e.HandleZoomButton(anim.ZoomIn))
	e.Dispose()
	assert.Zero(t, sched.Len())
}
