// Package venuemap is the per-map interaction engine: it owns the camera,
// the gesture machine, the zoom animator, the minimap, the render loop and
// the scene, and exposes the operations a host view needs.
package venuemap

import (
	"context"
	"image"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/elektrokombinacija/venuemap/internal/clock"
	"github.com/elektrokombinacija/venuemap/internal/config"
	"github.com/elektrokombinacija/venuemap/internal/geom"
	"github.com/elektrokombinacija/venuemap/internal/scene"
	"github.com/elektrokombinacija/venuemap/internal/vis/anim"
	"github.com/elektrokombinacija/venuemap/internal/vis/interact"
	"github.com/elektrokombinacija/venuemap/internal/vis/minimap"
	"github.com/elektrokombinacija/venuemap/internal/vis/render"
)

// FocusDelay is the pause between the background becoming ready and the
// first centring animation.
const FocusDelay = 1500 * time.Millisecond

// BackgroundLoader produces the background image for a set of paths.
// Several paths are tiles composed into a width x height image.
type BackgroundLoader interface {
	Load(ctx context.Context, paths []string, width, height int) (image.Image, error)
}

// Click is a recognised click, in screen and world coordinates, with the
// topmost grade region under it (nil when none).
type Click struct {
	Screen geom.Point
	World  geom.Point
	Object *scene.Object
}

// Options configures an Engine.
type Options struct {
	Loader  BackgroundLoader
	Builder scene.Builder
	// Frames drives the render loop; nil uses the scheduler at ~60 Hz.
	Frames  render.FrameScheduler
	Logger  zerolog.Logger
}

// Engine is one interactive map view. Every method must be called from the
// goroutine that advances the scheduler.
type Engine struct {
	log   zerolog.Logger
	sched *clock.Scheduler

	loader  BackgroundLoader
	builder scene.Builder

	cfg     config.MapConfiguration
	view    config.ViewDimensions
	palette config.Palette

	camera   *interact.Camera
	gestures *interact.Machine
	animator *anim.Animator
	mini     *minimap.Synchronizer
	loop     *render.Loop
	store    *scene.Store

	grades        []scene.Grade
	gradeMapWidth float64

	background image.Image
	mapWidth   float64
	ready      bool
	disposed   bool

	loadGen    uint64
	loadCancel context.CancelFunc
	focus      *clock.Timer

	selected   *scene.Object
	onClick    func(Click)
	renderHook func()
}

// New creates an engine running on sched. Call Initialize and SetupCanvas
// before use.
func New(sched *clock.Scheduler, opts Options) *Engine {
	log := opts.Logger.With().Str("component", "engine").Logger()
	cfg := config.Default()

	e := &Engine{
		log:     log,
		sched:   sched,
		loader:  opts.Loader,
		builder: opts.Builder,
		cfg:     cfg,
		camera:  interact.NewCamera(cfg.Zoom),
		mini:    minimap.New(opts.Logger),
		store:   scene.NewStore(),
	}
	if e.builder == nil {
		e.builder = scene.PolygonBuilder{}
	}
	e.palette, _ = cfg.Theme.Palette()

	e.gestures = interact.NewMachine(e.camera, sched, opts.Logger)
	e.gestures.OnResult(e.onGesture)
	e.animator = anim.New(e.camera, sched, opts.Logger)
	// Input always wins over a programmatic transition.
	e.gestures.OnInterrupt(func() { e.animator.Cancel() })
	e.animator.OnStep(e.syncMiniMap)

	frames := opts.Frames
	if frames == nil {
		frames = render.ClockFrames{Sched: sched}
	}
	e.loop = render.NewLoop(frames, e.frame, opts.Logger)
	return e
}

// Initialize applies the view size and map configuration. It may be called
// again to reconfigure; the scene is rebuilt.
func (e *Engine) Initialize(view config.ViewDimensions, cfg *config.MapConfiguration) {
	e.cfg = *cfg
	e.view = view
	if e.view.Scale == 0 {
		e.view = config.NewViewDimensions(view.Width, view.Height, cfg.Height)
	}
	e.camera.SetPolicy(cfg.Zoom)

	palette, err := cfg.Theme.Palette()
	if err != nil {
		e.log.Warn().Err(err).Msg("theme invalid, using defaults")
		palette, _ = config.DefaultTheme().Palette()
	}
	e.palette = palette
	e.mapWidth = math.Max(geom.ScaleValue(cfg.Width, e.view.Scale), e.view.Width)
	e.rebuildScene()
}

// SetupCanvas attaches a canvas of the given size and starts the render loop.
func (e *Engine) SetupCanvas(width, height float64) {
	if e.disposed {
		return
	}
	e.camera.SetupCanvas(width, height)
	e.loop.Start()
	e.log.Debug().Float64("width", width).Float64("height", height).Msg("canvas ready")
}

// Resize updates the canvas and view size, keeping the camera transform.
func (e *Engine) Resize(width, height float64) {
	if !e.camera.Live() {
		return
	}
	e.camera.Resize(width, height)
	e.view = config.NewViewDimensions(width, height, e.cfg.Height)
	e.mapWidth = math.Max(geom.ScaleValue(e.cfg.Width, e.view.Scale), width)
	e.rebuildScene()
	if e.mini.Ready() {
		e.InitializeMiniMap()
	}
}

// LoadBackgroundImage loads the background asynchronously. No paths means
// the configured path. When the image arrives, on the loop goroutine, the
// logical map size becomes the image size, the scale is rederived and
// onReady runs. A newer call supersedes an older one still loading.
func (e *Engine) LoadBackgroundImage(ctx context.Context, paths []string, onReady func()) {
	if !e.camera.Live() || e.loader == nil {
		return
	}
	if len(paths) == 0 {
		paths = e.cfg.Path
	}
	if e.loadCancel != nil {
		e.loadCancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	e.loadCancel = cancel
	e.loadGen++
	gen := e.loadGen
	width, height := int(e.cfg.Width), int(e.cfg.Height)

	e.log.Info().Strs("paths", paths).Msg("loading background")
	go func() {
		img, err := e.loader.Load(ctx, paths, width, height)
		e.sched.Post(func() {
			if e.disposed || gen != e.loadGen {
				return
			}
			e.loadCancel = nil
			cancel()
			if err != nil {
				e.log.Error().Err(err).Strs("paths", paths).Msg("background load failed")
				return
			}
			e.applyBackground(img)
			if onReady != nil {
				onReady()
			}
		})
	}()
}

func (e *Engine) applyBackground(img image.Image) {
	b := img.Bounds()
	e.background = img
	e.cfg.Width = float64(b.Dx())
	e.cfg.Height = float64(b.Dy())
	e.view = config.NewViewDimensions(e.view.Width, e.view.Height, e.cfg.Height)
	e.mapWidth = math.Max(geom.ScaleValue(e.cfg.Width, e.view.Scale), e.view.Width)
	e.ready = true
	e.rebuildScene()
	e.loop.Start()

	e.log.Info().
		Int("width", b.Dx()).
		Int("height", b.Dy()).
		Float64("scale", e.view.Scale).
		Float64("map_width", e.mapWidth).
		Msg("background ready")
}

// FocusAfterLoad waits FocusDelay, then sets up the minimap and centres the
// map. done runs once the centring finishes or is interrupted by input.
// A second call supersedes a wait still pending.
func (e *Engine) FocusAfterLoad(done func()) {
	if !e.camera.Live() {
		return
	}
	e.focus.Stop()
	e.focus = e.sched.AfterFunc(FocusDelay, func() {
		e.focus = nil
		e.InitializeMiniMap()
		e.AdjustViewToCenter(done)
	})
}

// InitializeMiniMap sizes the minimap for the current map and snapshots the
// background.
func (e *Engine) InitializeMiniMap() {
	if !e.camera.Live() {
		return
	}
	e.mini.Initialize(e.mapWidth, e.view, &e.cfg, e.background)
	e.syncMiniMap()
}

// SetGrades replaces the grade list and rebuilds the scene. gradeMapWidth is
// the logical width the grade points were authored against (0: current).
func (e *Engine) SetGrades(grades []scene.Grade, gradeMapWidth float64) {
	e.grades = grades
	e.gradeMapWidth = gradeMapWidth
	e.rebuildScene()
}

func (e *Engine) rebuildScene() {
	e.store.RemoveAll()
	e.selected = nil
	if e.view.Scale == 0 {
		return
	}
	for _, g := range e.grades {
		e.store.Add(e.builder.Build(g, &e.cfg, e.view, e.gradeMapWidth)...)
	}
}

// ZoomAndPanToObject animates obj to the centre at zoom (ZoomThreshold when
// zoom is not positive). It reports whether the animation started.
func (e *Engine) ZoomAndPanToObject(obj anim.Target, zoom float64, done func()) bool {
	if obj == nil {
		return false
	}
	if zoom <= 0 {
		zoom = anim.ZoomThreshold
	}
	e.gestures.CancelClick()
	return e.animator.ZoomAndPanToObject(obj, zoom, done)
}

// ZoomToObjectBufferHeight is ZoomAndPanToObject with room kept below the
// object for a price panel heightPrice pixels tall.
func (e *Engine) ZoomToObjectBufferHeight(obj anim.Target, zoom, heightPrice float64, done func()) bool {
	if obj == nil {
		return false
	}
	if zoom <= 0 {
		zoom = anim.ZoomThreshold
	}
	e.gestures.CancelClick()
	return e.animator.ZoomToObjectBufferHeight(obj, zoom, e.view.Height, heightPrice, done)
}

// AdjustViewToCenter animates to the whole map centred in the view. done
// runs exactly once, even when input cuts the animation short.
func (e *Engine) AdjustViewToCenter(done func()) {
	e.gestures.CancelClick()
	e.animator.AdjustViewToCenter(e.view, e.mapWidth, e.cfg.Width, e.cfg.Height, anim.CenterFill, done)
}

// ResetZoom returns the camera to the identity transform at once.
func (e *Engine) ResetZoom() {
	e.gestures.CancelClick()
	e.animator.Cancel()
	e.camera.Reset()
	e.syncMiniMap()
}

// HandleZoomButton zooms one step in or out about the view centre.
func (e *Engine) HandleZoomButton(d anim.Direction) bool {
	e.gestures.CancelClick()
	return e.animator.HandleZoomButton(d)
}

// VisibleBounds returns the world rectangle on screen grown by buffer.
func (e *Engine) VisibleBounds(buffer float64) geom.Bounds {
	return e.camera.VisibleBounds(buffer)
}

// IsInBounds reports whether p lies inside b.
func (e *Engine) IsInBounds(p geom.Point, b geom.Bounds) bool {
	return geom.IsInBounds(p, b)
}

// SetClickHandler registers the click callback.
func (e *Engine) SetClickHandler(fn func(Click)) {
	e.onClick = fn
}

// SetRenderHook replaces the per-frame draw step; nil restores the default.
func (e *Engine) SetRenderHook(fn func()) {
	e.renderHook = fn
}

// HandleEvent feeds one raw input event to the gesture machine.
func (e *Engine) HandleEvent(ev interact.Event) interact.Result {
	if !e.camera.Live() {
		return interact.Result{}
	}
	return e.gestures.Handle(ev)
}

// Dispose stops the render loop, drops every pending timer and load, and
// detaches the canvas. The engine is unusable afterwards.
func (e *Engine) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.loop.Stop()
	e.gestures.Cancel()
	e.animator.Abort()
	e.focus.Stop()
	e.focus = nil
	if e.loadCancel != nil {
		e.loadCancel()
		e.loadCancel = nil
	}
	e.camera.Dispose()
	e.mini.Cleanup()
	e.store.RemoveAll()
	e.selected = nil
	e.background = nil
	e.log.Info().Uint64("frames", e.loop.Frames()).Msg("engine disposed")
}

func (e *Engine) onGesture(r interact.Result) {
	if r.Kind != interact.ResultClick {
		e.syncMiniMap()
		return
	}

	world := r.World
	obj := e.store.HitTest(world)
	if obj != nil && obj != e.selected {
		e.selected = obj
		e.ZoomToObjectBufferHeight(obj, anim.ZoomThreshold, 0, nil)
	}
	e.log.Debug().Float64("x", world.X).Float64("y", world.Y).Bool("hit", obj != nil).Msg("click")
	if e.onClick != nil {
		e.onClick(Click{Screen: r.Point, World: world, Object: obj})
	}
}

func (e *Engine) frame() {
	e.syncMiniMap()
	if e.renderHook != nil {
		e.renderHook()
	}
}

func (e *Engine) syncMiniMap() {
	if e.camera.Live() {
		e.mini.Sync(e.camera)
	}
}
