// Package viewer runs one mounted protein visualization: frame loading, input,
// smoothing and drawing, all owned by a single event-loop goroutine.
package viewer

import (
	"context"
	"image"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ivlev/proteinframes/internal/animation"
	"github.com/ivlev/proteinframes/internal/canvas"
	"github.com/ivlev/proteinframes/internal/config"
	"github.com/ivlev/proteinframes/internal/input"
	"github.com/ivlev/proteinframes/internal/source"
)

// Status is the observable part of the visualization state.
type Status struct {
	Loading   bool
	Progress  float64 // 0..100
	Synthetic bool
}

// Position is the loop-owned animation state.
type Position struct {
	Current float64
	Target  float64
	Index   int // last drawn frame, -1 before the first draw
	Frames  int
}

// Presenter shows the surface after each tick. img is only valid during the call.
type Presenter interface {
	Present(img *image.RGBA, st Status)
}

type PresenterFunc func(img *image.RGBA, st Status)

func (f PresenterFunc) Present(img *image.RGBA, st Status) { f(img, st) }

type Options struct {
	Config    config.Config
	Structure config.Structure
	Source    source.Source       // nil: source.New(FrameBasePath, FrameFormat)
	Scheduler animation.Scheduler // nil: 60 Hz ticker
	Clock     input.Clock         // nil: real time
	Presenter Presenter
	OnStatus  func(Status)
}

type eventKind int

const (
	evScroll eventKind = iota
	evWheel
	evResize
	evProgress
	evFrames
	evCall
)

type event struct {
	kind     eventKind
	value    float64
	w, h     int
	dpr      float64
	frames   []source.Frame
	fn       func()
	callDone chan struct{}
}

// Visualization is one mounted instance. Hosts call Scroll, Wheel and Resize
// from any goroutine; those only post events to the owning loop.
type Visualization struct {
	cfg       config.Config
	structure config.Structure
	provider  *source.Provider
	sched     animation.Scheduler
	throttle  *input.Throttle
	presenter Presenter
	onStatus  func(Status)

	events  chan event
	scrollY atomic.Uint64 // math.Float64bits живой позиции страницы

	// принадлежат горутине цикла
	ctrl    *input.Controller
	loop    *animation.Loop
	surface *canvas.Surface
	frames  []source.Frame

	mu     sync.Mutex
	status Status

	mountOnce sync.Once
	stopOnce  sync.Once
	mounted   atomic.Bool
	stopped   chan struct{}
	done      chan struct{}
	cancel    context.CancelFunc
}

func New(opts Options) *Visualization {
	cfg := opts.Config
	src := opts.Source
	if src == nil {
		src = source.New(cfg.FrameBasePath, cfg.FrameFormat)
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = animation.NewTickerScheduler(60)
	}

	return &Visualization{
		cfg:       cfg,
		structure: opts.Structure,
		provider:  source.NewProvider(cfg, src),
		sched:     sched,
		throttle:  input.NewThrottle(opts.Clock, cfg.ThrottleInterval),
		presenter: opts.Presenter,
		onStatus:  opts.OnStatus,
		events:    make(chan event, 64),
		ctrl:      input.NewController(cfg.FrameCount, cfg.ScrollSensitivity, cfg.WheelSensitivity),
		loop:      animation.NewLoop(cfg.SmoothingFactor),
		surface:   canvas.NewSurface(),
		status:    Status{Loading: true},
		stopped:   make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (v *Visualization) Structure() config.Structure { return v.structure }

func (v *Visualization) Config() config.Config { return v.cfg }

// Mount starts frame loading and the event loop. Later calls are no-ops.
func (v *Visualization) Mount(ctx context.Context) {
	v.mountOnce.Do(func() {
		ctx, v.cancel = context.WithCancel(ctx)
		v.mounted.Store(true)
		go v.load(ctx)
		go v.run(ctx)
	})
}

// Unmount stops the loop, the scheduler and any pending throttle timer, and
// waits for the loop to exit. Frames that arrive afterwards are dropped.
func (v *Visualization) Unmount() {
	v.shutdown()
	if v.cancel != nil {
		v.cancel()
	}
	if v.mounted.Load() {
		<-v.done
	}
}

func (v *Visualization) shutdown() {
	v.stopOnce.Do(func() {
		close(v.stopped)
		v.throttle.Stop()
		v.sched.Stop()
	})
}

// Scroll reports the page scroll position. Updates are throttled; the throttled
// handler reads the latest position, not the one passed to the first call.
func (v *Visualization) Scroll(scrollY float64) {
	v.scrollY.Store(math.Float64bits(scrollY))
	v.throttle.Trigger(func() {
		v.post(event{kind: evScroll})
	})
}

// Wheel reports a pointer-wheel delta over the drawing area.
func (v *Visualization) Wheel(deltaY float64) {
	v.post(event{kind: evWheel, value: deltaY})
}

// Resize reports the container size in CSS pixels and the device pixel ratio.
func (v *Visualization) Resize(w, h int, dpr float64) {
	v.post(event{kind: evResize, w: w, h: h, dpr: dpr})
}

func (v *Visualization) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// Position asks the loop for its state. After Unmount it returns the zero value.
func (v *Visualization) Position() Position {
	var p Position
	v.call(func() { p = v.position() })
	return p
}

func (v *Visualization) position() Position {
	return Position{
		Current: v.loop.Current(),
		Target:  v.ctrl.Target(),
		Index:   v.loop.Shown(),
		Frames:  len(v.frames),
	}
}

func (v *Visualization) liveScroll() float64 {
	return math.Float64frombits(v.scrollY.Load())
}

// post hands an event to the loop; it gives up once the visualization stops.
func (v *Visualization) post(e event) bool {
	select {
	case <-v.stopped:
		return false
	default:
	}
	select {
	case v.events <- e:
		return true
	case <-v.stopped:
		return false
	}
}

// call runs fn on the loop goroutine and waits for it.
func (v *Visualization) call(fn func()) bool {
	if !v.mounted.Load() {
		return false
	}
	done := make(chan struct{})
	if !v.post(event{kind: evCall, fn: fn, callDone: done}) {
		return false
	}
	select {
	case <-done:
		return true
	case <-v.done:
		return false
	}
}

func (v *Visualization) load(ctx context.Context) {
	frames := v.provider.Load(ctx, v.cfg.FrameCount, func(p float64) {
		v.post(event{kind: evProgress, value: p})
	})
	if frames == nil {
		return
	}
	v.post(event{kind: evFrames, frames: frames})
}

func (v *Visualization) run(ctx context.Context) {
	defer close(v.done)
	defer v.surface.Release()
	defer v.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case <-v.stopped:
			return
		case e := <-v.events:
			v.handle(e)
		case <-v.sched.Frames():
			v.tick()
		}
	}
}

func (v *Visualization) handle(e event) {
	switch e.kind {
	case evScroll:
		v.ctrl.Scroll(v.liveScroll())
	case evWheel:
		v.ctrl.Wheel(e.value)
	case evResize:
		v.surface.Resize(e.w, e.h, e.dpr)
	case evProgress:
		st := v.Status()
		if !st.Loading {
			return
		}
		st.Progress = math.Max(st.Progress, e.value)
		v.setStatus(st)
	case evFrames:
		v.frames = e.frames
		st := Status{Loading: false, Progress: 100}
		if len(e.frames) > 0 {
			st.Synthetic = e.frames[0].Synthetic
		}
		v.setStatus(st)
	case evCall:
		e.fn()
		close(e.callDone)
	}
}

func (v *Visualization) tick() {
	v.loop.Tick(v.ctrl.Target(), v.frames, v.surface.Draw)
	if v.presenter != nil {
		v.presenter.Present(v.surface.Image(), v.Status())
	}
}

func (v *Visualization) setStatus(st Status) {
	v.mu.Lock()
	v.status = st
	v.mu.Unlock()
	if v.onStatus != nil {
		v.onStatus(st)
	}
}
