package viewer

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"testing"
	"time"

	"github.com/ivlev/proteinframes/internal/animation"
	"github.com/ivlev/proteinframes/internal/config"
	"github.com/ivlev/proteinframes/internal/input"
)

// colorSource returns a solid 8x6 frame whose red channel encodes the index.
type colorSource struct {
	fail    bool
	release chan struct{}
}

func (s *colorSource) LoadFrame(ctx context.Context, index int) (image.Image, error) {
	if s.release != nil {
		<-s.release
	}
	if s.fail {
		return nil, errors.New("offline")
	}
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	draw.Draw(img, img.Bounds(), image.NewUniform(frameColor(index)), image.Point{}, draw.Src)
	return img, nil
}

func frameColor(i int) color.RGBA {
	return color.RGBA{R: uint8(40 * (i + 1)), G: 10, B: 10, A: 255}
}

type fakeTimer struct {
	fn      func()
	at      time.Duration
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) input.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{fn: f, at: c.now + d}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	rest := c.timers[:0]
	for _, t := range c.timers {
		if t.stopped {
			continue
		}
		if t.at <= c.now {
			due = append(due, t)
			continue
		}
		rest = append(rest, t)
	}
	c.timers = rest
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

func scenarioConfig() config.Config {
	cfg := config.Default()
	cfg.FrameCount = 4
	cfg.ScrollSensitivity = 1
	cfg.SmoothingFactor = 0.5
	cfg.Width, cfg.Height = 64, 48
	return cfg
}

func waitStatus(t *testing.T, ch <-chan Status, pred func(Status) bool) []Status {
	t.Helper()
	var seen []Status
	timeout := time.After(2 * time.Second)
	for {
		select {
		case st := <-ch:
			seen = append(seen, st)
			if pred(st) {
				return seen
			}
		case <-timeout:
			t.Fatalf("Status not reached, seen %v", seen)
		}
	}
}

func TestRenderHeadlessScenario(t *testing.T) {
	opts := Options{
		Config:    scenarioConfig(),
		Source:    &colorSource{},
		Scheduler: animation.NewManualScheduler(),
	}
	snap := RenderHeadless(context.Background(), opts, 40, 30, 1, 3, 2)

	if snap.Position.Target != 3 || snap.Position.Current != 2.25 || snap.Position.Index != 2 {
		t.Errorf("Unexpected position %+v", snap.Position)
	}
	if snap.Status.Loading || snap.Status.Progress != 100 || snap.Status.Synthetic {
		t.Errorf("Unexpected status %+v", snap.Status)
	}
	if snap.Image == nil {
		t.Fatal("Expected snapshot image")
	}
	if got := snap.Image.RGBAAt(20, 15); got != frameColor(2) {
		t.Errorf("Expected frame 2 colour %v, got %v", frameColor(2), got)
	}
}

func TestRenderHeadlessFallback(t *testing.T) {
	opts := Options{
		Config:    scenarioConfig(),
		Source:    &colorSource{fail: true},
		Scheduler: animation.NewManualScheduler(),
	}
	snap := RenderHeadless(context.Background(), opts, 64, 48, 2, 0, 1)

	if !snap.Status.Synthetic || snap.Status.Loading {
		t.Errorf("Expected finished synthetic status, got %+v", snap.Status)
	}
	if snap.Position.Frames != 4 || snap.Position.Index != 0 {
		t.Errorf("Unexpected position %+v", snap.Position)
	}
	if b := snap.Image.Bounds(); b.Dx() != 128 || b.Dy() != 96 {
		t.Errorf("Expected 128x96 device pixels, got %v", b)
	}
}

func TestMountLifecycle(t *testing.T) {
	sched := animation.NewManualScheduler()
	statuses := make(chan Status, 64)
	presented := make(chan Status, 64)

	cfg := scenarioConfig()
	v := New(Options{
		Config:    cfg,
		Source:    &colorSource{},
		Scheduler: sched,
		Clock:     &fakeClock{},
		OnStatus:  func(st Status) { statuses <- st },
		Presenter: PresenterFunc(func(img *image.RGBA, st Status) { presented <- st }),
	})

	if st := v.Status(); !st.Loading || st.Progress != 0 {
		t.Errorf("Expected initial loading status, got %+v", st)
	}

	v.Mount(context.Background())
	seen := waitStatus(t, statuses, func(st Status) bool { return !st.Loading })
	for i := 1; i < len(seen); i++ {
		if seen[i].Progress < seen[i-1].Progress {
			t.Errorf("Progress decreased: %v", seen)
		}
	}
	if last := seen[len(seen)-1]; last.Progress != 100 {
		t.Errorf("Expected 100%% on completion, got %+v", last)
	}

	v.Resize(40, 30, 1)
	v.Wheel(25) // 25 * 0.1
	if p := v.Position(); p.Target != 2.5 || p.Frames != 4 {
		t.Errorf("Unexpected position after wheel: %+v", p)
	}

	sched.Fire()
	select {
	case st := <-presented:
		if st.Loading {
			t.Error("Presented status must be loaded")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Tick not presented")
	}
	if p := v.Position(); p.Current != 1.25 || p.Index != 1 {
		t.Errorf("Unexpected position after tick: %+v", p)
	}

	v.Unmount()
	if sched.Fire() {
		t.Error("Scheduler must be stopped after unmount")
	}
	if p := v.Position(); p != (Position{}) {
		t.Errorf("Expected zero position after unmount, got %+v", p)
	}
	v.Wheel(10)
	v.Scroll(10)
	v.Unmount()
}

func TestScrollIsThrottled(t *testing.T) {
	clock := &fakeClock{}
	cfg := config.Default()
	cfg.FrameCount = 180
	cfg.Width, cfg.Height = 16, 16

	v := New(Options{
		Config:    cfg,
		Source:    &colorSource{},
		Scheduler: animation.NewManualScheduler(),
		Clock:     clock,
	})
	v.Mount(context.Background())
	defer v.Unmount()

	v.Scroll(10)
	v.Scroll(30)
	if p := v.Position(); p.Target != 0 {
		t.Errorf("Scroll must wait for the cooldown, target %f", p.Target)
	}

	clock.Advance(cfg.ThrottleInterval)
	// Срабатывание читает последнюю позицию: 30 * 0.5
	if p := v.Position(); p.Target != 15 {
		t.Errorf("Expected target 15, got %f", p.Target)
	}

	v.Scroll(10)
	clock.Advance(cfg.ThrottleInterval)
	if p := v.Position(); p.Target != 5 {
		t.Errorf("Expected target 5 after scrolling back, got %f", p.Target)
	}
}

func TestUnmountDiscardsLateFrames(t *testing.T) {
	release := make(chan struct{})
	statuses := make(chan Status, 64)

	v := New(Options{
		Config:    scenarioConfig(),
		Source:    &colorSource{release: release},
		Scheduler: animation.NewManualScheduler(),
		OnStatus:  func(st Status) { statuses <- st },
	})
	v.Mount(context.Background())
	v.Unmount()
	close(release)

	select {
	case st := <-statuses:
		t.Errorf("Status changed after unmount: %+v", st)
	case <-time.After(50 * time.Millisecond):
	}
	if st := v.Status(); !st.Loading {
		t.Errorf("Late frames must be discarded, got %+v", st)
	}
}

func TestZeroFrames(t *testing.T) {
	cfg := scenarioConfig()
	cfg.FrameCount = 0

	snap := RenderHeadless(context.Background(), Options{
		Config:    cfg,
		Source:    &colorSource{fail: true},
		Scheduler: animation.NewManualScheduler(),
	}, 20, 20, 1, 100, 3)

	if snap.Status.Loading || snap.Status.Synthetic {
		t.Errorf("Expected finished empty load, got %+v", snap.Status)
	}
	if snap.Position.Index != -1 || snap.Position.Target != 0 {
		t.Errorf("Unexpected position %+v", snap.Position)
	}
	if got := snap.Image.RGBAAt(10, 10); got.A != 0 {
		t.Errorf("Nothing must be drawn without frames, got %v", got)
	}
}
