package source

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// memSource serves solid images and fails on the indices listed in fail.
type memSource struct {
	calls atomic.Int32
	fail  map[int]bool
	block bool
	delay time.Duration
}

func (s *memSource) LoadFrame(ctx context.Context, index int) (image.Image, error) {
	s.calls.Add(1)
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.fail[index] {
		return nil, errors.New("404")
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{R: uint8(index), A: 255})
	return img, nil
}

type progressLog struct {
	mu     sync.Mutex
	values []float64
}

func (l *progressLog) record(p float64) {
	l.mu.Lock()
	l.values = append(l.values, p)
	l.mu.Unlock()
}

func (l *progressLog) check(t *testing.T) {
	t.Helper()
	for i := 1; i < len(l.values); i++ {
		if l.values[i] < l.values[i-1] {
			t.Errorf("Progress decreased: %v", l.values)
			return
		}
	}
	if n := len(l.values); n == 0 || l.values[n-1] != 100 {
		t.Errorf("Progress must end at 100, got %v", l.values)
	}
}

func TestFrameName(t *testing.T) {
	tests := []struct {
		index  int
		format string
		want   string
	}{
		{0, ".webp", "frame_0000.webp"},
		{42, ".png", "frame_0042.png"},
		{179, ".jpg", "frame_0179.jpg"},
		{12345, ".jpeg", "frame_12345.jpeg"},
	}
	for _, tt := range tests {
		if got := FrameName(tt.index, tt.format); got != tt.want {
			t.Errorf("FrameName(%d, %q) = %q, want %q", tt.index, tt.format, got, tt.want)
		}
	}

	if got := FrameURL("/assets/protein-frames/", 42, ".webp"); got != "/assets/protein-frames/frame_0042.webp" {
		t.Errorf("Unexpected URL %s", got)
	}
}

func TestNewSelectsSource(t *testing.T) {
	if _, ok := New("https://example.org/frames/", ".webp").(*HTTPSource); !ok {
		t.Error("Expected HTTPSource for https base")
	}
	if _, ok := New("http://localhost/frames/", ".webp").(*HTTPSource); !ok {
		t.Error("Expected HTTPSource for http base")
	}
	if _, ok := New("./public/assets/protein-frames/", ".png").(*DirSource); !ok {
		t.Error("Expected DirSource for local path")
	}
}

func TestProviderLoadsAllFrames(t *testing.T) {
	src := &memSource{}
	p := &Provider{Source: src, Workers: 4}

	var progress progressLog
	frames := p.Load(context.Background(), 30, progress.record)

	if len(frames) != 30 {
		t.Fatalf("Expected 30 frames, got %d", len(frames))
	}
	for i, f := range frames {
		if f.Index != i || !f.Loaded || f.Synthetic || f.Image == nil {
			t.Fatalf("Frame %d malformed: %+v", i, f)
		}
		// Порядок по индексу, а не по времени прихода
		if r, _, _, _ := f.Image.At(0, 0).RGBA(); uint8(r>>8) != uint8(i) {
			t.Errorf("Frame %d holds image of another index", i)
		}
	}
	if len(progress.values) != 30 {
		t.Errorf("Expected one progress report per frame, got %d", len(progress.values))
	}
	progress.check(t)
}

func TestProviderFallbackCompleteness(t *testing.T) {
	src := &memSource{fail: map[int]bool{7: true}, delay: time.Millisecond}
	p := &Provider{Source: src, Workers: 3, Fallback: NewSyntheticSource(64, 48, 0)}

	var progress progressLog
	frames := p.Load(context.Background(), 12, progress.record)

	if len(frames) != 12 {
		t.Fatalf("Expected 12 frames, got %d", len(frames))
	}
	for i, f := range frames {
		if f.Index != i || !f.Loaded || !f.Synthetic || f.Image == nil {
			t.Fatalf("Frame %d not a complete synthetic frame: %+v", i, f)
		}
		if b := f.Image.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
			t.Errorf("Frame %d has size %v", i, b)
		}
	}
	progress.check(t)
}

func TestProviderZeroFrames(t *testing.T) {
	src := &memSource{}
	p := &Provider{Source: src}

	called := false
	frames := p.Load(context.Background(), 0, func(float64) { called = true })

	if frames == nil || len(frames) != 0 {
		t.Errorf("Expected empty non-nil list, got %v", frames)
	}
	if src.calls.Load() != 0 {
		t.Errorf("Expected no requests, got %d", src.calls.Load())
	}
	if called {
		t.Error("Progress must not be reported for zero frames")
	}
}

func TestProviderTimeoutFallsBack(t *testing.T) {
	src := &memSource{block: true}
	p := &Provider{Source: src, Timeout: 20 * time.Millisecond, Fallback: NewSyntheticSource(32, 32, 0)}

	start := time.Now()
	frames := p.Load(context.Background(), 5, nil)

	if len(frames) != 5 || !frames[0].Synthetic {
		t.Fatalf("Expected 5 synthetic frames after timeout, got %+v", frames)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Timeout not honoured: %v", elapsed)
	}
}

func TestProviderCancelledReturnsNil(t *testing.T) {
	src := &memSource{block: true}
	p := &Provider{Source: src}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if frames := p.Load(ctx, 8, nil); frames != nil {
		t.Errorf("Expected nil frames after cancellation, got %d", len(frames))
	}
}

func encodePNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestHTTPSource(t *testing.T) {
	data := encodePNG(t, color.White)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/frames/frame_0000.png":
			w.Write(data)
		case "/frames/frame_0001.png":
			w.Write([]byte("not an image"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/frames/", ".png")
	img, err := src.LoadFrame(context.Background(), 0)
	if err != nil {
		t.Fatalf("LoadFrame failed: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Errorf("Unexpected size %v", img.Bounds())
	}

	if _, err := src.LoadFrame(context.Background(), 1); err == nil {
		t.Error("Expected decode error")
	}
	_, err = src.LoadFrame(context.Background(), 2)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected HTTP 404 error, got %v", err)
	}
}

func TestHTTPProviderFallsBackOnMissingFrame(t *testing.T) {
	data := encodePNG(t, color.White)
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path == "/frame_0003.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	p := &Provider{Source: NewHTTPSource(srv.URL+"/", ".png"), Workers: 2}
	frames := p.Load(context.Background(), 6, nil)

	if len(frames) != 6 {
		t.Fatalf("Expected 6 frames, got %d", len(frames))
	}
	for _, f := range frames {
		if !f.Synthetic {
			t.Fatal("Real and synthetic frames must not be mixed")
		}
	}
	t.Logf("Requests issued before fallback: %d", requests.Load())
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		path := filepath.Join(dir, FrameName(i, ".png"))
		if err := os.WriteFile(path, encodePNG(t, color.Black), 0644); err != nil {
			t.Fatal(err)
		}
	}
	os.WriteFile(filepath.Join(dir, "poster.png"), encodePNG(t, color.Black), 0644)

	src := &DirSource{Dir: dir, Format: ".png"}
	n, err := src.Count()
	if err != nil || n != 3 {
		t.Fatalf("Count() = %d, %v; want 3", n, err)
	}
	w, h, err := src.Dimensions(2)
	if err != nil || w != 8 || h != 6 {
		t.Errorf("Dimensions() = %dx%d, %v", w, h, err)
	}

	frames := (&Provider{Source: src}).Load(context.Background(), 3, nil)
	for _, f := range frames {
		if f.Synthetic {
			t.Fatal("Expected real frames from directory")
		}
	}

	if _, err := src.LoadFrame(context.Background(), 3); err == nil {
		t.Error("Expected error for missing frame file")
	}
}

func TestSyntheticSourceDeterministic(t *testing.T) {
	s := NewSyntheticSource(120, 90, 36)
	a := s.Frame(5)
	b := s.Frame(5)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("Synthetic frames must be pixel-identical for the same index")
	}
	if bytes.Equal(a.Pix, s.Frame(6).Pix) {
		t.Error("Neighbouring frames should differ")
	}
}
