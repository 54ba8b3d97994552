package display

import (
	"context"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ivlev/proteinframes/internal/config"
	"github.com/ivlev/proteinframes/internal/viewer"
)

type recorder struct {
	scrolls []float64
	wheels  []float64
	sizes   [][3]float64
}

func (r *recorder) Scroll(y float64) { r.scrolls = append(r.scrolls, y) }
func (r *recorder) Wheel(d float64)  { r.wheels = append(r.wheels, d) }
func (r *recorder) Resize(w, h int, dpr float64) {
	r.sizes = append(r.sizes, [3]float64{float64(w), float64(h), dpr})
}

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

func cellAt(s tcell.SimulationScreen, x, y int) tcell.SimCell {
	cells, w, _ := s.GetContents()
	return cells[y*w+x]
}

func rowText(s tcell.SimulationScreen, y int) string {
	cells, w, _ := s.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		c := cells[y*w+x]
		if len(c.Runes) == 0 {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(c.Runes[0])
	}
	return b.String()
}

func TestPresentHalfBlocks(t *testing.T) {
	s := newScreen(t, 4, 3)
	term := NewTerminal(s, config.Structure{})

	img := image.NewRGBA(image.Rect(0, 0, 4, 6))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	img.SetRGBA(0, 1, color.RGBA{B: 255, A: 255})
	img.SetRGBA(1, 0, color.RGBA{G: 200, A: 255})
	// Полупрозрачный пиксель хранится премультиплицированным
	img.SetRGBA(2, 2, color.RGBA{R: 100, A: 128})

	term.Present(img, viewer.Status{Progress: 100})

	tests := []struct {
		x, y   int
		fg, bg tcell.Color
	}{
		{0, 0, tcell.NewRGBColor(255, 0, 0), tcell.NewRGBColor(0, 0, 255)},
		{1, 0, tcell.NewRGBColor(0, 200, 0), tcell.ColorDefault},
		{2, 1, tcell.NewRGBColor(199, 0, 0), tcell.ColorDefault},
	}
	for _, tt := range tests {
		c := cellAt(s, tt.x, tt.y)
		if len(c.Runes) == 0 || c.Runes[0] != halfBlock {
			t.Errorf("Cell (%d,%d): expected half block, got %q", tt.x, tt.y, c.Runes)
			continue
		}
		fg, bg, _ := c.Style.Decompose()
		if fg != tt.fg || bg != tt.bg {
			t.Errorf("Cell (%d,%d): fg %v bg %v, want %v %v", tt.x, tt.y, fg, bg, tt.fg, tt.bg)
		}
	}

	if c := cellAt(s, 3, 0); len(c.Runes) > 0 && c.Runes[0] == halfBlock {
		t.Error("Transparent cell must stay empty")
	}
}

func TestPresentOverlay(t *testing.T) {
	s := newScreen(t, 60, 5)
	term := NewTerminal(s, config.Structure{Name: "LL-37", Description: "Peptide"})

	term.Present(nil, viewer.Status{Loading: true, Progress: 42.6})
	if row := rowText(s, 2); !strings.Contains(row, "Loading protein structure... 43%") {
		t.Errorf("Expected loading overlay, got %q", row)
	}

	term.Present(nil, viewer.Status{Progress: 100})
	row := rowText(s, 4)
	if !strings.HasPrefix(row, "LL-37 - Peptide") || !strings.HasSuffix(row, scrollHint) {
		t.Errorf("Unexpected caption row %q", row)
	}
	if strings.Contains(rowText(s, 2), "Loading") {
		t.Error("Loading overlay must disappear once loaded")
	}
}

func TestLoadingMessage(t *testing.T) {
	tests := []struct {
		progress float64
		want     string
	}{
		{0, "Loading protein structure... 0%"},
		{49.5, "Loading protein structure... 50%"},
		{99.4, "Loading protein structure... 99%"},
		{100, "Loading protein structure... 100%"},
	}
	for _, tt := range tests {
		if got := LoadingMessage(tt.progress); got != tt.want {
			t.Errorf("LoadingMessage(%v) = %q, want %q", tt.progress, got, tt.want)
		}
	}
}

func TestHandleEvent(t *testing.T) {
	s := newScreen(t, 10, 5)
	term := NewTerminal(s, config.Structure{})
	rec := &recorder{}
	term.Attach(rec)

	steps := []struct {
		ev   tcell.Event
		want float64 // ожидаемая позиция страницы
	}{
		{tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), LineStep},
		{tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModNone), 2 * LineStep},
		{tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone), 2*LineStep + PageStep},
		{tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModNone), LineStep + PageStep},
		{tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone), 0},
		{tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), 0},
		{tcell.NewEventKey(tcell.KeyPgUp, 0, tcell.ModNone), 0},
	}
	for i, st := range steps {
		if !term.HandleEvent(st.ev) {
			t.Fatalf("Step %d: unexpected quit", i)
		}
		if term.ScrollY() != st.want {
			t.Errorf("Step %d: scroll %f, want %f", i, term.ScrollY(), st.want)
		}
	}
	if len(rec.scrolls) != len(steps) {
		t.Errorf("Expected %d scroll signals, got %v", len(steps), rec.scrolls)
	}

	term.HandleEvent(tcell.NewEventMouse(1, 1, tcell.WheelDown, tcell.ModNone))
	term.HandleEvent(tcell.NewEventMouse(1, 1, tcell.WheelUp, tcell.ModNone))
	if len(rec.wheels) != 2 || rec.wheels[0] != WheelNotch || rec.wheels[1] != -WheelNotch {
		t.Errorf("Unexpected wheel signals %v", rec.wheels)
	}
	if term.ScrollY() != 0 {
		t.Error("Wheel must not move the page")
	}

	term.HandleEvent(tcell.NewEventResize(80, 24))
	if len(rec.sizes) != 1 || rec.sizes[0] != [3]float64{80, 48, 1} {
		t.Errorf("Unexpected resize %v", rec.sizes)
	}

	quits := []tcell.Event{
		tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone),
		tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl),
	}
	for _, ev := range quits {
		if term.HandleEvent(ev) {
			t.Errorf("Expected quit on %v", ev.(*tcell.EventKey).Name())
		}
	}
}

func TestRunReportsSizeAndQuits(t *testing.T) {
	s := newScreen(t, 30, 10)
	term := NewTerminal(s, config.Structure{})
	rec := &recorder{}
	term.Attach(rec)

	done := make(chan struct{})
	go func() {
		term.Run(context.Background())
		close(done)
	}()

	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return on q")
	}
	if len(rec.sizes) == 0 || rec.sizes[0] != [3]float64{30, 20, 1} {
		t.Errorf("Expected initial resize 30x20, got %v", rec.sizes)
	}
}
