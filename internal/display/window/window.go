// Package window hosts a visualization in a desktop window.
package window

import (
	"image"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ivlev/proteinframes/internal/animation"
	"github.com/ivlev/proteinframes/internal/config"
	"github.com/ivlev/proteinframes/internal/display"
	"github.com/ivlev/proteinframes/internal/renderer"
	"github.com/ivlev/proteinframes/internal/viewer"
)

// Game drives the visualization from the ebiten loop: Update fires one
// animation frame and forwards input, Draw uploads the last presented frame.
type Game struct {
	sched  *animation.ManualScheduler
	info   config.Structure
	target display.Target
	scale  func() float64

	// кадр от Present, пишется горутиной визуализации
	mu     sync.Mutex
	pix    []byte
	pw, ph int
	status viewer.Status

	// только горутина ebiten
	img     *ebiten.Image
	scrollY float64
	w, h    int
	dpr     float64
}

func NewGame(sched *animation.ManualScheduler, info config.Structure) *Game {
	return &Game{
		sched:  sched,
		info:   info,
		scale:  func() float64 { return ebiten.Monitor().DeviceScaleFactor() },
		status: viewer.Status{Loading: true},
	}
}

func (g *Game) Attach(target display.Target) {
	g.target = target
}

// Present copies the surface; it runs on the visualization goroutine.
func (g *Game) Present(img *image.RGBA, st viewer.Status) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status = st
	if img == nil {
		g.pix, g.pw, g.ph = nil, 0, 0
		return
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if cap(g.pix) < 4*w*h {
		g.pix = make([]byte, 4*w*h)
	}
	g.pix = g.pix[:4*w*h]
	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(g.pix[y*4*w:(y+1)*4*w], img.Pix[off:off+4*w])
	}
	g.pw, g.ph = w, h
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	// Колесо вверх даёт положительный yoff, в браузере это отрицательный deltaY
	if _, yoff := ebiten.Wheel(); yoff != 0 && g.target != nil {
		g.target.Wheel(-yoff * display.WheelNotch)
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp), inpututil.IsKeyJustPressed(ebiten.KeyK):
		g.scrollBy(-display.LineStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown), inpututil.IsKeyJustPressed(ebiten.KeyJ):
		g.scrollBy(display.LineStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		g.scrollBy(-display.PageStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
		g.scrollBy(display.PageStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		g.scrollBy(-g.scrollY)
	}

	g.sched.Fire()
	return nil
}

func (g *Game) scrollBy(d float64) {
	g.scrollY = math.Max(0, g.scrollY+d)
	if g.target != nil {
		g.target.Scroll(g.scrollY)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(renderer.Background)

	g.mu.Lock()
	pix, pw, ph, st := g.pix, g.pw, g.ph, g.status
	if pw > 0 && ph > 0 {
		if g.img == nil || g.img.Bounds().Dx() != pw || g.img.Bounds().Dy() != ph {
			if g.img != nil {
				g.img.Deallocate()
			}
			g.img = ebiten.NewImage(pw, ph)
		}
		g.img.WritePixels(pix)
	}
	g.mu.Unlock()

	if pw > 0 && ph > 0 && g.img != nil {
		screen.DrawImage(g.img, nil)
	}
	ebitenutil.DebugPrint(screen, g.caption(st))
}

func (g *Game) caption(st viewer.Status) string {
	if st.Loading {
		return display.LoadingMessage(st.Progress)
	}
	s := g.info.Name
	if g.info.Description != "" {
		s += "\n" + g.info.Description
	}
	return s + "\nScroll to rotate"
}

// Layout renders at device resolution and reports CSS size plus DPR to the
// visualization whenever either changes.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	dpr := g.scale()
	if dpr <= 0 {
		dpr = 1
	}
	if outsideWidth != g.w || outsideHeight != g.h || dpr != g.dpr {
		g.w, g.h, g.dpr = outsideWidth, outsideHeight, dpr
		if g.target != nil {
			g.target.Resize(outsideWidth, outsideHeight, dpr)
		}
	}
	return int(math.Round(float64(outsideWidth) * dpr)), int(math.Round(float64(outsideHeight) * dpr))
}

// Run opens the window and blocks until it closes.
func Run(g *Game, title string, width, height int) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}
