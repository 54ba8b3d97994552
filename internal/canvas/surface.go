package canvas

import (
	"image"
	"math"

	"github.com/ivlev/proteinframes/internal/system"
)

// Surface is the drawing area of the visualization. Its logical (CSS) size is
// what layout sees; the backing store is scaled by the device pixel ratio.
type Surface struct {
	cssW, cssH int
	dpr        float64
	ctx        *Context
}

func NewSurface() *Surface {
	return &Surface{dpr: 1}
}

// Resize sets the logical size and reallocates the backing store at
// round(css*dpr) device pixels. A non-positive dpr counts as 1.
func (s *Surface) Resize(cssW, cssH int, dpr float64) {
	if s == nil {
		return
	}
	if dpr <= 0 {
		dpr = 1
	}
	if cssW < 0 {
		cssW = 0
	}
	if cssH < 0 {
		cssH = 0
	}

	pw := int(math.Round(float64(cssW) * dpr))
	ph := int(math.Round(float64(cssH) * dpr))

	if s.ctx != nil {
		if img := s.ctx.Image(); img != nil {
			if img.Rect.Dx() == pw && img.Rect.Dy() == ph && s.dpr == dpr {
				s.cssW, s.cssH = cssW, cssH
				return
			}
			system.PutImage(img)
		}
	}

	s.cssW, s.cssH, s.dpr = cssW, cssH, dpr
	// Новый контекст сбрасывает трансформацию, как и изменение размера canvas
	s.ctx = NewContext(system.GetImage(pw, ph))
	s.ctx.Scale(dpr, dpr)
}

// Draw clears the surface and blits img scaled to fit, centred.
func (s *Surface) Draw(img image.Image) {
	if s == nil || s.ctx == nil || s.ctx.Image() == nil || img == nil {
		return
	}
	b := img.Bounds()
	if b.Empty() || s.cssW == 0 || s.cssH == 0 {
		return
	}

	scale := math.Min(float64(s.cssW)/float64(b.Dx()), float64(s.cssH)/float64(b.Dy()))
	w := float64(b.Dx()) * scale
	h := float64(b.Dy()) * scale
	x := (float64(s.cssW) - w) / 2
	y := (float64(s.cssH) - h) / 2

	s.ctx.Clear()
	s.ctx.DrawImage(img, x, y, w, h)
}

// Context returns the drawing context, nil before the first Resize.
func (s *Surface) Context() *Context {
	if s == nil {
		return nil
	}
	return s.ctx
}

// Image returns the backing store.
func (s *Surface) Image() *image.RGBA {
	if s == nil {
		return nil
	}
	return s.ctx.Image()
}

func (s *Surface) CSSSize() (int, int) {
	if s == nil {
		return 0, 0
	}
	return s.cssW, s.cssH
}

func (s *Surface) DPR() float64 {
	if s == nil {
		return 1
	}
	return s.dpr
}

// Release returns the backing store to the pool.
func (s *Surface) Release() {
	if s == nil || s.ctx == nil {
		return
	}
	system.PutImage(s.ctx.Image())
	s.ctx = nil
}
