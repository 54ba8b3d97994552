package source

import (
	"context"
	"image"

	"github.com/ivlev/proteinframes/internal/canvas"
	"github.com/ivlev/proteinframes/internal/renderer"
	"github.com/ivlev/proteinframes/internal/structure"
)

// SyntheticSource draws frames procedurally; it never fails.
type SyntheticSource struct {
	Renderer *renderer.Renderer
	Atoms    []structure.Atom
	Width    int
	Height   int
	Count    int
}

// NewSyntheticSource draws the compact helix on a transparent w x h canvas.
func NewSyntheticSource(w, h, count int) *SyntheticSource {
	return &SyntheticSource{
		Renderer: &renderer.Renderer{Helix: renderer.CompactHelix},
		Width:    w,
		Height:   h,
		Count:    count,
	}
}

func (s *SyntheticSource) LoadFrame(ctx context.Context, index int) (image.Image, error) {
	return s.Frame(index), nil
}

// Frame renders frame index at angle 2π·index/Count onto a fresh image.
func (s *SyntheticSource) Frame(index int) *image.RGBA {
	w, h := s.Width, s.Height
	if w <= 0 || h <= 0 {
		w, h = 800, 600
	}
	r := s.Renderer
	if r == nil {
		r = &renderer.Renderer{Helix: renderer.CompactHelix}
	}

	// Кадры живут всё время монтирования, поэтому не из пула
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	r.Render(canvas.NewContext(img), renderer.FrameAngle(index, s.Count), s.Atoms)
	return img
}
