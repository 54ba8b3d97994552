package animation

import (
	"image"

	"github.com/ivlev/proteinframes/internal/source"
)

// Loop holds the smoothed display position. It is owned by a single goroutine.
type Loop struct {
	Smoothing float64
	current   float64
	shown     int
}

func NewLoop(smoothing float64) *Loop {
	return &Loop{Smoothing: smoothing, shown: -1}
}

// Tick advances current toward target and draws the selected frame when it is
// ready. It returns the selected index (-1 without frames) and whether draw ran.
func (l *Loop) Tick(target float64, frames []source.Frame, draw func(image.Image)) (int, bool) {
	l.current = Smooth(l.current, target, l.Smoothing)

	idx := DisplayIndex(l.current, len(frames))
	if idx < 0 {
		return -1, false
	}
	f := frames[idx]
	// Кадр без изображения пропускается до следующего тика
	if !f.Loaded || f.Image == nil {
		return idx, false
	}
	if draw != nil {
		draw(f.Image)
	}
	l.shown = idx
	return idx, true
}

func (l *Loop) Current() float64 {
	return l.current
}

// Shown is the index drawn by the last successful tick, -1 before the first one.
func (l *Loop) Shown() int {
	return l.shown
}
