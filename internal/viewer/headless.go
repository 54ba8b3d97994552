package viewer

import (
	"context"
	"image"
	"image/draw"
	"math"
)

// Snapshot is one deterministic render of a visualization.
type Snapshot struct {
	Image    *image.RGBA
	Status   Status
	Position Position
}

// RenderHeadless loads all frames synchronously, sizes the surface, applies a
// page scroll and runs the given number of ticks without goroutines or timers.
func RenderHeadless(ctx context.Context, opts Options, w, h int, dpr, scrollY float64, ticks int) Snapshot {
	v := New(opts)
	defer v.shutdown()

	frames := v.provider.Load(ctx, v.cfg.FrameCount, func(p float64) {
		v.handle(event{kind: evProgress, value: p})
	})
	if frames != nil {
		v.handle(event{kind: evFrames, frames: frames})
	}

	v.handle(event{kind: evResize, w: w, h: h, dpr: dpr})
	v.scrollY.Store(math.Float64bits(scrollY))
	v.handle(event{kind: evScroll})
	for i := 0; i < ticks; i++ {
		v.tick()
	}

	snap := Snapshot{Status: v.Status(), Position: v.position()}
	if img := v.surface.Image(); img != nil {
		snap.Image = image.NewRGBA(img.Bounds())
		draw.Draw(snap.Image, img.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	v.surface.Release()
	return snap
}
