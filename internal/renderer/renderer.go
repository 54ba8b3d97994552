// Package renderer draws 2D projections of rotating protein structures.
package renderer

import (
	"math"
	"sort"

	"github.com/ivlev/proteinframes/internal/canvas"
	"github.com/ivlev/proteinframes/internal/structure"
)

const (
	fitRatio      = 0.7
	baseAtomSize  = 3.0
	highlightSize = 0.4
	highlightOff  = 0.3
)

// Projected is an atom placed on screen after rotation.
type Projected struct {
	Atom    structure.Atom
	ScreenX float64
	ScreenY float64
	Depth   float64 // z after rotation, bbox-centred
}

// Projection is the depth-sorted (back to front) result of Project.
type Projection struct {
	Atoms      []Projected
	DepthRange float64
	Scale      float64
}

// Renderer draws one frame either from real atoms or, when none are usable,
// as a synthetic helix.
type Renderer struct {
	Helix HelixParams
}

func New() *Renderer {
	return &Renderer{Helix: OfflineHelix}
}

// Render draws the structure rotated by angle (radians, about the Y axis),
// centred on c. Coordinates are device pixels: the current transform is ignored.
func (r *Renderer) Render(c *canvas.Context, angle float64, atoms []structure.Atom) {
	if c == nil {
		return
	}
	w, h := float64(c.Width()), float64(c.Height())

	c.Save()
	c.ResetTransform()
	defer c.Restore()

	proj, ok := Project(atoms, angle, w, h)
	if !ok {
		r.drawHelix(c, angle, w/2, h/2)
		return
	}

	for _, p := range proj.Atoms {
		ratio := 0.0
		if proj.DepthRange > 0 {
			ratio = clamp(p.Depth/proj.DepthRange, -1, 1)
		}
		radius := baseAtomSize * (1 + ratio*0.5)

		c.SetGlobalAlpha(0.7 + 0.3*(ratio+0.5))
		c.FillCircle(p.ScreenX, p.ScreenY, radius, ElementColor(p.Atom.Element))
		c.FillCircle(p.ScreenX-radius*highlightOff, p.ScreenY-radius*highlightOff, radius*highlightSize, highlight(0.3))
	}
	c.SetGlobalAlpha(1)
}

// Project centres atoms on their bounding box, rotates them about the Y axis
// and maps them onto a w x h canvas so the X/Y extent fills 70% of it.
// ok is false when there is nothing to draw: no atoms, or zero X and Y extent.
func Project(atoms []structure.Atom, angle, w, h float64) (Projection, bool) {
	b, ok := structure.ComputeBounds(atoms)
	if !ok {
		return Projection{}, false
	}

	// Нулевая протяжённость по оси не участвует в масштабе
	scale := math.Inf(1)
	if pw := b.Width(); pw > 0 {
		scale = math.Min(scale, w*fitRatio/pw)
	}
	if ph := b.Height(); ph > 0 {
		scale = math.Min(scale, h*fitRatio/ph)
	}
	if math.IsInf(scale, 1) || scale <= 0 {
		return Projection{}, false
	}

	cx, cy, cz := b.Center()
	sin, cos := math.Sincos(angle)
	out := make([]Projected, len(atoms))
	for i, a := range atoms {
		x := a.X - cx
		y := a.Y - cy
		z := a.Z - cz
		rx := x*cos - z*sin
		rz := x*sin + z*cos
		out[i] = Projected{
			Atom:    a,
			ScreenX: w/2 + rx*scale,
			ScreenY: h/2 + y*scale,
			Depth:   rz,
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Depth < out[j].Depth
	})

	return Projection{Atoms: out, DepthRange: b.Depth(), Scale: scale}, true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// FrameAngle is the rotation of frame i in an n-frame turn: 2π·i/n.
func FrameAngle(i, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(i) / float64(n) * 2 * math.Pi
}
