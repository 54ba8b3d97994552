package renderer

import (
	"math"
	"sort"

	"github.com/ivlev/proteinframes/internal/canvas"
)

// HelixParams describes the procedural alpha helix drawn when no structure is available.
type HelixParams struct {
	Radius        float64
	Height        float64
	Turns         int
	PointsPerTurn int
	Residues      int
	DepthConstant float64 // pseudo-perspective: scale = 1 + z/DepthConstant
	LineWidth     float64
	ResidueRadius float64
	// TwoTone colours residues yellow in front of the axis and red behind it
	// instead of the depth hue ramp, and skips the highlight.
	TwoTone bool
}

var (
	// OfflineHelix is the helix of the frame generator.
	OfflineHelix = HelixParams{
		Radius:        80,
		Height:        250,
		Turns:         4,
		PointsPerTurn: 30,
		Residues:      20,
		DepthConstant: 300,
		LineWidth:     4,
		ResidueRadius: 10,
	}

	// CompactHelix is the lighter in-page placeholder.
	CompactHelix = HelixParams{
		Radius:        100,
		Height:        200,
		Turns:         3,
		PointsPerTurn: 20,
		Residues:      10,
		DepthConstant: 200,
		LineWidth:     3,
		ResidueRadius: 8,
		TwoTone:       true,
	}
)

type helixPoint struct {
	x, y, z float64
	scale   float64
}

// point returns the helix position at parameter t in [0, 1], spun by angle about its axis.
func (p HelixParams) point(t, angle float64) helixPoint {
	theta := t*float64(p.Turns)*2*math.Pi + angle
	x := math.Cos(theta) * p.Radius
	y := (t - 0.5) * p.Height
	z := math.Sin(theta) * p.Radius
	return helixPoint{x: x, y: y, z: z, scale: 1 + z/p.DepthConstant}
}

// Synthetic draws only the helix, whatever the atoms would have been.
func (r *Renderer) Synthetic(c *canvas.Context, angle float64) {
	if c == nil {
		return
	}
	c.Save()
	c.ResetTransform()
	defer c.Restore()
	r.drawHelix(c, angle, float64(c.Width())/2, float64(c.Height())/2)
}

func (r *Renderer) drawHelix(c *canvas.Context, angle, cx, cy float64) {
	p := r.Helix
	if p.Turns <= 0 || p.PointsPerTurn <= 0 || p.DepthConstant == 0 {
		p = OfflineHelix
	}

	c.Save()
	defer c.Restore()
	c.Translate(cx, cy)

	total := p.Turns * p.PointsPerTurn
	backbone := make([]canvas.Point, 0, total+1)
	for i := 0; i <= total; i++ {
		hp := p.point(float64(i)/float64(total), angle)
		backbone = append(backbone, canvas.Point{X: hp.x * hp.scale, Y: hp.y * hp.scale})
	}
	c.StrokePolyline(backbone, p.LineWidth, Backbone)

	residues := make([]helixPoint, 0, p.Residues)
	for i := 0; i < p.Residues; i++ {
		t := 0.0
		if p.Residues > 1 {
			t = float64(i) / float64(p.Residues-1)
		}
		residues = append(residues, p.point(t, angle))
	}
	// Дальние остатки рисуются первыми
	sort.SliceStable(residues, func(i, j int) bool {
		return residues[i].z < residues[j].z
	})

	for _, hp := range residues {
		x, y := hp.x*hp.scale, hp.y*hp.scale
		radius := p.ResidueRadius * hp.scale

		if p.TwoTone {
			if hp.z > 0 {
				c.FillCircle(x, y, radius, frontTone)
			} else {
				c.FillCircle(x, y, radius, Backbone)
			}
			continue
		}

		depth := (hp.z + p.Radius) / (2 * p.Radius)
		c.FillCircle(x, y, radius, DepthHue(depth))
		c.FillCircle(x-radius*highlightOff, y-radius*highlightOff, radius*highlightSize, highlight(0.4))
	}
}
