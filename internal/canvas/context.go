// Package canvas provides a small 2D drawing context over *image.RGBA and the
// surface that owns device-pixel sizing of the visualization.
package canvas

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"
)

// kappa is the cubic Bezier control distance for a quarter circle.
const kappa = 0.5522847498307936

var identity = f64.Aff3{1, 0, 0, 0, 1, 0}

type Point struct {
	X, Y float64
}

type state struct {
	m     f64.Aff3
	alpha float64
}

// Context draws in user units; the current transform maps them to device pixels.
// All methods are no-ops on a nil *Context.
type Context struct {
	dst   *image.RGBA
	m     f64.Aff3
	alpha float64
	stack []state
	z     vector.Rasterizer
}

func NewContext(dst *image.RGBA) *Context {
	return &Context{dst: dst, m: identity, alpha: 1}
}

// Image returns the backing store.
func (c *Context) Image() *image.RGBA {
	if c == nil {
		return nil
	}
	return c.dst
}

// Width and Height are in device pixels.
func (c *Context) Width() int {
	if c == nil || c.dst == nil {
		return 0
	}
	return c.dst.Bounds().Dx()
}

func (c *Context) Height() int {
	if c == nil || c.dst == nil {
		return 0
	}
	return c.dst.Bounds().Dy()
}

func (c *Context) Save() {
	if c == nil {
		return
	}
	c.stack = append(c.stack, state{m: c.m, alpha: c.alpha})
}

func (c *Context) Restore() {
	if c == nil || len(c.stack) == 0 {
		return
	}
	s := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.m, c.alpha = s.m, s.alpha
}

func (c *Context) Translate(tx, ty float64) {
	if c == nil {
		return
	}
	c.m = mul(c.m, f64.Aff3{1, 0, tx, 0, 1, ty})
}

func (c *Context) Scale(sx, sy float64) {
	if c == nil {
		return
	}
	c.m = mul(c.m, f64.Aff3{sx, 0, 0, 0, sy, 0})
}

func (c *Context) Rotate(theta float64) {
	if c == nil {
		return
	}
	sin, cos := math.Sincos(theta)
	c.m = mul(c.m, f64.Aff3{cos, -sin, 0, sin, cos, 0})
}

func (c *Context) ResetTransform() {
	if c == nil {
		return
	}
	c.m = identity
}

// Transform returns the current user-to-device matrix.
func (c *Context) Transform() f64.Aff3 {
	if c == nil {
		return identity
	}
	return c.m
}

func (c *Context) SetGlobalAlpha(a float64) {
	if c == nil {
		return
	}
	c.alpha = math.Max(0, math.Min(1, a))
}

func (c *Context) GlobalAlpha() float64 {
	if c == nil {
		return 1
	}
	return c.alpha
}

// Clear makes the whole backing store transparent, regardless of the transform.
func (c *Context) Clear() {
	if c == nil || c.dst == nil {
		return
	}
	draw.Draw(c.dst, c.dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// Fill paints the whole backing store with col.
func (c *Context) Fill(col color.Color) {
	if c == nil || c.dst == nil {
		return
	}
	draw.Draw(c.dst, c.dst.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *Context) FillRect(x, y, w, h float64, col color.Color) {
	if c == nil || c.dst == nil {
		return
	}
	var p path
	p.moveTo(c.apply(x, y))
	p.lineTo(c.apply(x+w, y))
	p.lineTo(c.apply(x+w, y+h))
	p.lineTo(c.apply(x, y+h))
	p.close()
	c.fill(&p, col)
}

func (c *Context) FillCircle(cx, cy, r float64, col color.Color) {
	if c == nil || c.dst == nil || r <= 0 {
		return
	}
	var p path
	c.circle(&p, cx, cy, r)
	c.fill(&p, col)
}

// StrokePolyline strokes connected segments through pts with round joins.
func (c *Context) StrokePolyline(pts []Point, width float64, col color.Color) {
	if c == nil || c.dst == nil || len(pts) == 0 || width <= 0 {
		return
	}
	half := width / 2
	var p path
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*half, dx/l*half
		quad := [4]Point{
			{a.X + nx, a.Y + ny},
			{b.X + nx, b.Y + ny},
			{b.X - nx, b.Y - ny},
			{a.X - nx, a.Y - ny},
		}
		// Все подпути должны иметь одинаковое направление обхода,
		// иначе при перекрытии площади вычитаются.
		if signedArea(quad[:]) < 0 {
			quad[1], quad[3] = quad[3], quad[1]
		}
		p.moveTo(c.apply(quad[0].X, quad[0].Y))
		for _, q := range quad[1:] {
			p.lineTo(c.apply(q.X, q.Y))
		}
		p.close()
	}
	for _, pt := range pts {
		c.circle(&p, pt.X, pt.Y, half)
	}
	c.fill(&p, col)
}

// DrawImage scales src into the user-space rectangle (x, y, w, h) with bilinear sampling.
func (c *Context) DrawImage(src image.Image, x, y, w, h float64) {
	if c == nil || c.dst == nil || src == nil {
		return
	}
	sr := src.Bounds()
	if sr.Empty() || w <= 0 || h <= 0 {
		return
	}
	m := mul(c.m, f64.Aff3{
		w / float64(sr.Dx()), 0, x - float64(sr.Min.X)*w/float64(sr.Dx()),
		0, h / float64(sr.Dy()), y - float64(sr.Min.Y)*h/float64(sr.Dy()),
	})
	draw.ApproxBiLinear.Transform(c.dst, m, src, sr, draw.Over, nil)
}

// circle appends a counter-clockwise (in device space) circle built from four cubic arcs.
func (c *Context) circle(p *path, cx, cy, r float64) {
	k := r * kappa
	p.moveTo(c.apply(cx+r, cy))
	p.cubeTo(c.apply(cx+r, cy+k), c.apply(cx+k, cy+r), c.apply(cx, cy+r))
	p.cubeTo(c.apply(cx-k, cy+r), c.apply(cx-r, cy+k), c.apply(cx-r, cy))
	p.cubeTo(c.apply(cx-r, cy-k), c.apply(cx-k, cy-r), c.apply(cx, cy-r))
	p.cubeTo(c.apply(cx+k, cy-r), c.apply(cx+r, cy-k), c.apply(cx+r, cy))
	p.close()
}

func (c *Context) apply(x, y float64) Point {
	return Point{
		X: c.m[0]*x + c.m[1]*y + c.m[2],
		Y: c.m[3]*x + c.m[4]*y + c.m[5],
	}
}

// fill rasterizes p only over its device-space bounding box.
func (c *Context) fill(p *path, col color.Color) {
	if len(p.ops) == 0 {
		return
	}
	box := p.bounds().Intersect(c.dst.Bounds())
	if box.Empty() {
		return
	}

	nc := color.NRGBAModel.Convert(col).(color.NRGBA)
	nc.A = uint8(math.Round(float64(nc.A) * c.alpha))
	if nc.A == 0 {
		return
	}

	c.z.Reset(box.Dx(), box.Dy())
	c.z.DrawOp = draw.Over
	ox, oy := float32(box.Min.X), float32(box.Min.Y)
	for _, op := range p.ops {
		switch op.kind {
		case opMove:
			c.z.MoveTo(float32(op.p[0].X)-ox, float32(op.p[0].Y)-oy)
		case opLine:
			c.z.LineTo(float32(op.p[0].X)-ox, float32(op.p[0].Y)-oy)
		case opCube:
			c.z.CubeTo(
				float32(op.p[0].X)-ox, float32(op.p[0].Y)-oy,
				float32(op.p[1].X)-ox, float32(op.p[1].Y)-oy,
				float32(op.p[2].X)-ox, float32(op.p[2].Y)-oy,
			)
		case opClose:
			c.z.ClosePath()
		}
	}
	c.z.Draw(c.dst, box, image.NewUniform(nc), image.Point{})
}

func mul(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3], a[0]*b[1] + a[1]*b[4], a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3], a[3]*b[1] + a[4]*b[4], a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

func signedArea(pts []Point) float64 {
	var s float64
	for i := range pts {
		j := (i + 1) % len(pts)
		s += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return s / 2
}
