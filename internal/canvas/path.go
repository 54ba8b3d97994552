package canvas

import (
	"image"
	"math"
)

type opKind uint8

const (
	opMove opKind = iota
	opLine
	opCube
	opClose
)

type pathOp struct {
	kind opKind
	p    [3]Point
}

// path collects device-space commands until fill rasterizes them.
type path struct {
	ops                    []pathOp
	minX, minY, maxX, maxY float64
	started                bool
}

func (p *path) moveTo(a Point) {
	p.grow(a)
	p.ops = append(p.ops, pathOp{kind: opMove, p: [3]Point{a}})
}

func (p *path) lineTo(a Point) {
	p.grow(a)
	p.ops = append(p.ops, pathOp{kind: opLine, p: [3]Point{a}})
}

// Control points lie inside the convex hull, so they bound the curve too.
func (p *path) cubeTo(b, c, d Point) {
	p.grow(b)
	p.grow(c)
	p.grow(d)
	p.ops = append(p.ops, pathOp{kind: opCube, p: [3]Point{b, c, d}})
}

func (p *path) close() {
	p.ops = append(p.ops, pathOp{kind: opClose})
}

func (p *path) grow(a Point) {
	if !p.started {
		p.minX, p.maxX = a.X, a.X
		p.minY, p.maxY = a.Y, a.Y
		p.started = true
		return
	}
	p.minX = math.Min(p.minX, a.X)
	p.maxX = math.Max(p.maxX, a.X)
	p.minY = math.Min(p.minY, a.Y)
	p.maxY = math.Max(p.maxY, a.Y)
}

// bounds returns the integer pixel rectangle covering every point.
func (p *path) bounds() image.Rectangle {
	if !p.started {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Floor(p.minX)), int(math.Floor(p.minY)),
		int(math.Ceil(p.maxX))+1, int(math.Ceil(p.maxY))+1,
	)
}
