package analyzer

import (
	"image"
	"image/color"
	"math"
)

// ContrastDetector finds content through Sobel edges, so it works on any
// background fill.
type ContrastDetector struct {
	MinArea       int     // pixels²
	EdgeThreshold float64 // gradient magnitude
}

func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		MinArea:       25,
		EdgeThreshold: 30.0,
	}
}

func (d *ContrastDetector) Detect(img image.Image) ([]Region, error) {
	gray := toGrayscale(img)
	edges := sobel(gray, d.EdgeThreshold)
	// Соединяем контуры атомов в одну молекулу
	mask := dilate(edges, 5, 2)
	return classify(components(mask), d.MinArea, 0.7), nil
}

// BackgroundDetector marks every pixel that differs from the fill colour.
type BackgroundDetector struct {
	Background color.Color
	Tolerance  int // per channel, 0..255
	MinArea    int
}

func NewBackgroundDetector(bg color.Color) *BackgroundDetector {
	if bg == nil {
		bg = color.White
	}
	return &BackgroundDetector{Background: bg, Tolerance: 8, MinArea: 4}
}

func (d *BackgroundDetector) Detect(img image.Image) ([]Region, error) {
	b := img.Bounds()
	mask := image.NewGray(b)
	br, bgc, bb, _ := d.Background.RGBA()

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			if channelDiff(r, br) > d.Tolerance || channelDiff(g, bgc) > d.Tolerance || channelDiff(bl, bb) > d.Tolerance {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return classify(components(mask), d.MinArea, 0.9), nil
}

func channelDiff(a, b uint32) int {
	d := int(a>>8) - int(b>>8)
	if d < 0 {
		return -d
	}
	return d
}

func toGrayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

var (
	sobelX = [3][3]int{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	sobelY = [3][3]int{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
)

// sobel thresholds the gradient magnitude into a binary mask
func sobel(gray *image.Gray, threshold float64) *image.Gray {
	b := gray.Bounds()
	edges := image.NewGray(b)

	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := float64(gray.GrayAt(x+kx, y+ky).Y)
					gx += v * float64(sobelX[ky+1][kx+1])
					gy += v * float64(sobelY[ky+1][kx+1])
				}
			}
			if math.Hypot(gx, gy) > threshold {
				edges.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return edges
}

// dilate grows the mask by a square kernel, iterations times
func dilate(mask *image.Gray, kernel, iterations int) *image.Gray {
	b := mask.Bounds()
	half := kernel / 2
	cur := mask

	for it := 0; it < iterations; it++ {
		next := image.NewGray(b)
		for y := b.Min.Y + half; y < b.Max.Y-half; y++ {
			for x := b.Min.X + half; x < b.Max.X-half; x++ {
				var peak uint8
				for ky := -half; ky <= half && peak < 255; ky++ {
					for kx := -half; kx <= half; kx++ {
						if v := cur.GrayAt(x+kx, y+ky).Y; v > peak {
							peak = v
						}
					}
				}
				next.SetGray(x, y, color.Gray{Y: peak})
			}
		}
		cur = next
	}
	return cur
}

// components returns the bounding boxes of 4-connected set pixels
func components(mask *image.Gray) []image.Rectangle {
	b := mask.Bounds()
	visited := make([]bool, b.Dx()*b.Dy())
	idx := func(x, y int) int { return (y-b.Min.Y)*b.Dx() + (x - b.Min.X) }

	rects := []image.Rectangle{}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if mask.GrayAt(x, y).Y > 128 && !visited[idx(x, y)] {
				rects = append(rects, fill(mask, visited, idx, image.Point{X: x, Y: y}))
			}
		}
	}
	return rects
}

func fill(mask *image.Gray, visited []bool, idx func(x, y int) int, start image.Point) image.Rectangle {
	b := mask.Bounds()
	box := image.Rectangle{Min: start, Max: start.Add(image.Point{X: 1, Y: 1})}
	stack := []image.Point{start}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !p.In(b) || visited[idx(p.X, p.Y)] || mask.GrayAt(p.X, p.Y).Y <= 128 {
			continue
		}
		visited[idx(p.X, p.Y)] = true
		box = box.Union(image.Rectangle{Min: p, Max: p.Add(image.Point{X: 1, Y: 1})})

		stack = append(stack,
			image.Point{X: p.X + 1, Y: p.Y},
			image.Point{X: p.X - 1, Y: p.Y},
			image.Point{X: p.X, Y: p.Y + 1},
			image.Point{X: p.X, Y: p.Y - 1},
		)
	}
	return box
}
