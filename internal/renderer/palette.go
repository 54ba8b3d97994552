package renderer

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	Background = mustHex("#fafafa")
	Backbone   = mustHex("#DA291C")
	frontTone  = mustHex("#FFD93D")

	defaultElement = mustHex("#666666")
	elementColors  = map[string]colorful.Color{
		"C": mustHex("#333333"),
		"N": mustHex("#3050F8"),
		"O": mustHex("#FF0D0D"),
		"H": mustHex("#FFFFFF"),
		"S": mustHex("#FFFF30"),
	}
)

// ElementColor maps an element symbol to its CPK-like fill colour.
func ElementColor(element string) color.Color {
	if c, ok := elementColors[element]; ok {
		return c
	}
	return defaultElement
}

// DepthHue returns the residue colour for a normalized depth in [0, 1]:
// hue sweeps from red (far) to yellow (near).
func DepthHue(depth float64) color.Color {
	return colorful.Hsl(depth*60, 0.7, 0.5).Clamped()
}

// highlight is white at the given opacity.
func highlight(alpha float64) color.Color {
	return color.NRGBA{R: 255, G: 255, B: 255, A: uint8(alpha*255 + 0.5)}
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
