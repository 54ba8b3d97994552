package analyzer

import (
	"fmt"
	"image/color"
)

// NewDetector creates a detector by name. bg is the frame fill colour.
func NewDetector(variant string, bg color.Color) (Detector, error) {
	switch variant {
	case "contrast", "":
		return NewContrastDetector(), nil
	case "background":
		return NewBackgroundDetector(bg), nil
	default:
		return nil, fmt.Errorf("неизвестный детектор: %s", variant)
	}
}
