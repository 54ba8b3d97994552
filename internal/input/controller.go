// Package input turns page scroll and wheel deltas into a target frame.
package input

import "math"

// Controller accumulates input deltas into a target frame index clamped to
// [0, frameCount-1]. It is not safe for concurrent use: the owning event loop
// serialises calls.
type Controller struct {
	frameCount        int
	scrollSensitivity float64
	wheelSensitivity  float64

	target      float64
	lastScrollY float64
}

func NewController(frameCount int, scrollSensitivity, wheelSensitivity float64) *Controller {
	return &Controller{
		frameCount:        frameCount,
		scrollSensitivity: scrollSensitivity,
		wheelSensitivity:  wheelSensitivity,
	}
}

// Scroll applies the delta between scrollY and the last seen page position.
func (c *Controller) Scroll(scrollY float64) float64 {
	delta := scrollY - c.lastScrollY
	c.lastScrollY = scrollY
	return c.add(delta * c.scrollSensitivity)
}

// Wheel applies a pointer-wheel delta over the drawing area.
func (c *Controller) Wheel(deltaY float64) float64 {
	return c.add(deltaY * c.wheelSensitivity)
}

// SyncScroll records the page position without moving the target.
func (c *Controller) SyncScroll(scrollY float64) {
	c.lastScrollY = scrollY
}

func (c *Controller) Target() float64 {
	return c.target
}

func (c *Controller) LastScrollY() float64 {
	return c.lastScrollY
}

func (c *Controller) add(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return c.target
	}
	c.target = Clamp(c.target+v, c.frameCount)
	return c.target
}

// Clamp limits v to [0, frameCount-1]; with no frames the only valid target is 0.
func Clamp(v float64, frameCount int) float64 {
	if frameCount < 1 {
		return 0
	}
	return math.Max(0, math.Min(float64(frameCount-1), v))
}
