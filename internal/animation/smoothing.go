// Package animation advances the displayed frame toward the target frame once
// per display refresh.
package animation

import "math"

// Smooth is one step of exponential smoothing: current moves by factor s of the
// remaining gap. For s in (0, 1] it never overshoots.
func Smooth(current, target, s float64) float64 {
	return lerp(current, target, s)
}

// TicksToConverge returns how many Smooth steps shrink a gap below eps.
func TicksToConverge(gap, s, eps float64) int {
	gap = math.Abs(gap)
	if gap <= eps {
		return 0
	}
	if s <= 0 {
		return -1
	}
	if s >= 1 {
		return 1
	}
	return int(math.Ceil(math.Log(eps/gap) / math.Log(1-s)))
}

// DisplayIndex rounds current half up and wraps it into [0, n).
// It returns -1 when there are no frames.
func DisplayIndex(current float64, n int) int {
	if n < 1 {
		return -1
	}
	if math.IsNaN(current) || math.IsInf(current, 0) {
		return 0
	}
	i := int(math.Floor(current+0.5)) % n
	if i < 0 {
		i += n
	}
	return i
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
