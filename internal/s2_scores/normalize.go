package s2_scores

import (
	"math"

	"github.com/wonny/screener/internal/strategyconfig"
)

// scale maps x into [-1, 1] with the component's clamped linear transform.
// Higher x is better.
// A NaN input is neutral (0).
func scale(x float64, c strategyconfig.Component) float64 {
	v := (x - c.Mid) / c.Span
	if math.IsNaN(v) {
		return 0
	}
	return clamp(v, -1, 1)
}

// scaleInverse is scale for components where lower is better
func scaleInverse(x float64, c strategyconfig.Component) float64 {
	return -scale(x, c)
}

func clamp(v, lo, hi float64) float64 {
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}

// toScore smooths a weighted raw sum (-1.0 ~ 1.0) into 0 ~ 100, 50 = neutral
func toScore(raw, smoothing float64) float64 {
	if math.IsNaN(raw) {
		return 50
	}
	return 50 * (1 + math.Tanh(raw*smoothing))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func ptr(v float64) *float64 {
	return &v
}
