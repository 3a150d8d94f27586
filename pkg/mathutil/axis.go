// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"
)

// DecimalPrecision is the precision for two-decimal rounding
const DecimalPrecision = 100

// Round rounds a value to two decimals, the precision metrics are displayed at.
func Round(val float64) float64 {
	return math.Round(val*DecimalPrecision) / DecimalPrecision
}

// Max returns the largest finite value in values, or 0 when there is none.
func Max(values ...float64) float64 {
	max := 0.0
	found := false
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !found || v > max {
			max = v
			found = true
		}
	}
	return max
}

// NiceCeil rounds max up to a "nice" value (1, 2, 2.5, 5 or 10 times a power
// of ten) so a zero-based axis ends on a readable tick.
func NiceCeil(max float64) float64 {
	if math.IsNaN(max) || math.IsInf(max, 0) || max <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(max)))
	for _, c := range []float64{1, 2, 2.5, 5, 10} {
		if candidate := c * mag; candidate >= max {
			return candidate
		}
	}
	return 10 * mag
}

// Min returns the smallest finite value in values, or 0 when there is none.
func Min(values ...float64) float64 {
	min := 0.0
	found := false
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !found || v < min {
			min = v
			found = true
		}
	}
	return min
}

// ZeroBasedRange returns the value axis bounds for the given series. Zero is
// always inside the range; each bound is widened to a nice value so the data
// extremes stay visible, negative forecasts included.
func ZeroBasedRange(series ...[]float64) (float64, float64) {
	lo, hi := 0.0, 0.0
	for _, values := range series {
		if m := Min(values...); m < lo {
			lo = m
		}
		if m := Max(values...); m > hi {
			hi = m
		}
	}

	if lo < 0 {
		lo = -NiceCeil(-lo)
	}
	if hi > 0 {
		hi = NiceCeil(hi)
	}
	if lo == 0 && hi == 0 {
		hi = 1
	}
	return lo, hi
}
