// Package algo holds the pure scoring math of repodex: health curves,
// composite scores, momentum and ranking.
package algo

import (
	"math"
	"sort"
)

// clamp01 bounds v to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clamp bounds v to [lo,hi].
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// logRatio is log1p(v)/log1p(ref), saturating at 1.
func logRatio(v, ref float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Min(1, math.Log1p(v)/math.Log1p(ref))
}

// lerp maps x in [x0,x1] linearly onto [y0,y1].
func lerp(x, x0, x1, y0, y1 float64) float64 {
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Median returns the median of values, or nil when there are none.
// The input slice is not modified.
func Median(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	m := sorted[mid]
	if len(sorted)%2 == 0 {
		m = (sorted[mid-1] + sorted[mid]) / 2
	}
	return &m
}

// MedianOr returns the median of values, or fallback when there are none.
func MedianOr(values []float64, fallback float64) float64 {
	if m := Median(values); m != nil {
		return *m
	}
	return fallback
}
