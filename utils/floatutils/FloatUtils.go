// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Clip returns value limited to [min, max]
func Clip(value, min, max float64) float64 {
	return math.Max(math.Min(value, max), min)
}

// ClipInterval returns value limited to interval
func ClipInterval(value float64, interval r1.Interval) float64 {
	return Clip(value, interval.Min, interval.Max)
}

// ClipIntervals limits each values[i] to bounds[i] in place. Values
// beyond the length of bounds are left unchanged.
func ClipIntervals(values []float64, bounds []r1.Interval) {
	for i := range values {
		if i >= len(bounds) {
			return
		}
		values[i] = ClipInterval(values[i], bounds[i])
	}
}
