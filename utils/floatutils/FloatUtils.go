// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// ClipInterval is a wrapper to use Clip with an r1.Interval instead of
// a separate max and min value
func ClipInterval(value float64, interval r1.Interval) float64 {
	return Clip(value, interval.Min, interval.Max)
}

// ClipSlice clips each value in values to the interval of the same
// index in place. The returned bool is true if any value was changed.
func ClipSlice(values []float64, intervals []r1.Interval) bool {
	if len(values) != len(intervals) {
		panic("clipSlice: values and intervals must have the same length")
	}

	clipped := false
	for i, value := range values {
		c := ClipInterval(value, intervals[i])
		if c != value {
			values[i] = c
			clipped = true
		}
	}
	return clipped
}

// Factorials returns the factorials 1!, 2!, ..., n!
func Factorials(n int) []float64 {
	factorials := make([]float64, n)
	running := 1.0
	for i := range factorials {
		running *= float64(i + 1)
		factorials[i] = running
	}
	return factorials
}

// AnyNaN returns whether any value in values is NaN
func AnyNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// NaNs returns a slice of n NaN values
func NaNs(n int) []float64 {
	nans := make([]float64, n)
	for i := range nans {
		nans[i] = math.NaN()
	}
	return nans
}
