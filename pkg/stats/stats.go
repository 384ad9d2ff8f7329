// Package stats contains the numeric kernels used to summarize benchmark
// repetitions and to fit complexity curves.
//
// All functions are pure and accept empty input, for which they return zero
// rather than an error.
package stats

import (
	"math"
	"slices"
)

// Reducer summarizes a sample into a single value.
type Reducer func(values []float64) float64

// Mean calculates the arithmetic mean of the values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// Median finds the middle value of the sample.
//
// Samples with fewer than three values return the mean. Even-sized samples
// return the average of the two central values.
func Median(values []float64) float64 {
	if len(values) < 3 {
		return Mean(values)
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// StdDev calculates the Bessel-corrected sample standard deviation.
//
// A single value has no spread and yields zero. Rounding can push the variance
// slightly below zero for nearly constant samples; it is clamped.
func StdDev(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return Mean(values)
	}
	if n == 1 {
		return 0
	}

	mean := Mean(values)
	squares := make([]float64, n)
	for i, v := range values {
		squares[i] = v * v
	}

	variance := float64(n) / float64(n-1) * (Mean(squares) - mean*mean)
	return math.Sqrt(max(variance, 0))
}

// Minimum finds the smallest value.
func Minimum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return slices.Min(values)
}

// Maximum finds the largest value.
func Maximum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return slices.Max(values)
}
