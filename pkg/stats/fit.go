package stats

import (
	"math"
)

// Curve maps a problem size to the shape of an expected cost.
type Curve func(n int64) float64

// Fit is the outcome of a least-squares fit of times to a Curve.
type Fit struct {
	// Coef is the scale factor such that time ~ Coef * curve(n).
	Coef float64
	// RMS is the root-mean-square residual normalized by the mean time.
	RMS float64
}

// FitCurve computes the least-squares coefficient of times against curve(n)
// and its normalized residual.
//
// n and times must have equal length. Empty input yields a zero Fit.
func FitCurve(n []int64, times []float64, curve Curve) Fit {
	if len(n) != len(times) {
		panic("stats: FitCurve called with mismatched sample sizes")
	}
	if len(n) == 0 {
		return Fit{}
	}

	var sigmaGN, sigmaGNSquared, sigmaTime float64
	for i := range n {
		g := curve(n[i])
		sigmaGN += times[i] * g
		sigmaGNSquared += g * g
		sigmaTime += times[i]
	}

	var coef float64
	if sigmaGNSquared != 0 {
		coef = sigmaGN / sigmaGNSquared
	}

	var rms float64
	for i := range n {
		residual := times[i] - coef*curve(n[i])
		rms += residual * residual
	}

	mean := sigmaTime / float64(len(n))
	fit := Fit{Coef: coef, RMS: math.Sqrt(rms / float64(len(n)))}
	if mean != 0 {
		fit.RMS /= mean
	}
	return fit
}
