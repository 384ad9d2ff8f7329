package bench

import (
	"fmt"
	"math"
	"strings"

	"github.com/shivanshkc/ubench/pkg/stats"
)

// BigO selects the asymptotic curve fitted to a family's results.
type BigO int

const (
	// BigONone disables complexity fitting.
	BigONone BigO = iota
	O1
	OLogN
	ON
	ONLogN
	ONSquared
	ONCubed
	// OLambda fits a user supplied curve, see Benchmark.ComplexityFunc.
	OLambda
	// OAuto selects the best fitting of the predefined curves.
	OAuto
)

var bigONames = map[BigO]string{
	BigONone:  "",
	O1:        "(1)",
	OLogN:     "lgN",
	ON:        "N",
	ONLogN:    "NlgN",
	ONSquared: "N^2",
	ONCubed:   "N^3",
	OLambda:   "f(N)",
	OAuto:     "auto",
}

// String returns the conventional short name of the curve, such as "NlgN".
func (b BigO) String() string {
	if name, ok := bigONames[b]; ok {
		return name
	}
	return fmt.Sprintf("BigO(%d)", int(b))
}

// MarshalText encodes the curve by its short name.
func (b BigO) MarshalText() ([]byte, error) {
	if _, ok := bigONames[b]; !ok {
		return nil, fmt.Errorf("unknown complexity %d", int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText decodes a short name produced by MarshalText.
func (b *BigO) UnmarshalText(text []byte) error {
	for value, name := range bigONames {
		if name == string(text) {
			*b = value
			return nil
		}
	}
	return fmt.Errorf("unknown complexity %q", string(text))
}

// Curve returns the growth function of a predefined curve.
// It panics for BigONone, OLambda and OAuto, which have no fixed shape.
func (b BigO) Curve() stats.Curve {
	switch b {
	case O1:
		return func(int64) float64 { return 1 }
	case OLogN:
		return func(n int64) float64 { return math.Log2(float64(n)) }
	case ON:
		return func(n int64) float64 { return float64(n) }
	case ONLogN:
		return func(n int64) float64 { return float64(n) * math.Log2(float64(n)) }
	case ONSquared:
		return func(n int64) float64 { return math.Pow(float64(n), 2) }
	case ONCubed:
		return func(n int64) float64 { return math.Pow(float64(n), 3) }
	default:
		panic(fmt.Sprintf("bench: complexity %s has no predefined curve", b))
	}
}

// autoCandidates are tried in order after O1; a candidate replaces the current
// best only if its residual is strictly smaller.
var autoCandidates = []BigO{OLogN, ON, ONLogN, ONSquared, ONCubed}

// LeastSq is a fitted complexity curve.
type LeastSq struct {
	Complexity BigO
	Coef       float64
	RMS        float64
}

// MinimalLeastSq fits times against the requested predefined curve, or against
// the best one when complexity is OAuto.
func MinimalLeastSq(n []int64, times []float64, complexity BigO) LeastSq {
	check(complexity != BigONone && complexity != OLambda, "MinimalLeastSq requires a predefined curve or OAuto, got %q", complexity)

	fit := func(b BigO) LeastSq {
		f := stats.FitCurve(n, times, b.Curve())
		return LeastSq{Complexity: b, Coef: f.Coef, RMS: f.RMS}
	}

	if complexity != OAuto {
		return fit(complexity)
	}

	best := fit(O1)
	for _, candidate := range autoCandidates {
		current := fit(candidate)
		if current.RMS < best.RMS {
			best = current
		}
	}
	return best
}

// ComputeBigO fits the family's per-iteration times against their complexity
// N and returns the complexity record. Fewer than two runs yield nothing.
//
// The CPU series is fitted first; the real-time series reuses the curve the
// CPU fit selected so that both coefficients describe the same shape.
func ComputeBigO(runs []Run, complexity BigO, lambda stats.Curve) []Run {
	if len(runs) < 2 {
		return nil
	}

	n := make([]int64, len(runs))
	realTime := make([]float64, len(runs))
	cpuTime := make([]float64, len(runs))
	for i, run := range runs {
		n[i] = run.ComplexityN
		realTime[i] = run.RealAccumulatedTime / float64(run.Iterations)
		cpuTime[i] = run.CPUAccumulatedTime / float64(run.Iterations)
	}

	var cpuFit, realFit LeastSq
	if complexity == OLambda {
		check(lambda != nil, "complexity f(N) requires a curve function")
		c := stats.FitCurve(n, cpuTime, lambda)
		r := stats.FitCurve(n, realTime, lambda)
		cpuFit = LeastSq{Complexity: OLambda, Coef: c.Coef, RMS: c.RMS}
		realFit = LeastSq{Complexity: OLambda, Coef: r.Coef, RMS: r.RMS}
	} else {
		cpuFit = MinimalLeastSq(n, cpuTime, complexity)
		realFit = MinimalLeastSq(n, realTime, cpuFit.Complexity)
	}

	familyName, _, _ := strings.Cut(runs[0].Name, "/")
	unit := runs[0].TimeUnit
	multiplier := unit.Multiplier()

	return []Run{{
		Name:             familyName + "_BigO",
		Kind:             KindComplexity,
		TimeUnit:         unit,
		Complexity:       cpuFit.Complexity,
		ComplexityString: cpuFit.Complexity.String(),
		BigO: &BigOCoefficients{
			RealTime: removeNegZero(realFit.Coef),
			CPUTime:  removeNegZero(cpuFit.Coef),
		},
		RMS: &RMS{
			RealTime: realFit.RMS / multiplier,
			CPUTime:  cpuFit.RMS / multiplier,
		},
	}}
}
