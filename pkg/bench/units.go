package bench

import (
	"fmt"
	"math"
)

// TimeUnit is the unit in which a benchmark's times are reported.
type TimeUnit string

const (
	Nanosecond  TimeUnit = "ns"
	Microsecond TimeUnit = "us"
	Millisecond TimeUnit = "ms"
	Second      TimeUnit = "s"
)

// Multiplier returns the factor converting seconds into the unit.
func (u TimeUnit) Multiplier() float64 {
	switch u {
	case Nanosecond:
		return 1e9
	case Microsecond:
		return 1e6
	case Millisecond:
		return 1e3
	case Second:
		return 1
	default:
		panic(fmt.Sprintf("bench: unknown time unit %q", string(u)))
	}
}

// Valid reports whether u is one of the known units.
func (u TimeUnit) Valid() bool {
	switch u {
	case Nanosecond, Microsecond, Millisecond, Second:
		return true
	}
	return false
}

// check panics when a caller violates a documented contract.
func check(cond bool, format string, args ...any) {
	if !cond {
		panic("bench: " + fmt.Sprintf(format, args...))
	}
}

// epsilon is the smallest relative difference treated as non-zero.
const epsilon = 2.220446049250313e-16

// isZero reports whether v is zero within floating point tolerance.
func isZero(v float64) bool {
	return math.Abs(v) < epsilon
}

// removeNegZero normalizes -0 to +0 so that reports never print "-0".
func removeNegZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}
