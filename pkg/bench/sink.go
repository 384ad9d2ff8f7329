package bench

import (
	"runtime"
)

// DoNotOptimize keeps v alive so that the compiler cannot drop the
// computation that produced it.
func DoNotOptimize[T any](v T) {
	runtime.KeepAlive(v)
}
