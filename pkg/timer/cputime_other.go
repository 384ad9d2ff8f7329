//go:build !linux && !darwin

package timer

import (
	"time"
)

// ThreadCPUUsage falls back to the monotonic wall clock on platforms without a
// per-thread CPU clock.
func ThreadCPUUsage() time.Duration {
	return time.Since(epoch)
}

// ProcessCPUUsage falls back to the monotonic wall clock on platforms without
// getrusage.
func ProcessCPUUsage() time.Duration {
	return time.Since(epoch)
}
