package timer

import (
	"time"
)

// epoch anchors SystemClock.Now so that readings carry the monotonic component.
var epoch = time.Now()

// SystemClock reads the process monotonic clock and the calling thread's CPU clock.
type SystemClock struct{}

// Now returns the monotonic time elapsed since package initialization.
func (SystemClock) Now() time.Duration {
	return time.Since(epoch)
}

// ThreadCPU returns the CPU time consumed by the calling OS thread.
func (SystemClock) ThreadCPU() time.Duration {
	return ThreadCPUUsage()
}
