//go:build linux || darwin

package timer

import (
	"time"

	"golang.org/x/sys/unix"
)

// ThreadCPUUsage returns the CPU time consumed by the calling OS thread.
//
// The value is only meaningful when the calling goroutine is locked to its
// thread. If the clock cannot be read, the process CPU usage is returned.
func ThreadCPUUsage() time.Duration {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_THREAD_CPUTIME_ID, &ts); err != nil {
		return ProcessCPUUsage()
	}
	return time.Duration(ts.Nano())
}

// ProcessCPUUsage returns the user plus system CPU time consumed by the process.
func ProcessCPUUsage() time.Duration {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	return time.Duration(ru.Utime.Nano() + ru.Stime.Nano())
}
