// Package timer provides the per-thread stopwatch used while a benchmark body
// executes.
//
// A Timer accumulates three independent quantities across any number of
// Start/Stop intervals:
//   - real (wall-clock) time, read from the monotonic clock,
//   - CPU time consumed by the calling OS thread,
//   - manual time, reported explicitly by the benchmark body.
//
// A Timer is owned by exactly one goroutine and is not safe for concurrent use.
// For the CPU figure to be meaningful the owning goroutine should be locked to
// its OS thread (see runtime.LockOSThread) for the lifetime of the Timer.
package timer

import (
	"time"
)

// Clock is the source of time readings for a Timer.
type Clock interface {
	// Now returns a monotonic wall-clock reading.
	Now() time.Duration
	// ThreadCPU returns the CPU time consumed so far by the calling OS thread.
	ThreadCPU() time.Duration
}

// Timer is a stopwatch measuring real, thread CPU and manual time in seconds.
type Timer struct {
	clock   Clock
	running bool

	// Readings captured by the last Start call.
	startReal time.Duration
	startCPU  time.Duration

	// Accumulated values in seconds.
	realTimeUsed   float64
	cpuTimeUsed    float64
	manualTimeUsed float64
}

// New returns a stopped Timer that reads the system clocks.
func New() *Timer {
	return NewWithClock(SystemClock{})
}

// NewWithClock returns a stopped Timer that reads the given clock.
func NewWithClock(clock Clock) *Timer {
	return &Timer{clock: clock}
}

// Start begins a timing interval. It panics if the timer is already running.
func (t *Timer) Start() {
	if t.running {
		panic("timer: Start called on a running timer")
	}

	t.running = true
	t.startReal = t.clock.Now()
	t.startCPU = t.clock.ThreadCPU()
}

// Stop ends the current timing interval and accumulates its real and CPU time.
// It panics if the timer is not running.
//
// Some platforms report a thread CPU reading slightly behind a previous one,
// so the CPU delta is clamped at zero.
func (t *Timer) Stop() {
	if !t.running {
		panic("timer: Stop called on a stopped timer")
	}
	t.running = false

	t.realTimeUsed += (t.clock.Now() - t.startReal).Seconds()
	t.cpuTimeUsed += max(t.clock.ThreadCPU()-t.startCPU, 0).Seconds()
}

// SetIterationTime adds an explicitly measured duration, in seconds, to the
// manual time accumulator.
func (t *Timer) SetIterationTime(seconds float64) {
	t.manualTimeUsed += seconds
}

// Running reports whether a timing interval is open.
func (t *Timer) Running() bool {
	return t.running
}

// RealTimeUsed returns the accumulated wall-clock time in seconds.
// It panics if the timer is running.
func (t *Timer) RealTimeUsed() float64 {
	t.mustBeStopped("RealTimeUsed")
	return t.realTimeUsed
}

// CPUTimeUsed returns the accumulated thread CPU time in seconds.
// It panics if the timer is running.
func (t *Timer) CPUTimeUsed() float64 {
	t.mustBeStopped("CPUTimeUsed")
	return t.cpuTimeUsed
}

// ManualTimeUsed returns the accumulated manual time in seconds.
// It panics if the timer is running.
func (t *Timer) ManualTimeUsed() float64 {
	t.mustBeStopped("ManualTimeUsed")
	return t.manualTimeUsed
}

func (t *Timer) mustBeStopped(method string) {
	if t.running {
		panic("timer: " + method + " called on a running timer")
	}
}
