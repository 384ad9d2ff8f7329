package bench

import (
	"github.com/shivanshkc/ubench/pkg/timer"
)

// Func is the body of a benchmark. It must drive the measurement loop:
//
//	func BenchmarkSort(st *bench.State) {
//		for st.KeepRunning() {
//			...
//		}
//	}
type Func func(st *State)

// State is the handle a benchmark body uses to drive the measurement loop and
// to report what it did. Each thread of an attempt gets its own State.
//
// A State must only be used by the goroutine that received it.
type State struct {
	// Counters holds user-defined measurements. They are summed across threads
	// and finalized according to their flags.
	Counters Counters

	// totalIterations counts down from maxIterations+1; the loop ends when it
	// reaches zero.
	totalIterations int64
	maxIterations   int64

	started       bool
	finished      bool
	errorOccurred bool

	bytesProcessed int64
	itemsProcessed int64
	complexityN    int64

	args        []int64
	threadIndex int
	threads     int

	timer   *timer.Timer
	manager *threadManager
}

func newState(maxIterations int64, args []int64, threadIndex, threads int, t *timer.Timer, m *threadManager) *State {
	check(maxIterations > 0, "at least one iteration must be run")
	check(threadIndex < threads, "thread index %d out of range for %d threads", threadIndex, threads)

	return &State{
		Counters:        Counters{},
		totalIterations: maxIterations + 1,
		maxIterations:   maxIterations,
		args:            args,
		threadIndex:     threadIndex,
		threads:         threads,
		timer:           t,
		manager:         m,
	}
}

// KeepRunning reports whether the benchmark body should execute another
// iteration. The first call synchronizes all threads and starts timing; the
// call that returns false stops timing and synchronizes them again.
func (s *State) KeepRunning() bool {
	if !s.started {
		s.startKeepRunning()
	}

	s.totalIterations--
	if s.totalIterations != 0 {
		return true
	}

	s.finishKeepRunning()
	return false
}

// errLoopExited is the error message of an attempt whose body broke out of Loop.
const errLoopExited = "benchmark loop exited before it was finished"

// Loop is a range-over-func form of the KeepRunning loop:
//
//	for range st.Loop() {
//		...
//	}
//
// Breaking out of the loop fails the attempt with an error, as the iterations
// it was timed for were never run.
func (s *State) Loop() func(yield func() bool) {
	return func(yield func() bool) {
		for s.KeepRunning() {
			if !yield() {
				// Stops the clock and ends the loop at the next call, releasing
				// the other threads from the barrier.
				s.SkipWithError(errLoopExited)
				s.KeepRunning()
				return
			}
		}
	}
}

func (s *State) startKeepRunning() {
	check(!s.started && !s.finished, "KeepRunning loop started twice")
	s.started = true

	s.manager.startStopBarrier()
	if !s.errorOccurred {
		s.ResumeTiming()
	}
}

func (s *State) finishKeepRunning() {
	check(s.started && (!s.finished || s.errorOccurred), "KeepRunning loop finished twice")
	if !s.errorOccurred {
		s.PauseTiming()
	}

	// The countdown has reached zero; park it so that Iterations reports the full count.
	s.totalIterations = 1
	s.finished = true
	s.manager.startStopBarrier()
}

// PauseTiming stops the clock while the body does work that must not be measured.
func (s *State) PauseTiming() {
	check(s.started && !s.finished && !s.errorOccurred, "PauseTiming called outside of a running loop")
	s.timer.Stop()
}

// ResumeTiming restarts the clock after PauseTiming.
func (s *State) ResumeTiming() {
	check(s.started && !s.finished && !s.errorOccurred, "ResumeTiming called outside of a running loop")
	s.timer.Start()
}

// SkipWithError marks the attempt as failed with the given message. The first
// error of an attempt wins. The loop ends at the next KeepRunning call, or
// never starts if it has not started yet.
func (s *State) SkipWithError(msg string) {
	s.errorOccurred = true
	s.manager.setError(msg)

	s.totalIterations = 1
	if s.timer.Running() {
		s.timer.Stop()
	}
}

// SetIterationTime reports the duration, in seconds, of the current iteration
// for benchmarks using manual timing.
func (s *State) SetIterationTime(seconds float64) {
	s.timer.SetIterationTime(seconds)
}

// SetLabel attaches a free-form label to the attempt's record.
func (s *State) SetLabel(label string) {
	s.manager.setLabel(label)
}

// SetBytesProcessed records the number of bytes this thread processed. The
// report derives a bytes-per-second rate from it.
func (s *State) SetBytesProcessed(bytes int64) {
	s.bytesProcessed = bytes
}

// BytesProcessed returns the value last passed to SetBytesProcessed.
func (s *State) BytesProcessed() int64 {
	return s.bytesProcessed
}

// SetItemsProcessed records the number of items this thread processed. The
// report derives an items-per-second rate from it.
func (s *State) SetItemsProcessed(items int64) {
	s.itemsProcessed = items
}

// ItemsProcessed returns the value last passed to SetItemsProcessed.
func (s *State) ItemsProcessed() int64 {
	return s.itemsProcessed
}

// SetComplexityN records the problem size used for complexity fitting.
func (s *State) SetComplexityN(n int64) {
	s.complexityN = n
}

// ComplexityN returns the value last passed to SetComplexityN.
func (s *State) ComplexityN() int64 {
	return s.complexityN
}

// Range returns the i-th argument of the instance. It panics if the instance
// has fewer arguments.
func (s *State) Range(i int) int64 {
	check(i >= 0 && i < len(s.args), "argument %d requested but the instance has %d", i, len(s.args))
	return s.args[i]
}

// ThreadIndex returns the index of the calling thread, in [0, Threads()).
func (s *State) ThreadIndex() int {
	return s.threadIndex
}

// Threads returns the number of threads running the attempt.
func (s *State) Threads() int {
	return s.threads
}

// MaxIterations returns the number of iterations requested for this attempt.
func (s *State) MaxIterations() int64 {
	return s.maxIterations
}

// Iterations returns the number of iterations started so far.
func (s *State) Iterations() int64 {
	return s.maxIterations - s.totalIterations + 1
}

// ErrorOccurred reports whether SkipWithError was called on this State.
func (s *State) ErrorOccurred() bool {
	return s.errorOccurred
}
