package bench

import (
	"sync"
	"sync/atomic"

	"github.com/shivanshkc/ubench/pkg/barrier"
)

// attemptResult accumulates the measurements of every thread of one attempt.
type attemptResult struct {
	cpuTimeUsed    float64
	realTimeUsed   float64
	manualTimeUsed float64

	bytesProcessed int64
	itemsProcessed int64
	complexityN    int64

	label        string
	errorMessage string
	hasError     bool
	counters     Counters
}

// threadManager coordinates the threads of one attempt.
//
// Two locks are involved: mu guards the shared result, endMu guards the
// completion signal. They are never held together.
type threadManager struct {
	mu      sync.Mutex
	results attemptResult

	alive   atomic.Int64
	barrier *barrier.Barrier

	endMu   sync.Mutex
	endCond *sync.Cond
}

func newThreadManager(threads int) *threadManager {
	m := &threadManager{
		barrier: barrier.New(threads),
		results: attemptResult{counters: Counters{}},
	}
	m.alive.Store(int64(threads))
	m.endCond = sync.NewCond(&m.endMu)
	return m
}

// startStopBarrier blocks until every live thread reached the loop boundary.
func (m *threadManager) startStopBarrier() bool {
	return m.barrier.Wait()
}

// notifyThreadComplete is called by each thread once its body returned.
func (m *threadManager) notifyThreadComplete() {
	m.barrier.RemoveThread()
	if m.alive.Add(-1) != 0 {
		return
	}

	m.endMu.Lock()
	defer m.endMu.Unlock()
	m.endCond.Broadcast()
}

// waitForAllThreads blocks until every thread called notifyThreadComplete.
func (m *threadManager) waitForAllThreads() {
	m.endMu.Lock()
	defer m.endMu.Unlock()

	for m.alive.Load() != 0 {
		m.endCond.Wait()
	}
}

// merge adds one thread's measurements to the shared result.
func (m *threadManager) merge(st *State, t threadTimes) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.results.cpuTimeUsed += t.cpu
	m.results.realTimeUsed += t.real
	m.results.manualTimeUsed += t.manual
	m.results.bytesProcessed += st.bytesProcessed
	m.results.itemsProcessed += st.itemsProcessed
	m.results.complexityN += st.complexityN
	m.results.counters.Increment(st.Counters)
}

func (m *threadManager) setError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.results.hasError {
		m.results.errorMessage = msg
		m.results.hasError = true
	}
}

func (m *threadManager) setLabel(label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results.label = label
}

// snapshot returns a copy of the accumulated result.
func (m *threadManager) snapshot() attemptResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.results
	out.counters = m.results.counters.clone()
	return out
}

// threadTimes are the timer readings of one thread.
type threadTimes struct {
	cpu, real, manual float64
}
