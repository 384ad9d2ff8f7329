// Package suite holds the demonstration benchmarks shipped with the ubench
// binary. Each family shows a different feature of the engine.
package suite

import (
	"crypto/sha256"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shivanshkc/ubench/pkg/bench"
	"github.com/shivanshkc/ubench/pkg/stats"
)

// Register adds every demonstration family to reg.
func Register(reg *bench.Registry) {
	reg.Register("BM_Sort", sortInts).
		RangeMultiplier(4).Range(16, 16<<10).
		Complexity(bench.ONLogN)

	reg.Register("BM_MapInsert", mapInsert).
		Range(8, 8<<10).
		Complexity(bench.OAuto)

	reg.Register("BM_Copy", copyBytes).
		Range(8, 64<<10)

	reg.Register("BM_SHA256", hashBytes).
		ArgName("size").Arg(1 << 10).Arg(64 << 10).
		Unit(bench.Microsecond)

	reg.Register("BM_AtomicIncrement", atomicIncrement).
		ThreadRange(1, 8)

	reg.Register("BM_MutexIncrement", mutexIncrement).
		ThreadPerCPU().
		UseRealTime()

	reg.Register("BM_Sleep", sleep).
		ArgName("us").Arg(50).Arg(200).
		Unit(bench.Microsecond).
		UseManualTime().
		Iterations(200)

	reg.Register("BM_Counters", countEvens).
		Arg(1 << 10).
		Threads(2)

	reg.Register("BM_Fibonacci", fibonacci).
		ArgName("n").DenseRange(10, 20, 5).
		Repetitions(3).
		ReportAggregatesOnly(true).
		ComputeStatistics("max", stats.Maximum)

	reg.Register("BM_Chunked", chunked).
		ArgName("chunk").DenseRange(0, 2, 1)
}

func sortInts(st *bench.State) {
	n := st.Range(0)
	data := make([]int, n)
	for i := range data {
		data[i] = rand.IntN(int(n))
	}
	work := make([]int, n)

	for st.KeepRunning() {
		copy(work, data)
		slices.Sort(work)
	}
	st.SetComplexityN(n)
	st.SetItemsProcessed(st.Iterations() * n)
}

func mapInsert(st *bench.State) {
	n := st.Range(0)
	for st.KeepRunning() {
		m := make(map[int64]int64)
		for i := int64(0); i < n; i++ {
			m[i] = i
		}
		bench.DoNotOptimize(m)
	}
	st.SetComplexityN(n)
}

func copyBytes(st *bench.State) {
	n := st.Range(0)
	src := make([]byte, n)
	dst := make([]byte, n)
	for i := range src {
		src[i] = byte(i)
	}

	for range st.Loop() {
		copy(dst, src)
	}
	st.SetBytesProcessed(st.Iterations() * n)
}

func hashBytes(st *bench.State) {
	n := st.Range(0)
	data := make([]byte, n)

	for range st.Loop() {
		sum := sha256.Sum256(data)
		bench.DoNotOptimize(sum)
	}
	st.SetBytesProcessed(st.Iterations() * n)
}

// sharedCounter is contended by every thread of BM_AtomicIncrement.
var sharedCounter atomic.Int64

func atomicIncrement(st *bench.State) {
	for range st.Loop() {
		sharedCounter.Add(1)
	}
	st.SetItemsProcessed(st.Iterations())
}

var (
	sharedMu    sync.Mutex
	sharedValue int64
)

func mutexIncrement(st *bench.State) {
	for range st.Loop() {
		sharedMu.Lock()
		sharedValue++
		sharedMu.Unlock()
	}
	st.SetItemsProcessed(st.Iterations())
}

func sleep(st *bench.State) {
	d := time.Duration(st.Range(0)) * time.Microsecond
	for range st.Loop() {
		start := time.Now()
		time.Sleep(d)
		st.SetIterationTime(time.Since(start).Seconds())
	}
}

func countEvens(st *bench.State) {
	n := st.Range(0)
	var evens int64
	for range st.Loop() {
		for i := int64(0); i < n; i++ {
			if i%2 == 0 {
				evens++
			}
		}
	}
	st.Counters["evens"] = bench.Counter{Value: float64(evens), Flags: bench.CounterAvgThreads}
	st.Counters["evens_rate"] = bench.Counter{Value: float64(evens), Flags: bench.CounterIsRate}
	st.SetLabel("half of every range")
}

func fibonacci(st *bench.State) {
	n := int(st.Range(0))
	for range st.Loop() {
		bench.DoNotOptimize(fib(n))
	}
}

func fib(n int) int {
	if n < 2 {
		return n
	}
	return fib(n-1) + fib(n-2)
}

// chunked sums a buffer chunk by chunk. A zero chunk size cannot make progress.
func chunked(st *bench.State) {
	size := int(st.Range(0))
	if size == 0 {
		st.SkipWithError("chunk size must be positive")
		return
	}

	data := make([]byte, 4096)
	for range st.Loop() {
		var sum int
		for start := 0; start < len(data); start += size {
			for _, b := range data[start:min(start+size, len(data))] {
				sum += int(b)
			}
		}
		bench.DoNotOptimize(sum)
	}
}
