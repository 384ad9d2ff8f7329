package bench

import (
	"math"

	"github.com/shivanshkc/ubench/pkg/stats"
)

// Benchmark configures a registered family. Every method returns the
// receiver so that calls can be chained:
//
//	reg.Register("BM_Sort", sortBody).RangeMultiplier(2).Range(1<<4, 1<<12).Complexity(bench.ONLogN)
//
// Methods panic when a call contradicts the family's existing configuration,
// for example when the argument count of Args differs from earlier calls.
type Benchmark struct {
	registry *Registry
	handle   FamilyHandle
}

// Handle returns the family's handle.
func (b *Benchmark) Handle() FamilyHandle {
	return b.handle
}

func (b *Benchmark) update(fn func(f *family)) *Benchmark {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()

	check(b.handle.Generation == b.registry.generation, "benchmark configured after the registry was cleared")
	fn(&b.registry.families[b.handle.Index])
	return b
}

// Arg adds an instance with the single argument x.
func (b *Benchmark) Arg(x int64) *Benchmark {
	return b.update(func(f *family) {
		check(f.argsCount() == -1 || f.argsCount() == 1, "%s: Arg used with %d arguments per instance", f.name, f.argsCount())
		f.args = append(f.args, []int64{x})
	})
}

// Args adds an instance with the given arguments.
func (b *Benchmark) Args(args ...int64) *Benchmark {
	return b.update(func(f *family) {
		check(f.argsCount() == -1 || f.argsCount() == len(args),
			"%s: Args used with %d arguments, expected %d", f.name, len(args), f.argsCount())
		f.args = append(f.args, append([]int64(nil), args...))
	})
}

// Range adds single-argument instances spanning [start, limit]: start,
// every power of the range multiplier strictly in between, and limit.
func (b *Benchmark) Range(start, limit int64) *Benchmark {
	return b.update(func(f *family) {
		check(f.argsCount() == -1 || f.argsCount() == 1, "%s: Range used with %d arguments per instance", f.name, f.argsCount())
		for _, arg := range addRange(start, limit, f.rangeMultiplier) {
			f.args = append(f.args, []int64{arg})
		}
	})
}

// DenseRange adds single-argument instances start, start+step, ... up to limit.
func (b *Benchmark) DenseRange(start, limit, step int64) *Benchmark {
	return b.update(func(f *family) {
		check(f.argsCount() == -1 || f.argsCount() == 1, "%s: DenseRange used with %d arguments per instance", f.name, f.argsCount())
		check(start <= limit, "%s: DenseRange start %d above limit %d", f.name, start, limit)
		check(step > 0, "%s: DenseRange step must be positive", f.name)
		for arg := start; arg <= limit; arg += step {
			f.args = append(f.args, []int64{arg})
		}
	})
}

// Ranges adds the cartesian product of several ranges, each expanded as in
// Range. The first range varies fastest.
func (b *Benchmark) Ranges(ranges ...[2]int64) *Benchmark {
	return b.update(func(f *family) {
		check(f.argsCount() == -1 || f.argsCount() == len(ranges),
			"%s: Ranges used with %d ranges, expected %d", f.name, len(ranges), f.argsCount())

		lists := make([][]int64, len(ranges))
		total := 1
		for i, r := range ranges {
			lists[i] = addRange(r[0], r[1], f.rangeMultiplier)
			total *= len(lists[i])
		}

		counters := make([]int, len(lists))
		for range total {
			args := make([]int64, len(lists))
			for j, list := range lists {
				args[j] = list[counters[j]]
			}
			f.args = append(f.args, args)

			// Advance like an odometer with the first position as the fastest digit.
			for j := range counters {
				if counters[j]+1 < len(lists[j]) {
					counters[j]++
					break
				}
				counters[j] = 0
			}
		}
	})
}

// ArgName names the single argument in instance names ("BM/size:64").
func (b *Benchmark) ArgName(name string) *Benchmark {
	return b.update(func(f *family) {
		check(f.argsCount() == -1 || f.argsCount() == 1, "%s: ArgName used with %d arguments per instance", f.name, f.argsCount())
		f.argNames = []string{name}
	})
}

// ArgNames names every argument in instance names.
func (b *Benchmark) ArgNames(names ...string) *Benchmark {
	return b.update(func(f *family) {
		check(f.argsCount() == -1 || f.argsCount() == len(names),
			"%s: ArgNames used with %d names, expected %d", f.name, len(names), f.argsCount())
		f.argNames = append([]string(nil), names...)
	})
}

// RangeMultiplier sets the spacing used by subsequent Range and Ranges calls.
func (b *Benchmark) RangeMultiplier(multiplier int) *Benchmark {
	return b.update(func(f *family) {
		check(multiplier > 1, "%s: range multiplier must be greater than 1", f.name)
		f.rangeMultiplier = multiplier
	})
}

// Apply passes the builder to a custom configuration function.
func (b *Benchmark) Apply(fn func(*Benchmark)) *Benchmark {
	fn(b)
	return b
}

// Unit sets the unit in which the family's times are reported.
func (b *Benchmark) Unit(unit TimeUnit) *Benchmark {
	return b.update(func(f *family) {
		check(unit.Valid(), "%s: unknown time unit %q", f.name, string(unit))
		f.timeUnit = unit
	})
}

// MinTime overrides the global minimum measuring time, in seconds.
// It cannot be combined with Iterations.
func (b *Benchmark) MinTime(seconds float64) *Benchmark {
	return b.update(func(f *family) {
		check(seconds > 0, "%s: min time must be positive", f.name)
		check(f.iterations == 0, "%s: MinTime cannot be combined with Iterations", f.name)
		f.minTime = seconds
	})
}

// Iterations pins the iteration count, bypassing the adaptive controller.
// It cannot be combined with MinTime.
func (b *Benchmark) Iterations(n int64) *Benchmark {
	return b.update(func(f *family) {
		check(n > 0, "%s: iterations must be positive", f.name)
		check(isZero(f.minTime), "%s: Iterations cannot be combined with MinTime", f.name)
		f.iterations = n
	})
}

// Repetitions overrides the global repetition count.
func (b *Benchmark) Repetitions(n int) *Benchmark {
	return b.update(func(f *family) {
		check(n > 0, "%s: repetitions must be positive", f.name)
		f.repetitions = n
	})
}

// ReportAggregatesOnly overrides the global aggregates-only setting. It only
// has an effect when the family runs more than one repetition.
func (b *Benchmark) ReportAggregatesOnly(enabled bool) *Benchmark {
	return b.update(func(f *family) {
		f.aggregation = aggregationAll
		if enabled {
			f.aggregation = aggregationAggregatesOnly
		}
	})
}

// UseRealTime measures wall-clock time instead of CPU time to decide the
// iteration count and the rates.
func (b *Benchmark) UseRealTime() *Benchmark {
	return b.update(func(f *family) {
		check(!f.useManualTime, "%s: UseRealTime cannot be combined with UseManualTime", f.name)
		f.useRealTime = true
	})
}

// UseManualTime uses the times reported through State.SetIterationTime.
func (b *Benchmark) UseManualTime() *Benchmark {
	return b.update(func(f *family) {
		check(!f.useRealTime, "%s: UseManualTime cannot be combined with UseRealTime", f.name)
		f.useManualTime = true
	})
}

// Complexity enables asymptotic fitting of the family against the given curve,
// or against the best predefined curve with OAuto.
func (b *Benchmark) Complexity(complexity BigO) *Benchmark {
	return b.update(func(f *family) {
		check(complexity != OLambda, "%s: use ComplexityFunc to fit a custom curve", f.name)
		f.complexity = complexity
	})
}

// ComplexityFunc enables asymptotic fitting against a custom curve.
func (b *Benchmark) ComplexityFunc(curve stats.Curve) *Benchmark {
	return b.update(func(f *family) {
		check(curve != nil, "%s: nil complexity curve", f.name)
		f.complexity = OLambda
		f.complexityFunc = curve
	})
}

// ComputeStatistics adds a statistic computed over the repetitions.
func (b *Benchmark) ComputeStatistics(name string, reducer stats.Reducer) *Benchmark {
	return b.update(func(f *family) {
		check(name != "" && reducer != nil, "%s: statistics need a name and a reducer", f.name)
		f.statistics = append(f.statistics, Statistic{Name: name, Compute: reducer})
	})
}

// Threads adds a thread count to run every argument set with.
func (b *Benchmark) Threads(threads int) *Benchmark {
	return b.update(func(f *family) {
		check(threads > 0, "%s: thread count must be positive", f.name)
		f.threadCounts = append(f.threadCounts, threads)
	})
}

// ThreadRange adds the thread counts minThreads, powers of two in between, and maxThreads.
func (b *Benchmark) ThreadRange(minThreads, maxThreads int) *Benchmark {
	return b.update(func(f *family) {
		check(minThreads > 0, "%s: thread count must be positive", f.name)
		check(maxThreads >= minThreads, "%s: thread range is empty", f.name)
		for _, threads := range addRange(int64(minThreads), int64(maxThreads), 2) {
			f.threadCounts = append(f.threadCounts, int(threads))
		}
	})
}

// DenseThreadRange adds the thread counts minThreads, minThreads+stride, ...
// and always maxThreads.
func (b *Benchmark) DenseThreadRange(minThreads, maxThreads, stride int) *Benchmark {
	return b.update(func(f *family) {
		check(minThreads > 0, "%s: thread count must be positive", f.name)
		check(maxThreads >= minThreads, "%s: thread range is empty", f.name)
		check(stride >= 1, "%s: thread stride must be positive", f.name)
		for threads := minThreads; threads < maxThreads; threads += stride {
			f.threadCounts = append(f.threadCounts, threads)
		}
		f.threadCounts = append(f.threadCounts, maxThreads)
	})
}

// ThreadPerCPU adds a thread count equal to the number of logical CPUs.
func (b *Benchmark) ThreadPerCPU() *Benchmark {
	cpus := max(b.registry.info.NumCPUs, 1)
	return b.update(func(f *family) {
		f.threadCounts = append(f.threadCounts, cpus)
	})
}

// addRange returns lo, every power of mult strictly between lo and hi, and hi.
func addRange(lo, hi int64, mult int) []int64 {
	check(lo >= 0, "range start %d is negative", lo)
	check(hi >= lo, "range limit %d is below start %d", hi, lo)
	check(mult >= 2, "range multiplier %d is too small", mult)

	out := []int64{lo}
	for i := int64(1); i < math.MaxInt64/int64(mult); i *= int64(mult) {
		if i >= hi {
			break
		}
		if i > lo {
			out = append(out, i)
		}
	}

	if hi != lo {
		out = append(out, hi)
	}
	return out
}
