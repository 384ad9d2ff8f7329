package bench_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivanshkc/ubench/pkg/bench"
	"github.com/shivanshkc/ubench/pkg/stats"
)

func normalRun(cpu, real float64) bench.Run {
	return bench.Run{
		Name:                "BM/8",
		Kind:                bench.KindNormal,
		Iterations:          10,
		TimeUnit:            bench.Nanosecond,
		CPUAccumulatedTime:  cpu,
		RealAccumulatedTime: real,
		Label:               "label",
	}
}

func TestComputeStats(t *testing.T) {
	t.Run("Fewer than two successful runs produce nothing", func(t *testing.T) {
		runs := []bench.Run{normalRun(1, 1), {Name: "BM/8", Kind: bench.KindError}}
		assert.Empty(t, bench.ComputeStats(runs, bench.DefaultStatistics()))
		assert.Empty(t, bench.ComputeStats(nil, bench.DefaultStatistics()))
	})

	t.Run("Default statistics", func(t *testing.T) {
		runs := []bench.Run{normalRun(10, 20), normalRun(20, 40), normalRun(30, 60)}
		out := bench.ComputeStats(runs, bench.DefaultStatistics())
		require.Len(t, out, 3)

		mean, median, stddev := out[0], out[1], out[2]
		assert.Equal(t, "BM/8_mean", mean.Name)
		assert.Equal(t, "BM/8_median", median.Name)
		assert.Equal(t, "BM/8_stddev", stddev.Name)

		assert.Equal(t, bench.KindStatistic, mean.Kind)
		assert.Equal(t, int64(10), mean.Iterations)
		assert.Equal(t, bench.Nanosecond, mean.TimeUnit)
		assert.Equal(t, "label", mean.Label)

		assert.InDelta(t, 20.0, mean.CPUAccumulatedTime, 1e-12)
		assert.InDelta(t, 40.0, mean.RealAccumulatedTime, 1e-12)
		assert.InDelta(t, 2.0, mean.CPUIterationTime, 1e-12)
		assert.InDelta(t, 20.0, median.CPUAccumulatedTime, 1e-12)
		assert.InDelta(t, 10.0, stddev.CPUAccumulatedTime, 1e-9)
	})

	t.Run("Error runs are ignored", func(t *testing.T) {
		runs := []bench.Run{normalRun(10, 10), {Name: "BM/8", Kind: bench.KindError}, normalRun(30, 30)}
		out := bench.ComputeStats(runs, []bench.Statistic{{Name: "mean", Compute: stats.Mean}})
		require.Len(t, out, 1)
		assert.InDelta(t, 20.0, out[0].CPUAccumulatedTime, 1e-12)
	})

	t.Run("Differing labels are dropped", func(t *testing.T) {
		other := normalRun(1, 1)
		other.Label = "other"
		out := bench.ComputeStats([]bench.Run{normalRun(1, 1), other}, bench.DefaultStatistics())
		require.NotEmpty(t, out)
		assert.Empty(t, out[0].Label)
	})

	t.Run("Counters are reduced with their flags", func(t *testing.T) {
		first, second := normalRun(1, 1), normalRun(1, 1)
		first.Counters = bench.Counters{"hits": {Value: 2, Flags: bench.CounterIsRate}}
		second.Counters = bench.Counters{"hits": {Value: 4, Flags: bench.CounterIsRate}}

		out := bench.ComputeStats([]bench.Run{first, second}, []bench.Statistic{{Name: "max", Compute: stats.Maximum}})
		require.Len(t, out, 1)
		assert.Equal(t, "BM/8_max", out[0].Name)
		assert.Equal(t, bench.Counter{Value: 4, Flags: bench.CounterIsRate}, out[0].Counters["hits"])
	})

	t.Run("Mismatched counter flags panic", func(t *testing.T) {
		first, second := normalRun(1, 1), normalRun(1, 1)
		first.Counters = bench.Counters{"hits": {Value: 2, Flags: bench.CounterIsRate}}
		second.Counters = bench.Counters{"hits": {Value: 4}}
		assert.Panics(t, func() { bench.ComputeStats([]bench.Run{first, second}, bench.DefaultStatistics()) })
	})

	t.Run("Identical runs have no negative zero deviation", func(t *testing.T) {
		out := bench.ComputeStats([]bench.Run{normalRun(5, 5), normalRun(5, 5)}, bench.DefaultStatistics())
		require.Len(t, out, 3)
		assert.False(t, math.Signbit(out[2].CPUAccumulatedTime))
	})
}

func TestCounters(t *testing.T) {
	t.Run("Increment sums values and keeps flags", func(t *testing.T) {
		c := bench.Counters{"a": {Value: 1, Flags: bench.CounterIsRate}}
		c.Increment(bench.Counters{"a": {Value: 2, Flags: bench.CounterIsRate}, "b": {Value: 5}})

		assert.Equal(t, bench.Counter{Value: 3, Flags: bench.CounterIsRate}, c["a"])
		assert.Equal(t, bench.Counter{Value: 5}, c["b"])
	})

	t.Run("Finish applies rates and thread averages", func(t *testing.T) {
		c := bench.Counters{
			"plain": {Value: 8},
			"rate":  {Value: 8, Flags: bench.CounterIsRate},
			"avg":   {Value: 8, Flags: bench.CounterAvgThreads},
			"both":  {Value: 8, Flags: bench.CounterAvgThreadsRate},
		}
		c.Finish(2, 4)

		assert.InDelta(t, 8.0, c["plain"].Value, 1e-12)
		assert.InDelta(t, 4.0, c["rate"].Value, 1e-12)
		assert.InDelta(t, 2.0, c["avg"].Value, 1e-12)
		assert.InDelta(t, 1.0, c["both"].Value, 1e-12)
	})

	t.Run("SameFlags", func(t *testing.T) {
		a := bench.Counters{"x": {Value: 1, Flags: bench.CounterIsRate}}
		assert.True(t, a.SameFlags(bench.Counters{"x": {Value: 9, Flags: bench.CounterIsRate}}))
		assert.False(t, a.SameFlags(bench.Counters{"x": {Value: 1}}))
		assert.False(t, a.SameFlags(bench.Counters{"y": {Value: 1, Flags: bench.CounterIsRate}}))
		assert.False(t, a.SameFlags(nil))
	})
}
