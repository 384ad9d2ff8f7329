package bench

import (
	"github.com/shivanshkc/ubench/pkg/stats"
)

// Statistic is a named reducer applied across the repetitions of an instance.
type Statistic struct {
	Name    string
	Compute stats.Reducer
}

// DefaultStatistics returns the statistics every family computes unless told
// otherwise: mean, median and standard deviation.
func DefaultStatistics() []Statistic {
	return []Statistic{
		{Name: "mean", Compute: stats.Mean},
		{Name: "median", Compute: stats.Median},
		{Name: "stddev", Compute: stats.StdDev},
	}
}

// ComputeStats aggregates the repetitions of one instance into one record per
// statistic. Error runs are ignored; with fewer than two successful runs
// nothing is produced.
//
// All successful runs must carry the same counters with the same flags.
func ComputeStats(runs []Run, statistics []Statistic) []Run {
	var ok []Run
	for _, run := range runs {
		if run.Kind != KindError {
			ok = append(ok, run)
		}
	}
	if len(ok) < 2 {
		return nil
	}

	first := ok[0]
	realTimes := make([]float64, 0, len(ok))
	cpuTimes := make([]float64, 0, len(ok))
	counterValues := make(map[string][]float64, len(first.Counters))
	label := first.Label

	for _, run := range ok {
		check(first.Counters.SameFlags(run.Counters), "runs of %q disagree on their counters", first.Name)

		realTimes = append(realTimes, run.RealAccumulatedTime)
		cpuTimes = append(cpuTimes, run.CPUAccumulatedTime)
		for name, counter := range run.Counters {
			counterValues[name] = append(counterValues[name], counter.Value)
		}

		// A label survives only if every repetition agrees on it.
		if run.Label != label {
			label = ""
		}
	}

	out := make([]Run, 0, len(statistics))
	for _, stat := range statistics {
		record := Run{
			Name:       first.Name + "_" + stat.Name,
			Kind:       KindStatistic,
			Iterations: first.Iterations,
			Threads:    first.Threads,
			TimeUnit:   first.TimeUnit,
			Label:      label,

			RealAccumulatedTime: removeNegZero(stat.Compute(realTimes)),
			CPUAccumulatedTime:  removeNegZero(stat.Compute(cpuTimes)),
		}
		if record.Iterations > 0 {
			record.RealIterationTime = record.RealAccumulatedTime / float64(record.Iterations)
			record.CPUIterationTime = record.CPUAccumulatedTime / float64(record.Iterations)
		}

		if len(first.Counters) > 0 {
			record.Counters = make(Counters, len(first.Counters))
			for name, counter := range first.Counters {
				record.Counters[name] = Counter{
					Value: removeNegZero(stat.Compute(counterValues[name])),
					Flags: counter.Flags,
				}
			}
		}

		out = append(out, record)
	}
	return out
}
