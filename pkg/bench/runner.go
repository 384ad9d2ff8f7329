package bench

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/shivanshkc/ubench/pkg/streams"
	"github.com/shivanshkc/ubench/pkg/sysinfo"
	"github.com/shivanshkc/ubench/pkg/timer"
)

// Runner executes benchmark instances and hands their reports to a Reporter.
type Runner struct {
	config   Config
	info     sysinfo.Info
	reporter Reporter
	logger   *slog.Logger
}

// NewRunner creates a Runner. A nil logger means slog.Default().
func NewRunner(config Config, info sysinfo.Info, reporter Reporter, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{config: config, info: info, reporter: reporter, logger: logger}
}

// Run executes every instance in order and reports each of them as soon as
// it completes. It returns the reports that were produced.
//
// Cancellation of ctx is honoured between attempts; an attempt in progress is
// always allowed to finish. The reporter is finalized in every case.
func (r *Runner) Run(ctx context.Context, instances []Instance) ([]InstanceReport, error) {
	if err := r.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run configuration: %w", err)
	}

	if !r.reporter.ReportContext(NewContext(r.info, instances, r.config)) {
		return nil, r.reporter.Finalize()
	}

	var reports []InstanceReport

	stream, streamErr := r.Stream(ctx, instances)
	for report := range stream.All {
		r.reporter.ReportRuns(report)
		reports = append(reports, report)
	}

	if err := r.reporter.Finalize(); err != nil {
		return reports, fmt.Errorf("error while finalizing the reporter: %w", err)
	}
	return reports, streamErr()
}

// Stream returns a lazy stream of reports: each call to Next runs one more
// instance. The stream ends early if an instance cannot complete, for example
// because ctx was canceled; the returned function then reports why.
func (r *Runner) Stream(ctx context.Context, instances []Instance) (*streams.Stream[InstanceReport], func() error) {
	source := streams.FromSlice(instances)

	// Successful runs of complexity-enabled families, keyed by family index.
	complexityRuns := map[int][]Run{}

	var streamErr error
	stream := streams.FromFunc(func() (InstanceReport, bool) {
		if streamErr != nil {
			return InstanceReport{}, false
		}
		inst, ok := source.Next()
		if !ok {
			return InstanceReport{}, false
		}

		report, err := r.runInstance(ctx, inst, complexityRuns)
		if err != nil {
			streamErr = fmt.Errorf("error while running %q: %w", inst.Name, err)
			return InstanceReport{}, false
		}
		return report, true
	})

	return stream, func() error { return streamErr }
}

// runInstance executes all repetitions of one instance.
func (r *Runner) runInstance(ctx context.Context, inst Instance, complexityRuns map[int][]Run) (InstanceReport, error) {
	explicitIterations := inst.Iterations != 0
	iters := int64(1)
	if explicitIterations {
		iters = inst.Iterations
	}

	repetitions := inst.Repetitions
	if repetitions == 0 {
		repetitions = r.config.Repetitions
	}

	minTime := inst.MinTime
	if isZero(minTime) {
		minTime = r.config.MinTime
	}

	report := InstanceReport{
		Name:                 inst.Name,
		Family:               inst.Family.Index,
		Instance:             inst.Key(),
		ReportAggregatesOnly: repetitions != 1 && inst.aggregatesOnly(r.config.ReportAggregatesOnly),
	}

	for repetition := 0; repetition < repetitions; repetition++ {
		for {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			r.logger.Debug("running benchmark", "name", inst.Name, "iterations", iters)
			result := runAttempt(inst, iters)

			seconds := result.cpuTimeUsed
			if inst.UseManualTime {
				seconds = result.manualTimeUsed
			} else if inst.UseRealTime {
				seconds = result.realTimeUsed
			}
			r.logger.Debug("attempt finished", "name", inst.Name,
				"cpu_seconds", result.cpuTimeUsed, "real_seconds", result.realTimeUsed)

			// Keep measuring only while the attempt was too short to trust.
			shouldReport := repetition > 0 ||
				explicitIterations ||
				result.hasError ||
				iters >= MaxIterations ||
				seconds >= minTime ||
				(result.realTimeUsed >= 5*minTime && !inst.UseManualTime)

			if shouldReport {
				run := newRun(inst, result, iters, seconds, repetition)
				if run.Kind != KindError && inst.Complexity != BigONone {
					complexityRuns[inst.Family.Index] = append(complexityRuns[inst.Family.Index], run)
				}
				report.Runs = append(report.Runs, run)
				break
			}

			var multiplier float64
			iters, multiplier = nextIterations(iters, seconds, minTime)
			r.logger.Debug("next iterations", "name", inst.Name, "iterations", iters, "multiplier", multiplier)
		}
	}

	report.Stats = ComputeStats(report.Runs, inst.Statistics)

	if inst.Complexity != BigONone && inst.LastInFamily {
		complexity := ComputeBigO(complexityRuns[inst.Family.Index], inst.Complexity, inst.ComplexityFunc)
		report.Stats = append(report.Stats, complexity...)
		delete(complexityRuns, inst.Family.Index)
	}

	return report, nil
}

// nextIterations predicts the iteration count of the next attempt from the
// duration of the last one. It returns the count and the multiplier applied.
func nextIterations(iters int64, seconds, minTime float64) (int64, float64) {
	// Aim 40% above the minimum time to avoid landing just short of it.
	multiplier := minTime * 1.4 / max(seconds, 1e-9)

	// Extrapolating from a run shorter than 10% of the goal is unreliable.
	if seconds/minTime <= 0.1 {
		multiplier = min(multiplier, 10)
	}
	if multiplier <= 1 {
		multiplier = 2
	}

	next := max(multiplier*float64(iters), float64(iters)+1)
	next = min(next, float64(MaxIterations))
	return int64(next + 0.5), multiplier
}

// runAttempt executes one attempt of iters iterations on every thread of the
// instance. Thread 0 runs on the calling goroutine.
func runAttempt(inst Instance, iters int64) attemptResult {
	manager := newThreadManager(inst.Threads)

	var group errgroup.Group
	for threadIndex := 1; threadIndex < inst.Threads; threadIndex++ {
		group.Go(func() error {
			runInThread(inst, iters, threadIndex, manager)
			return nil
		})
	}
	runInThread(inst, iters, 0, manager)

	manager.waitForAllThreads()
	// Threads report through the manager; the group only joins them.
	_ = group.Wait()

	result := manager.snapshot()
	result.realTimeUsed /= float64(inst.Threads)
	result.manualTimeUsed /= float64(inst.Threads)
	return result
}

// runInThread runs the benchmark body once with a fresh timer and State and
// merges the measurements into the manager.
func runInThread(inst Instance, iters int64, threadIndex int, manager *threadManager) {
	// Thread CPU time is only meaningful if the goroutine stays on one thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	t := timer.New()
	st := newState(iters, inst.Args, threadIndex, inst.Threads, t, manager)
	inst.Func(st)

	// A body that skipped with an error may return without looping.
	check(st.Iterations() == st.MaxIterations() || st.ErrorOccurred(),
		"benchmark %q returned before KeepRunning returned false", inst.Name)

	manager.merge(st, threadTimes{cpu: t.CPUTimeUsed(), real: t.RealTimeUsed(), manual: t.ManualTimeUsed()})
	manager.notifyThreadComplete()
}

// newRun builds the record of an accepted attempt.
func newRun(inst Instance, result attemptResult, iters int64, seconds float64, repetition int) Run {
	iterations := iters * int64(inst.Threads)

	run := Run{
		Name:            inst.Name,
		Kind:            KindNormal,
		Iterations:      iterations,
		Threads:         inst.Threads,
		RepetitionIndex: repetition,
		Label:           result.label,
	}

	if result.hasError {
		run.Kind = KindError
		run.ErrorMessage = result.errorMessage
		return run
	}

	run.TimeUnit = inst.TimeUnit
	multiplier := inst.TimeUnit.Multiplier()

	if result.bytesProcessed > 0 && seconds > 0 {
		run.BytesPerSecond = float64(result.bytesProcessed) / seconds
	}
	if result.itemsProcessed > 0 && seconds > 0 {
		run.ItemsPerSecond = float64(result.itemsProcessed) / seconds
	}

	realTime := result.realTimeUsed
	if inst.UseManualTime {
		realTime = result.manualTimeUsed
	}
	run.RealAccumulatedTime = removeNegZero(realTime * multiplier)
	run.RealIterationTime = run.RealAccumulatedTime / float64(iterations)
	run.CPUAccumulatedTime = removeNegZero(result.cpuTimeUsed * multiplier)
	run.CPUIterationTime = run.CPUAccumulatedTime / float64(iterations)

	run.ComplexityN = result.complexityN
	run.Complexity = inst.Complexity

	if len(result.counters) > 0 {
		run.Counters = result.counters
		run.Counters.Finish(seconds, inst.Threads)
	}
	return run
}
