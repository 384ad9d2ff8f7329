package report_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivanshkc/ubench/pkg/bench"
	"github.com/shivanshkc/ubench/pkg/compare"
	"github.com/shivanshkc/ubench/pkg/report"
	"github.com/shivanshkc/ubench/pkg/sysinfo"
)

func testContext() bench.Context {
	return bench.Context{
		Info: sysinfo.Info{
			NumCPUs:        4,
			MHzPerCPU:      3000,
			BrandName:      "Test CPU",
			Caches:         []sysinfo.Cache{{Type: "Data", Level: 1, Size: 32 * 1024}},
			ScalingEnabled: true,
		},
		Date:           time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		RunID:          "run",
		NameFieldWidth: 20,
	}
}

func normalReport() bench.InstanceReport {
	return bench.InstanceReport{
		Name:     "BM_Copy/64",
		Instance: bench.InstanceKey{Family: "BM_Copy", Args: []int64{64}, Threads: 1},
		Runs: []bench.Run{{
			Name:              "BM_Copy/64",
			Kind:              bench.KindNormal,
			Iterations:        1000,
			Threads:           1,
			TimeUnit:          bench.Nanosecond,
			RealIterationTime: 12.34,
			CPUIterationTime:  12.01,
			BytesPerSecond:    2048,
			Counters:          bench.Counters{"hits": {Value: 1500, Flags: bench.CounterIsRate}},
			Label:             "aligned",
		}},
	}
}

func errorReport() bench.InstanceReport {
	return bench.InstanceReport{
		Name: "BM_Fail",
		Runs: []bench.Run{{Name: "BM_Fail", Kind: bench.KindError, ErrorMessage: "boom"}},
	}
}

func complexityReport() bench.InstanceReport {
	return bench.InstanceReport{
		Name: "BM_Sort/1024",
		Runs: []bench.Run{{Name: "BM_Sort/1024", Kind: bench.KindNormal, Iterations: 10, TimeUnit: bench.Nanosecond}},
		Stats: []bench.Run{{
			Name:             "BM_Sort_BigO",
			Kind:             bench.KindComplexity,
			ComplexityString: "NlgN",
			TimeUnit:         bench.Nanosecond,
			BigO:             &bench.BigOCoefficients{RealTime: 1.5, CPUTime: 1.25},
			RMS:              &bench.RMS{RealTime: 0.03 / 1e9, CPUTime: 0.02 / 1e9},
		}},
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0", report.FormatTime(0))
	assert.Equal(t, "1.23", report.FormatTime(1.234))
	assert.Equal(t, "12.3", report.FormatTime(12.34))
	assert.Equal(t, "1234", report.FormatTime(1234.4))

	assert.Equal(t, "0s", report.FormatDuration(0))
	assert.Equal(t, "1.50µs", report.FormatDuration(1500*time.Nanosecond))
	assert.Equal(t, "2.00s", report.FormatDuration(2*time.Second))
	assert.Equal(t, 2500*time.Nanosecond, report.IterationDuration(2.5, bench.Microsecond))

	assert.Equal(t, "2.0 KiB/s", report.FormatBytesRate(2048))
	assert.Equal(t, "1.5k/s", report.FormatCounter(bench.Counter{Value: 1500, Flags: bench.CounterIsRate}))
	assert.Equal(t, "+12.50%", report.FormatPercent(0.125))
	assert.Equal(t, "-50.00%", report.FormatPercent(-0.5))
}

func TestConsole(t *testing.T) {
	t.Run("Context banner goes to the error stream", func(t *testing.T) {
		var out, errOut bytes.Buffer
		console := report.NewConsole(&out, &errOut)

		assert.True(t, console.ReportContext(testContext()))
		assert.Empty(t, out.String())
		assert.Contains(t, errOut.String(), "Run on (4 X 3000 MHz CPUs)")
		assert.Contains(t, errOut.String(), "L1 Data 32 KiB")
		assert.Contains(t, errOut.String(), "CPU scaling is enabled")
	})

	t.Run("Records are aligned lines", func(t *testing.T) {
		var out bytes.Buffer
		console := report.NewConsole(&out, &bytes.Buffer{})
		console.ReportContext(testContext())
		console.ReportRuns(normalReport())
		console.ReportRuns(errorReport())
		require.NoError(t, console.Finalize())

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 5)
		assert.Contains(t, lines[1], "Benchmark")
		assert.Contains(t, lines[1], "UserCounters...")

		assert.True(t, strings.HasPrefix(lines[3], "BM_Copy/64 "))
		assert.Contains(t, lines[3], "12.3 ns")
		assert.Contains(t, lines[3], "12.0 ns")
		assert.Contains(t, lines[3], "1000")
		assert.Contains(t, lines[3], "hits=1.5k/s")
		assert.Contains(t, lines[3], "bytes_per_second=2.0 KiB/s")
		assert.True(t, strings.HasSuffix(lines[3], "aligned"))

		assert.Contains(t, lines[4], "ERROR OCCURRED: 'boom'")
		assert.NotContains(t, out.String(), "\x1b[", "Colors are off by default.")
	})

	t.Run("Complexity records print coefficients and residuals", func(t *testing.T) {
		var out bytes.Buffer
		console := report.NewConsole(&out, &bytes.Buffer{})
		console.ReportContext(testContext())
		console.ReportRuns(complexityReport())

		assert.Contains(t, out.String(), "BM_Sort_BigO")
		assert.Contains(t, out.String(), "1.50 NlgN")
		assert.Contains(t, out.String(), "1.25 NlgN")
		assert.Contains(t, out.String(), "BM_Sort_RMS")
		assert.Contains(t, out.String(), "3 %")
	})

	t.Run("Tabular counters print a column per counter", func(t *testing.T) {
		var out bytes.Buffer
		console := report.NewConsole(&out, &bytes.Buffer{}, report.WithTabularCounters(true))
		console.ReportContext(testContext())
		console.ReportRuns(normalReport())

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[1]), "hits"))
		assert.Contains(t, lines[3], "1.5k/s")
		assert.NotContains(t, lines[3], "hits=")
	})

	t.Run("Aggregates-only reports hide raw runs", func(t *testing.T) {
		instance := normalReport()
		instance.ReportAggregatesOnly = true
		instance.Stats = []bench.Run{{Name: "BM_Copy/64_mean", Kind: bench.KindStatistic, Iterations: 1000, TimeUnit: bench.Nanosecond}}

		var out bytes.Buffer
		console := report.NewConsole(&out, &bytes.Buffer{})
		console.ReportContext(testContext())
		console.ReportRuns(instance)

		assert.Contains(t, out.String(), "BM_Copy/64_mean")
		assert.NotContains(t, out.String(), "aligned")
	})

	t.Run("Colors can be enabled", func(t *testing.T) {
		text.EnableColors()

		var out bytes.Buffer
		console := report.NewConsole(&out, &bytes.Buffer{}, report.WithColor(true))
		console.ReportContext(testContext())
		console.ReportRuns(normalReport())
		assert.Contains(t, out.String(), "\x1b[")
	})
}

func TestJSON(t *testing.T) {
	var out bytes.Buffer
	reporter := report.NewJSON(&out)
	assert.True(t, reporter.ReportContext(testContext()))
	reporter.ReportRuns(normalReport())
	reporter.ReportRuns(errorReport())
	require.NoError(t, reporter.Finalize())

	node, err := compare.Load(&out)
	require.NoError(t, err)
	require.Equal(t, compare.NodeDocument, compare.Classify(node))

	doc := node.(map[string]any)
	assert.Equal(t, "Test CPU", doc["context"].(map[string]any)["cpu_brand"])
	benchmarks := doc["benchmarks"].([]any)
	require.Len(t, benchmarks, 2)
	assert.Equal(t, compare.NodeReport, compare.Classify(benchmarks[0]))

	t.Run("An empty run still yields a list", func(t *testing.T) {
		var out bytes.Buffer
		reporter := report.NewJSON(&out)
		reporter.ReportContext(testContext())
		require.NoError(t, reporter.Finalize())
		assert.Contains(t, out.String(), `"benchmarks": []`)
	})
}

func TestTable(t *testing.T) {
	var out bytes.Buffer
	reporter := report.NewTable(&out, false)
	reporter.ReportContext(testContext())
	reporter.ReportRuns(normalReport())
	reporter.ReportRuns(errorReport())
	reporter.ReportRuns(complexityReport())
	assert.Empty(t, out.String(), "Nothing is written before Finalize.")
	require.NoError(t, reporter.Finalize())

	rendered := out.String()
	assert.Contains(t, rendered, "BENCHMARK")
	assert.Contains(t, rendered, "BM_Copy/64")
	assert.Contains(t, rendered, "12ns")
	assert.Contains(t, rendered, "hits=1.5k/s")
	assert.Contains(t, rendered, "error: boom")
	assert.Contains(t, rendered, "1.25 NlgN")
}

func TestWriteComparison(t *testing.T) {
	results := []compare.Result{{
		Name:       "BM_A/compare_to/BM_A",
		Kind:       "comparison",
		OldResult:  map[string]any{"name": "BM_A", "runs": []any{}},
		NewResult:  map[string]any{"name": "BM_A", "runs": []any{}},
		Comparison: compare.Change{CPUIterationTime: -0.5, RealIterationTime: 0.25},
		OldRun:     map[string]any{"cpu_iteration_time": 10.0},
		NewRun:     map[string]any{"cpu_iteration_time": 5.0},
	}}

	var out bytes.Buffer
	require.NoError(t, report.WriteComparison(&out, results, false))
	assert.Contains(t, out.String(), "BM_A/compare_to/BM_A")
	assert.Contains(t, out.String(), "-50.00%")
	assert.Contains(t, out.String(), "+25.00%")
	assert.Contains(t, out.String(), "10", "Old CPU time comes from the compared run.")
}
