package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/shivanshkc/ubench/pkg/bench"
	"github.com/shivanshkc/ubench/pkg/compare"
)

// Table collects every record and renders a single box-drawn table at the end.
type Table struct {
	out   io.Writer
	color bool
	rows  []bench.Run
}

// NewTable creates a Table reporter writing to out.
func NewTable(out io.Writer, color bool) *Table {
	return &Table{out: out, color: color}
}

// ReportContext accepts any context.
func (t *Table) ReportContext(bench.Context) bool {
	return true
}

// ReportRuns buffers the displayed records of an instance.
func (t *Table) ReportRuns(report bench.InstanceReport) {
	t.rows = append(t.rows, report.Reported()...)
}

// Finalize renders the table.
func (t *Table) Finalize() error {
	writer := newTableWriter(t.color)
	writer.AppendHeader(table.Row{"Benchmark", "Time", "CPU", "Iterations", "Throughput", "Counters", "Note"})

	for _, run := range t.rows {
		writer.AppendRow(tableRow(run))
	}

	return render(t.out, writer)
}

func tableRow(run bench.Run) table.Row {
	switch run.Kind {
	case bench.KindError:
		return table.Row{run.Name, "", "", run.Iterations, "", "", "error: " + run.ErrorMessage}
	case bench.KindComplexity:
		var realCoef, cpuCoef string
		if run.BigO != nil {
			realCoef = fmt.Sprintf("%.2f %s", run.BigO.RealTime, run.ComplexityString)
			cpuCoef = fmt.Sprintf("%.2f %s", run.BigO.CPUTime, run.ComplexityString)
		}
		note := ""
		if run.RMS != nil {
			note = fmt.Sprintf("rms %.0f%%", run.RMS.CPUTime*run.TimeUnit.Multiplier()*100)
		}
		return table.Row{run.Name, realCoef, cpuCoef, "", "", "", note}
	}

	var throughput []string
	if run.BytesPerSecond > 0 {
		throughput = append(throughput, FormatBytesRate(run.BytesPerSecond))
	}
	if run.ItemsPerSecond > 0 {
		throughput = append(throughput, FormatItemsRate(run.ItemsPerSecond))
	}

	var counters []string
	for _, name := range counterNames(run.Counters) {
		counters = append(counters, name+"="+FormatCounter(run.Counters[name]))
	}

	return table.Row{
		run.Name,
		FormatDuration(IterationDuration(run.RealIterationTime, run.TimeUnit)),
		FormatDuration(IterationDuration(run.CPUIterationTime, run.TimeUnit)),
		run.Iterations,
		strings.Join(throughput, " "),
		strings.Join(counters, " "),
		run.Label,
	}
}

// WriteComparison renders comparison results as a table. Speedups are green
// and slowdowns red when color is enabled.
func WriteComparison(out io.Writer, results []compare.Result, color bool) error {
	writer := newTableWriter(color)
	writer.AppendHeader(table.Row{"Benchmark", "Time", "CPU", "Old CPU", "New CPU"})

	for _, result := range results {
		writer.AppendRow(table.Row{
			result.Name,
			changeCell(result.Comparison.RealIterationTime, color),
			changeCell(result.Comparison.CPUIterationTime, color),
			result.OldRun["cpu_iteration_time"],
			result.NewRun["cpu_iteration_time"],
		})
	}

	return render(out, writer)
}

func changeCell(change float64, color bool) string {
	s := FormatPercent(change)
	switch {
	case !color || change == 0:
		return s
	case change < 0:
		return text.FgGreen.Sprint(s)
	default:
		return text.FgRed.Sprint(s)
	}
}

func newTableWriter(color bool) table.Writer {
	writer := table.NewWriter()
	writer.SetStyle(table.StyleLight)
	if color {
		writer.Style().Color.Header = text.Colors{text.Bold}
	}
	writer.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	return writer
}

func render(out io.Writer, writer table.Writer) error {
	if _, err := io.WriteString(out, writer.Render()+"\n"); err != nil {
		return fmt.Errorf("error while writing the table: %w", err)
	}
	return nil
}
