package report

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/shivanshkc/ubench/pkg/bench"
)

// Console streams one aligned line per record as soon as an instance completes.
type Console struct {
	out     io.Writer
	errOut  io.Writer
	color   bool
	tabular bool

	nameWidth int
	// counters holds the column set of the last tabular header.
	counters []string
	// headerPrinted is false until the first header was written.
	headerPrinted bool
	err           error
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithColor enables ANSI colors.
func WithColor(enabled bool) ConsoleOption {
	return func(c *Console) { c.color = enabled }
}

// WithTabularCounters prints user counters as aligned columns instead of name=value pairs.
func WithTabularCounters(enabled bool) ConsoleOption {
	return func(c *Console) { c.tabular = enabled }
}

// NewConsole creates a Console writing results to out and the context banner to errOut.
func NewConsole(out, errOut io.Writer, options ...ConsoleOption) *Console {
	c := &Console{out: out, errOut: errOut}
	for _, option := range options {
		option(c)
	}
	return c
}

// ReportContext prints the host banner.
func (c *Console) ReportContext(ctx bench.Context) bool {
	c.nameWidth = ctx.NameFieldWidth

	c.printf(c.errOut, "%s\n", ctx.Date.Format("2006-01-02T15:04:05-07:00"))
	if ctx.Executable != "" {
		c.printf(c.errOut, "Running %s\n", ctx.Executable)
	}

	c.printf(c.errOut, "Run on (%d X %.0f MHz CPU%s)\n", ctx.NumCPUs, ctx.MHzPerCPU, plural(ctx.NumCPUs))
	if ctx.BrandName != "" {
		c.printf(c.errOut, "CPU: %s\n", ctx.BrandName)
	}
	if len(ctx.Caches) > 0 {
		c.printf(c.errOut, "CPU Caches:\n")
		for _, cache := range ctx.Caches {
			size := "unknown"
			if cache.Size > 0 {
				size = fmt.Sprintf("%d KiB", cache.Size/1024)
			}
			c.printf(c.errOut, "  L%d %s %s\n", cache.Level, cache.Type, size)
		}
	}
	if ctx.ScalingEnabled {
		c.printf(c.errOut, "%s\n", c.paint(text.Colors{text.FgRed},
			"***WARNING*** CPU scaling is enabled, the benchmark real time measurements may be noisy and will incur extra overhead."))
	}
	return c.err == nil
}

// ReportRuns prints every record the instance wants displayed.
func (c *Console) ReportRuns(report bench.InstanceReport) {
	reported := report.Reported()
	if len(reported) == 0 {
		return
	}

	if c.needsHeader(reported[0]) {
		c.printHeader(reported[0])
	}

	for _, run := range reported {
		c.printRun(run)
	}
}

// Finalize returns the first write error.
func (c *Console) Finalize() error {
	return c.err
}

func (c *Console) needsHeader(run bench.Run) bool {
	if !c.headerPrinted {
		return true
	}
	return c.tabular && !slices.Equal(c.counters, counterNames(run.Counters))
}

func (c *Console) printHeader(run bench.Run) {
	header := fmt.Sprintf("%s %15s %15s %12s", text.AlignLeft.Apply("Benchmark", c.nameWidth), "Time", "CPU", "Iterations")

	if c.tabular {
		c.counters = counterNames(run.Counters)
		for _, name := range c.counters {
			header += " " + text.AlignRight.Apply(name, max(10, len(name)))
		}
	} else {
		header += " UserCounters..."
	}

	separator := strings.Repeat("-", len(header))
	if c.headerPrinted {
		c.printf(c.out, "\n")
	}
	c.printf(c.out, "%s\n%s\n%s\n", separator, header, separator)
	c.headerPrinted = true
}

func (c *Console) printRun(run bench.Run) {
	name := c.paint(text.Colors{text.FgGreen}, text.AlignLeft.Apply(run.Name, c.nameWidth))

	if run.Kind == bench.KindError {
		c.printf(c.out, "%s %s\n", name, c.paint(text.Colors{text.FgRed, text.Bold}, "ERROR OCCURRED: '"+run.ErrorMessage+"'"))
		return
	}

	if run.Kind == bench.KindComplexity {
		c.printComplexity(run)
		return
	}

	realTime := fmt.Sprintf("%10s %-4s", FormatTime(run.RealIterationTime), run.TimeUnit)
	cpuTime := fmt.Sprintf("%10s %-4s", FormatTime(run.CPUIterationTime), run.TimeUnit)

	line := fmt.Sprintf("%s %s %s %s", name,
		c.paint(text.Colors{text.FgYellow}, realTime),
		c.paint(text.Colors{text.FgYellow}, cpuTime),
		c.paint(text.Colors{text.FgCyan}, fmt.Sprintf("%12d", run.Iterations)))

	line += c.formatCounters(run)

	if run.BytesPerSecond > 0 {
		line += " " + c.paint(text.Colors{text.FgHiBlue}, "bytes_per_second="+FormatBytesRate(run.BytesPerSecond))
	}
	if run.ItemsPerSecond > 0 {
		line += " " + c.paint(text.Colors{text.FgHiBlue}, "items_per_second="+FormatItemsRate(run.ItemsPerSecond))
	}
	if run.Label != "" {
		line += " " + run.Label
	}
	c.printf(c.out, "%s\n", line)
}

func (c *Console) formatCounters(run bench.Run) string {
	var b strings.Builder
	if c.tabular {
		for _, name := range c.counters {
			value := ""
			if counter, ok := run.Counters[name]; ok {
				value = FormatCounter(counter)
			}
			b.WriteString(" " + c.paint(text.Colors{text.FgMagenta}, text.AlignRight.Apply(value, max(10, len(name)))))
		}
		return b.String()
	}

	for _, name := range counterNames(run.Counters) {
		b.WriteString(" " + c.paint(text.Colors{text.FgMagenta}, name+"="+FormatCounter(run.Counters[name])))
	}
	return b.String()
}

// printComplexity prints the fitted coefficients and the normalized residual
// of a complexity record on two lines.
func (c *Console) printComplexity(run bench.Run) {
	var cpuCoef, realCoef, cpuRMS, realRMS float64
	if run.BigO != nil {
		cpuCoef, realCoef = run.BigO.CPUTime, run.BigO.RealTime
	}
	if run.RMS != nil {
		// Residuals are stored relative to the unit multiplier.
		multiplier := run.TimeUnit.Multiplier()
		cpuRMS, realRMS = run.RMS.CPUTime*multiplier, run.RMS.RealTime*multiplier
	}

	bigOName := text.AlignLeft.Apply(familyName(run)+"_BigO", c.nameWidth)
	c.printf(c.out, "%s %10.2f %-4s %10.2f %-4s\n", c.paint(text.Colors{text.FgGreen}, bigOName),
		realCoef, run.ComplexityString, cpuCoef, run.ComplexityString)

	rmsName := text.AlignLeft.Apply(familyName(run)+"_RMS", c.nameWidth)
	c.printf(c.out, "%s %10.0f %-4s %10.0f %-4s\n", c.paint(text.Colors{text.FgGreen}, rmsName),
		realRMS*100, "%", cpuRMS*100, "%")
}

func (c *Console) paint(colors text.Colors, s string) string {
	if !c.color {
		return s
	}
	return colors.Sprint(s)
}

func (c *Console) printf(w io.Writer, format string, args ...any) {
	if c.err != nil {
		return
	}
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		c.err = fmt.Errorf("error while writing console output: %w", err)
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
