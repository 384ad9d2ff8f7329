package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shivanshkc/ubench/pkg/bench"
	"github.com/shivanshkc/ubench/pkg/report"
	"github.com/shivanshkc/ubench/pkg/telemetry"
)

// runCmd represents the run command. It is also what the root command does.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the registered benchmarks.",
	Long: `Run the benchmarks matching --filter and report their results.
Results go to stdout in the --format format; --out writes a second copy
to a file. Prometheus and OpenTelemetry exports are optional.`,
	Args: cobra.NoArgs,
	RunE: runBenchmarks,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBenchmarks(cmd *cobra.Command, args []string) error {
	opts, err := resolveOptions(configPath, flagOptions, cmd.Flags().Changed)
	if err != nil {
		return err
	}

	instances, err := newRegistry().FindBenchmarks(opts.Filter)
	if err != nil {
		return err
	}

	// Matching nothing is not an error.
	if len(instances) == 0 {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Failed to match any benchmarks against regex: %s\n", opts.Filter)
		return nil
	}

	if opts.List {
		return listInstances(cmd.OutOrStdout(), instances)
	}

	reporter, closeReporters, err := buildReporters(cmd, opts)
	if err != nil {
		return err
	}
	defer closeReporters()

	slog.Info("running benchmarks", "count", len(instances), "filter", opts.Filter)

	runner := bench.NewRunner(opts.Config, hostInfo, reporter, slog.Default())
	if _, err := runner.Run(cmd.Context(), instances); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("benchmark run interrupted")
		}
		return err
	}
	return nil
}

// buildReporters assembles the reporters the options ask for. The returned
// function releases the files and providers they hold.
func buildReporters(cmd *cobra.Command, opts Options) (bench.Reporter, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	stdout := cmd.OutOrStdout()
	reporters := bench.MultiReporter{newDisplayReporter(opts.Format, stdout, cmd.ErrOrStderr(), opts, useColor(opts.Color, stdout))}

	if opts.Out != "" {
		file, err := os.Create(opts.Out)
		if err != nil {
			return nil, nil, fmt.Errorf("error while creating the output file: %w", err)
		}
		closers = append(closers, func() { _ = file.Close() })
		reporters = append(reporters, newDisplayReporter(opts.OutFormat, file, io.Discard, opts, false))
	}

	if opts.PromTextfile != "" {
		exporter, err := telemetry.NewPrometheus(opts.PromTextfile)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		reporters = append(reporters, exporter)
	}

	if opts.OTelStdout {
		provider, err := telemetry.NewStdoutMeterProvider(stdout)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = provider.Shutdown(context.Background()) })

		exporter, err := telemetry.NewOTel(provider)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		reporters = append(reporters, exporter)
	}

	return reporters, closeAll, nil
}

// newDisplayReporter creates a reporter for one of the output formats.
func newDisplayReporter(format string, out, errOut io.Writer, opts Options, color bool) bench.Reporter {
	switch format {
	case formatJSON:
		return report.NewJSON(out)
	case formatTable:
		return report.NewTable(out, color)
	default:
		return report.NewConsole(out, errOut,
			report.WithColor(color),
			report.WithTabularCounters(opts.CountersTabular))
	}
}
