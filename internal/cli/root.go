// Package cli contains all the command-line interface logic for the application,
// powered by the cobra library. It defines the root command, subcommands,
// and their respective flags.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shivanshkc/ubench/pkg/bench"
	"github.com/shivanshkc/ubench/pkg/sysinfo"
)

var (
	// configPath, verbosity and flagOptions hold the values of the root
	// command's persistent flags. Subcommands read them through resolveOptions.
	configPath  string
	verbosity   int
	flagOptions = defaultOptions()

	// hostInfo and registerSuite are provided by main through Execute.
	hostInfo      sysinfo.Info
	registerSuite func(*bench.Registry)
)

// rootCmd represents the base command when called without any subcommands.
// Without a subcommand it behaves like `run`.
var rootCmd = &cobra.Command{
	Use:   "ubench",
	Short: "A microbenchmark runner.",
	Long: `A microbenchmark runner.
It executes the registered benchmark families, prints their timings and
statistics, and compares result files produced by earlier runs.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(newLogger(cmd.ErrOrStderr(), verbosity))
	},
	RunE: runBenchmarks,
}

// Execute is the primary entry point for the CLI application, called by main.go.
//
// It sets up a single, root cancellable context and wires it up to respond
// to OS interruption signals (like Ctrl+C or SIGTERM). The register function
// adds the benchmark families to the registry the commands work on.
func Execute(info sysinfo.Info, register func(*bench.Registry)) error {
	hostInfo, registerSuite = info, register

	// Create a root context that can be canceled.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	// Launch a goroutine to cancel the context upon receiving a signal.
	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Execute the root command with the cancellable context.
	return rootCmd.ExecuteContext(ctx)
}

// newRegistry builds a registry holding the families of the suite.
func newRegistry() *bench.Registry {
	reg := bench.NewRegistry(hostInfo, slog.Default())
	if registerSuite != nil {
		registerSuite(reg)
	}
	return reg
}

// newLogger maps the verbosity count to a level: warnings by default, info
// with -v and debug with -vv.
func newLogger(w io.Writer, verbosity int) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbosity >= 2:
		level = slog.LevelDebug
	case verbosity == 1:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// init configures the application's flags.
//
// Flags shared by every subcommand live on the root command. Their values
// override the configuration file only when explicitly set.
func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&configPath, "config", "", "Path of a YAML configuration file.")
	flags.CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug).")

	flags.StringVar(&flagOptions.Filter, "filter", flagOptions.Filter,
		"Regular expression selecting the benchmarks to run.")
	flags.Float64Var(&flagOptions.MinTime, "min-time", flagOptions.MinTime,
		"Minimum number of seconds each benchmark is measured for.")
	flags.IntVar(&flagOptions.Repetitions, "repetitions", flagOptions.Repetitions,
		"Number of measurements per benchmark.")
	flags.BoolVar(&flagOptions.ReportAggregatesOnly, "aggregates-only", flagOptions.ReportAggregatesOnly,
		"Only report the statistics of repeated benchmarks.")
	flags.StringVar(&flagOptions.Format, "format", flagOptions.Format,
		"Output format: console, json or table.")
	flags.StringVar(&flagOptions.Out, "out", flagOptions.Out,
		"File receiving a second copy of the results.")
	flags.StringVar(&flagOptions.OutFormat, "out-format", flagOptions.OutFormat,
		"Format of the --out file: console, json or table.")
	flags.StringVar(&flagOptions.Color, "color", flagOptions.Color,
		"Colorize the console output: auto, true or false.")
	flags.BoolVar(&flagOptions.CountersTabular, "counters-tabular", flagOptions.CountersTabular,
		"Print user counters as table columns.")
	flags.BoolVar(&flagOptions.List, "list", flagOptions.List,
		"List the matching benchmarks instead of running them.")
	flags.StringVar(&flagOptions.PromTextfile, "prom-textfile", flagOptions.PromTextfile,
		"Write the results as a Prometheus textfile at this path.")
	flags.BoolVar(&flagOptions.OTelStdout, "otel-stdout", flagOptions.OTelStdout,
		"Print the results as OpenTelemetry metrics on stdout.")
}
