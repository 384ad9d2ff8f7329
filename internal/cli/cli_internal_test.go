package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivanshkc/ubench/pkg/bench"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ubench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func noneChanged(string) bool { return false }

func TestResolveOptions(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		opts, err := resolveOptions("", defaultOptions(), noneChanged)
		require.NoError(t, err)
		assert.Equal(t, defaultOptions(), opts)
		assert.InDelta(t, 0.5, opts.MinTime, 1e-12)
	})

	t.Run("Config file overrides defaults", func(t *testing.T) {
		path := writeConfig(t, "min_time: 0.25\nrepetitions: 4\nreport_aggregates_only: true\nfilter: BM_Copy\nformat: table\n")

		opts, err := resolveOptions(path, defaultOptions(), noneChanged)
		require.NoError(t, err)
		assert.InDelta(t, 0.25, opts.MinTime, 1e-12)
		assert.Equal(t, 4, opts.Repetitions)
		assert.True(t, opts.ReportAggregatesOnly)
		assert.Equal(t, "BM_Copy", opts.Filter)
		assert.Equal(t, formatTable, opts.Format)
	})

	t.Run("Explicit flags override the config file", func(t *testing.T) {
		path := writeConfig(t, "min_time: 0.25\nrepetitions: 4\n")

		flagged := defaultOptions()
		flagged.Repetitions = 9
		flagged.MinTime = 2

		opts, err := resolveOptions(path, flagged, func(name string) bool { return name == "repetitions" })
		require.NoError(t, err)
		assert.Equal(t, 9, opts.Repetitions)
		assert.InDelta(t, 0.25, opts.MinTime, 1e-12, "Unchanged flags keep the file value.")
	})

	t.Run("Unknown keys are rejected", func(t *testing.T) {
		path := writeConfig(t, "min_tme: 1\n")
		_, err := resolveOptions(path, defaultOptions(), noneChanged)
		assert.Error(t, err)
	})

	t.Run("Empty file keeps defaults", func(t *testing.T) {
		path := writeConfig(t, "")
		opts, err := resolveOptions(path, defaultOptions(), noneChanged)
		require.NoError(t, err)
		assert.Equal(t, defaultOptions(), opts)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := resolveOptions(filepath.Join(t.TempDir(), "missing.yaml"), defaultOptions(), noneChanged)
		assert.Error(t, err)
	})

	t.Run("Invalid values are rejected", func(t *testing.T) {
		path := writeConfig(t, "repetitions: 0\n")
		_, err := resolveOptions(path, defaultOptions(), noneChanged)
		assert.ErrorContains(t, err, "Invalid configuration")
	})
}

func TestValidateOptions(t *testing.T) {
	type testCase struct {
		name     string
		modify   func(o *Options)
		expected string
	}

	testCases := []testCase{
		{name: "Valid", modify: func(o *Options) {}, expected: ""},
		{name: "Bad filter", modify: func(o *Options) { o.Filter = "BM_(" }, expected: "Invalid filter"},
		{name: "Bad format", modify: func(o *Options) { o.Format = "xml" }, expected: "Format must be one of"},
		{name: "Bad out format", modify: func(o *Options) { o.OutFormat = "csv" }, expected: "Out format must be one of"},
		{name: "Bad color", modify: func(o *Options) { o.Color = "always" }, expected: "Color must be one of"},
		{name: "Non-positive min time", modify: func(o *Options) { o.MinTime = 0 }, expected: "min time must be positive"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := defaultOptions()
			tc.modify(&opts)

			message := validateOptions(opts)
			if tc.expected == "" {
				assert.Empty(t, message)
				return
			}
			assert.Contains(t, message, tc.expected)
		})
	}
}

func TestValidateCompareArgs(t *testing.T) {
	assert.Empty(t, validateCompareArgs([]string{"old.json", "new.json"}))
	assert.NotEmpty(t, validateCompareArgs([]string{"old.json"}))
	assert.NotEmpty(t, validateCompareArgs([]string{"old.json", " "}))
}

func TestNewLogger(t *testing.T) {
	var out bytes.Buffer

	newLogger(&out, 0).Info("hidden")
	assert.Empty(t, out.String())

	newLogger(&out, 1).Info("shown")
	assert.Contains(t, out.String(), "shown")

	newLogger(&out, 2).Debug("details")
	assert.Contains(t, out.String(), "details")
}

func TestUseColor(t *testing.T) {
	assert.True(t, useColor("true", &bytes.Buffer{}))
	assert.False(t, useColor("false", os.Stdout))
	assert.False(t, useColor("auto", &bytes.Buffer{}), "Buffers are never terminals.")
}

// executeRoot runs the root command with args and returns its stdout.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	hostInfo.NumCPUs = 2
	registerSuite = func(reg *bench.Registry) {
		reg.Register("BM_Noop", func(st *bench.State) {
			for st.KeepRunning() {
			}
		}).Arg(1).Arg(2)
	}

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		// Flags remember that they were set; reset them for the next command.
		for _, cmd := range []*cobra.Command{rootCmd, runCmd, listCmd, compareCmd} {
			cmd.Flags().VisitAll(resetFlag)
			cmd.PersistentFlags().VisitAll(resetFlag)
		}
		flagOptions = defaultOptions()
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlag(f *pflag.Flag) {
	_ = f.Value.Set(f.DefValue)
	f.Changed = false
}

func TestCommands(t *testing.T) {
	t.Run("List prints matching instances", func(t *testing.T) {
		out, err := executeRoot(t, "list", "--filter", "BM_Noop/2")
		require.NoError(t, err)
		assert.Equal(t, "BM_Noop/2\n", out)
	})

	t.Run("Run writes JSON that compare accepts", func(t *testing.T) {
		dir := t.TempDir()
		first, second := filepath.Join(dir, "first.json"), filepath.Join(dir, "second.json")

		_, err := executeRoot(t, "run", "--min-time", "0.001", "--format", "json", "--out", first)
		require.NoError(t, err)
		_, err = executeRoot(t, "run", "--min-time", "0.001", "--format", "json", "--out", second)
		require.NoError(t, err)

		out, err := executeRoot(t, "compare", first, second)
		require.NoError(t, err)
		assert.Contains(t, out, "BM_Noop/1/compare_to/BM_Noop/1")
		assert.Contains(t, out, "BM_Noop/2/compare_to/BM_Noop/2")
	})

	t.Run("No match is not an error", func(t *testing.T) {
		out, err := executeRoot(t, "run", "--filter", "nothing")
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}
