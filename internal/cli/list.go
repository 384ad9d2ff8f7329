package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shivanshkc/ubench/pkg/bench"
	"github.com/shivanshkc/ubench/pkg/streams"
)

// listCmd prints the names of the matching benchmarks without running them.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered benchmarks.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := resolveOptions(configPath, flagOptions, cmd.Flags().Changed)
		if err != nil {
			return err
		}

		instances, err := newRegistry().FindBenchmarks(opts.Filter)
		if err != nil {
			return err
		}
		return listInstances(cmd.OutOrStdout(), instances)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func listInstances(w io.Writer, instances []bench.Instance) error {
	names := streams.Map(streams.FromSlice(instances), func(inst bench.Instance) string {
		return inst.Name
	}).Collect()

	if len(names) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, strings.Join(names, "\n")); err != nil {
		return fmt.Errorf("error while listing benchmarks: %w", err)
	}
	return nil
}
