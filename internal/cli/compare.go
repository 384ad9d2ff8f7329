package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shivanshkc/ubench/pkg/compare"
	"github.com/shivanshkc/ubench/pkg/httpx"
	"github.com/shivanshkc/ubench/pkg/report"
)

const (
	fetchTimeout     = 30 * time.Second
	fetchMaxAttempts = 3
	fetchRetryDelay  = time.Second
)

// compareCmd represents the `compare` command. It computes the relative
// change of every benchmark between two JSON result files.
var compareCmd = &cobra.Command{
	Use:   "compare OLD NEW",
	Short: "Compare two JSON result files.",
	Long: `Compare two JSON result files produced with --format json or --out.
Either file can be a local path or an http(s) URL. Negative changes mean
the new results are faster.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if message := validateCompareArgs(args); message != "" {
			return errors.New(message)
		}

		opts, err := resolveOptions(configPath, flagOptions, cmd.Flags().Changed)
		if err != nil {
			return err
		}

		oldNode, err := loadResults(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		newNode, err := loadResults(cmd.Context(), args[1])
		if err != nil {
			return err
		}

		results, err := compare.Compare(oldNode, newNode)
		if err != nil {
			return fmt.Errorf("error while comparing %s and %s: %w", args[0], args[1], err)
		}

		if opts.Format == formatTable {
			return report.WriteComparison(cmd.OutOrStdout(), results, useColor(opts.Color, cmd.OutOrStdout()))
		}
		return report.WriteJSON(cmd.OutOrStdout(), results)
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

// loadResults decodes a result file from a path or an http(s) URL.
func loadResults(ctx context.Context, source string) (any, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		body, err := httpx.NewRetryClient(fetchTimeout).Fetch(ctx, source, fetchMaxAttempts, fetchRetryDelay)
		if err != nil {
			return nil, err
		}
		return compare.Load(bytes.NewReader(body))
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("error while opening the result file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return compare.Load(file)
}
