package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/trl/internal/termdb"
)

// MetricsOptions holds flags for the metrics command.
type MetricsOptions struct {
	*RootOptions
	Repeat  int
	Rewrite bool
}

// MetricsResult is the JSON payload of the metrics command.
type MetricsResult struct {
	Repeat int            `json:"repeat"`
	First  termdb.Metrics `json:"first"`
	Final  termdb.Metrics `json:"final"`
	Stable bool           `json:"stable"`
}

// NewMetricsCommand creates the metrics command.
func NewMetricsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MetricsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "metrics <program>",
		Short: "Print term store counts",
		Long: `Load a program into one term store --repeat times (rewriting after
each load with --rewrite) and print the store's counts after the first
and the last load. Interning makes repeated loads free, so both are
expected to match.

Examples:
  trl metrics program.yaml
  trl metrics program.yaml --repeat 100 --rewrite --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetrics(cmd, opts, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.Repeat, "repeat", 1, "number of times to load the program")
	cmd.Flags().BoolVar(&opts.Rewrite, "rewrite", false, "rewrite after each load")

	return cmd
}

func runMetrics(cmd *cobra.Command, opts *MetricsOptions, path string) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if opts.Repeat < 1 {
		return NewExitError(ExitCommandError, "--repeat must be at least 1")
	}

	list, err := loadProgram(f, path)
	if err != nil {
		return err
	}

	db := termdb.New(termdb.WithLogger(opts.Logger(cmd.ErrOrStderr())))
	result := MetricsResult{Repeat: opts.Repeat}
	for i := 0; i < opts.Repeat; i++ {
		if err := db.StoreStatements(list); err != nil {
			return WrapExitError(ExitCommandError, "failed to store program", err)
		}
		if opts.Rewrite {
			if _, err := db.Rewrite(cmd.Context(), 0); err != nil {
				return WrapExitError(ExitFailure, "rewrite failed", err)
			}
		}
		if i == 0 {
			result.First = db.Metrics()
		}
	}
	result.Final = db.Metrics()
	result.Stable = result.First == result.Final

	if f.JSON() {
		return f.Success(result)
	}
	return f.Success(formatMetrics(result))
}

func formatMetrics(r MetricsResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "terms:   %d\n", r.Final.TermCount)
	fmt.Fprintf(&b, "strings: %d\n", r.Final.StringCount)
	fmt.Fprintf(&b, "rules:   %d\n", r.Final.RuleCount)
	fmt.Fprintf(&b, "labels:  %d\n", r.Final.LabelCount)
	if r.Repeat > 1 {
		if r.Stable {
			fmt.Fprintf(&b, "stable across %d loads\n", r.Repeat)
		} else {
			fmt.Fprintf(&b, "changed across %d loads (first: %+v)\n", r.Repeat, r.First)
		}
	}
	return b.String()
}
