package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/trl/internal/termdb"
	"github.com/roach88/trl/internal/tracestore"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
}

// TraceResult is the JSON payload of "trace --run".
type TraceResult struct {
	Run          tracestore.Run           `json:"run"`
	Replacements []tracestore.Replacement `json:"replacements"`
	Stats        TraceStats               `json:"stats"`
}

// TraceStats summarizes the events of a run.
type TraceStats struct {
	Total     int `json:"total"`
	Rule      int `json:"rule"`
	Evaluator int `json:"evaluator"`
	Deletes   int `json:"deletes"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded rewrite runs",
		Long: `List the runs recorded by "trl rewrite --trace-db", or with --run
print the root replacements of one run in the order they happened.

Examples:
  trl trace --db trace.db
  trl trace --db trace.db --run 0192f5c4-...
  trl trace --db trace.db --run 0192f5c4-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the trace database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to show")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTrace(cmd *cobra.Command, opts *TraceOptions) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	// Open would create a missing file.
	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "trace database not found", err)
	}
	st, err := tracestore.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open trace database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if opts.RunID == "" {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		if f.JSON() {
			return f.Success(runs)
		}
		return f.Success(formatRuns(runs))
	}

	run, err := st.ReadRun(ctx, opts.RunID)
	if errors.Is(err, tracestore.ErrRunNotFound) {
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	reps, err := st.ReadReplacements(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read replacements", err)
	}

	result := TraceResult{Run: run, Replacements: reps, Stats: traceStats(reps)}
	if f.JSON() {
		return f.Success(result)
	}
	return f.Success(formatTrace(result))
}

func traceStats(reps []tracestore.Replacement) TraceStats {
	stats := TraceStats{Total: len(reps)}
	for _, r := range reps {
		switch r.Kind {
		case termdb.ReplacementRewriteRule.String():
			stats.Rule++
		case termdb.ReplacementEvaluator.String():
			stats.Evaluator++
		}
		if r.Replacement == nil {
			stats.Deletes++
		}
	}
	return stats
}

func formatRuns(runs []tracestore.Run) string {
	if len(runs) == 0 {
		return "No runs recorded.\n"
	}
	var b strings.Builder
	for _, r := range runs {
		status := "finished"
		if !r.Finished {
			status = "unfinished"
		}
		fmt.Fprintf(&b, "%d  %s  iterations=%d  %s  program=%s\n",
			r.Seq, r.ID, r.Iterations, status, shortHash(r.ProgramHash))
	}
	return b.String()
}

func formatTrace(t TraceResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run: %s (%d iterations)\n", t.Run.ID, t.Run.Iterations)
	fmt.Fprintf(&b, "Program: %s\n", t.Run.ProgramHash)
	fmt.Fprintln(&b)

	if len(t.Replacements) == 0 {
		fmt.Fprintln(&b, "No replacements.")
	}
	for _, r := range t.Replacements {
		to := "<deleted>"
		if r.Replacement != nil {
			to = *r.Replacement
		}
		fmt.Fprintf(&b, "[%d] iteration %d %s: %s -> %s", r.Seq, r.Iteration, r.Kind, r.Original, to)
		if r.Rule != nil {
			fmt.Fprintf(&b, "  (%s)", *r.Rule)
		}
		fmt.Fprintln(&b)
	}

	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Stats: %d replacements (%d rule, %d evaluator, %d deletes)\n",
		t.Stats.Total, t.Stats.Rule, t.Stats.Evaluator, t.Stats.Deletes)
	return b.String()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
