package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/trl/internal/ir"
	"github.com/roach88/trl/internal/mutation"
	"github.com/roach88/trl/internal/termdb"
	"github.com/roach88/trl/internal/tracestore"
)

// RewriteOptions holds flags for the rewrite command.
type RewriteOptions struct {
	*RootOptions
	Iterations int
	Label      string
	TraceDB    string
	Extract    bool
	Out        string

	// RunIDs names recorded runs. Nil means UUIDv7 ids.
	RunIDs tracestore.RunIDGenerator
}

// NewRewriteCommand creates the rewrite command.
func NewRewriteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RewriteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rewrite <program>",
		Short: "Rewrite a program to a fixpoint",
		Long: `Load a program, apply its rules until nothing changes (or the
iteration cap is reached) and print the resulting frame.

With --trace-db every root replacement is recorded in a SQLite trace
store under a new run id; inspect it with "trl trace".

Examples:
  trl rewrite program.yaml
  trl rewrite program.cue --iterations 10
  trl rewrite program.yaml --label root --format json
  trl rewrite program.yaml --trace-db trace.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewrite(cmd, opts, args[0])
		},
	}

	cmd.Flags().IntVarP(&opts.Iterations, "iterations", "n", 0, "iteration cap (0 = default cap)")
	cmd.Flags().StringVarP(&opts.Label, "label", "l", "", "print only the statements under this label")
	cmd.Flags().StringVar(&opts.TraceDB, "trace-db", "", "record replacements in this SQLite database")
	cmd.Flags().BoolVar(&opts.Extract, "extract", false, "hoist common subterms before rewriting")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "also write the result as a program document (.yaml, .yml or .json)")

	return cmd
}

func runRewrite(cmd *cobra.Command, opts *RewriteOptions, path string) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if opts.Iterations < 0 {
		return NewExitError(ExitCommandError, "--iterations must not be negative")
	}

	db, err := loadDatabase(cmd, opts.RootOptions, f, path)
	if err != nil {
		return err
	}
	if opts.Extract {
		db.Mutate(mutation.NewCommonSubterms())
	}

	var rec *tracestore.Recorder
	if opts.TraceDB != "" {
		st, err := tracestore.Open(opts.TraceDB)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open trace database", err)
		}
		defer st.Close()

		gen := opts.RunIDs
		if gen == nil {
			gen = tracestore.UUIDv7Generator{}
		}
		rec, err = st.StartRun(cmd.Context(), db, gen.Generate(), db.IterationLimit(opts.Iterations))
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start trace run", err)
		}
		db.SetReplacementObserver(rec.Observe)
	}

	n, err := db.Rewrite(cmd.Context(), opts.Iterations)
	if err != nil {
		return WrapExitError(ExitFailure, "rewrite failed", err)
	}

	result := FrameResult{Iterations: &n}
	if rec != nil {
		if err := rec.Finish(n); err != nil {
			return WrapExitError(ExitCommandError, "failed to record trace", err)
		}
		result.RunID = rec.RunID()
		f.VerboseLog("recorded run %s: %d replacements", rec.RunID(), rec.Recorded())
	}
	f.VerboseLog("rewrite finished after %d iterations", n)

	list, err := selectStatements(db, opts.Label)
	if err != nil {
		return err
	}
	return writeFrame(cmd, opts.RootOptions, f, list, result, opts.Out)
}

// selectStatements returns the whole frame, or only the statements under
// label when it is set. Rules are left out of a label view.
func selectStatements(db *termdb.Database, label string) (ir.StatementList, error) {
	if label == "" {
		return db.ReadCurrentFrame(), nil
	}
	stmts, err := db.ReadStatementsForLabel(label)
	if errors.Is(err, termdb.ErrLabelNotFound) {
		return ir.StatementList{}, NewExitError(ExitFailure, fmt.Sprintf("label not found: %s", label))
	}
	if err != nil {
		return ir.StatementList{}, WrapExitError(ExitFailure, "failed to read label", err)
	}
	return ir.StatementList{Statements: stmts}, nil
}
