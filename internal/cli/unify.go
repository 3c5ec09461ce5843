package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/trl/internal/termdb"
)

// UnifyOptions holds flags for the unify command.
type UnifyOptions struct {
	*RootOptions
	LHS string
	RHS string
}

// Binding is one variable binding in a unifier.
type Binding struct {
	Variable string `json:"variable"`
	Term     string `json:"term"`
}

// UnifyResult is the JSON payload of the unify command.
type UnifyResult struct {
	LHS       string    `json:"lhs"`
	RHS       string    `json:"rhs"`
	Unifiable bool      `json:"unifiable"`
	Bindings  []Binding `json:"bindings"`
}

// NewUnifyCommand creates the unify command.
func NewUnifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UnifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "unify <program> --lhs <label> --rhs <label>",
		Short: "Unify the terms under two labels",
		Long: `Compute the most general unifier of the single root under --lhs and
the single root under --rhs and print its bindings.

Exit codes:
  0 - The terms unify
  1 - The terms do not unify
  2 - Command error (bad program, missing label, etc.)

Examples:
  trl unify program.yaml --lhs pattern --rhs subject
  trl unify program.yaml --lhs a --rhs b --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnify(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.LHS, "lhs", "", "label of the left-hand term (required)")
	cmd.Flags().StringVar(&opts.RHS, "rhs", "", "label of the right-hand term (required)")
	_ = cmd.MarkFlagRequired("lhs")
	_ = cmd.MarkFlagRequired("rhs")

	return cmd
}

func runUnify(cmd *cobra.Command, opts *UnifyOptions, path string) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	db, err := loadDatabase(cmd, opts.RootOptions, f, path)
	if err != nil {
		return err
	}

	lhs, err := labeledRoot(db, opts.LHS)
	if err != nil {
		return err
	}
	rhs, err := labeledRoot(db, opts.RHS)
	if err != nil {
		return err
	}

	bindings, ok := db.Unify(lhs, rhs)
	result := UnifyResult{
		LHS:       db.TermString(lhs),
		RHS:       db.TermString(rhs),
		Unifiable: ok,
		Bindings:  make([]Binding, 0, len(bindings)),
	}
	for _, b := range bindings {
		result.Bindings = append(result.Bindings, Binding{
			Variable: db.TermString(b.Match),
			Term:     db.TermString(b.Substitute),
		})
	}

	if f.JSON() {
		if err := f.Success(result); err != nil {
			return err
		}
	} else if ok {
		if err := f.Success(db.BindingsString(bindings)); err != nil {
			return err
		}
	}
	if !ok {
		return NewExitError(ExitFailure, fmt.Sprintf("%s and %s do not unify", result.LHS, result.RHS))
	}
	return nil
}

func labeledRoot(db *termdb.Database, label string) (*termdb.Term, error) {
	terms, err := db.ReadInternalTermsForLabel(label)
	if errors.Is(err, termdb.ErrLabelNotFound) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("label not found: %s", label))
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read label", err)
	}
	if len(terms) != 1 {
		return nil, NewExitError(ExitCommandError,
			fmt.Sprintf("label %s: want exactly one term, found %d", label, len(terms)))
	}
	return terms[0], nil
}
