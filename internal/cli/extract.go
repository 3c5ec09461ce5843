package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/trl/internal/mutation"
)

// ExtractOptions holds flags for the extract command.
type ExtractOptions struct {
	*RootOptions
	Out string
}

// NewExtractCommand creates the extract command.
func NewExtractCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExtractOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "extract <program>",
		Short: "Hoist repeated ground subterms into rules",
		Long: `Replace every variable-free compound term that occurs more than
once by a fresh identifier and add a rule "identifier => term" for it.
Rewriting the result restores the original program.

Examples:
  trl extract program.yaml
  trl extract program.yaml --out shared.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
			db, err := loadDatabase(cmd, opts.RootOptions, f, args[0])
			if err != nil {
				return err
			}
			before := db.Metrics().RuleCount
			db.Mutate(mutation.NewCommonSubterms())
			f.VerboseLog("hoisted %d subterms", db.Metrics().RuleCount-before)
			return writeFrame(cmd, opts.RootOptions, f, db.ReadCurrentFrame(), FrameResult{}, opts.Out)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "also write the result as a program document (.yaml, .yml or .json)")

	return cmd
}
