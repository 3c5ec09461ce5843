package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/trl/internal/ir"
	"github.com/roach88/trl/internal/loader"
	"github.com/roach88/trl/internal/render"
	"github.com/roach88/trl/internal/termdb"
)

// loadProgram loads the program at path, reporting every load error. The
// returned error carries ExitCommandError.
func loadProgram(f *OutputFormatter, path string) (ir.StatementList, error) {
	list, errs := loader.LoadFile(path, loader.LoadModeCollectAll)
	if len(errs) > 0 {
		return ir.StatementList{}, reportLoadErrors(f, path, errs)
	}
	f.VerboseLog("loaded %s: %d statements, %d rules", path, len(list.Statements), len(list.Rules))
	return list, nil
}

// loadDatabase loads the program at path into a fresh term store.
func loadDatabase(cmd *cobra.Command, opts *RootOptions, f *OutputFormatter, path string) (*termdb.Database, error) {
	list, err := loadProgram(f, path)
	if err != nil {
		return nil, err
	}
	db := termdb.New(termdb.WithLogger(opts.Logger(cmd.ErrOrStderr())))
	if err := db.StoreStatements(list); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to store program", err)
	}
	return db, nil
}

func reportLoadErrors(f *OutputFormatter, path string, errs []error) error {
	messages := make([]string, len(errs))
	for i, err := range errs {
		messages[i] = err.Error()
	}

	msg := fmt.Sprintf("failed to load %s", path)
	if f.JSON() {
		if err := f.Error(errorCode(errs[0]), msg, messages); err != nil {
			return err
		}
	} else {
		for _, m := range messages {
			fmt.Fprintln(f.GetErrWriter(), m)
		}
	}
	return WrapExitError(ExitCommandError, msg, errors.Join(errs...))
}

// FrameResult is the JSON payload of commands that print a program.
type FrameResult struct {
	Iterations *int            `json:"iterations,omitempty"`
	RunID      string          `json:"run_id,omitempty"`
	Source     string          `json:"source"`
	Program    loader.Document `json:"program"`
}

// writeFrame prints list in the configured format and, when out is set,
// also writes it as a program document to out.
func writeFrame(cmd *cobra.Command, opts *RootOptions, f *OutputFormatter, list ir.StatementList, result FrameResult, out string) error {
	if out != "" {
		if err := writeProgramFile(out, list); err != nil {
			return err
		}
		f.VerboseLog("wrote %s", out)
	}

	if f.JSON() {
		result.Source = render.Program(list)
		result.Program = loader.NewDocument(list)
		return f.Success(result)
	}
	if opts.UsePretty(cmd.OutOrStdout()) {
		return f.Success(render.Pretty(list))
	}
	return f.Success(render.Program(list) + "\n")
}

func writeProgramFile(path string, list ir.StatementList) error {
	format, err := loader.FormatFromPath(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --out path", err)
	}
	data, err := loader.EncodeFormat(list, format)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --out path", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return WrapExitError(ExitCommandError, "failed to write program", err)
	}
	return nil
}
