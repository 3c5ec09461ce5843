package termdb

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/trl/internal/ir"
	"github.com/roach88/trl/internal/render"
)

// newTestDB creates a database that logs nowhere.
func newTestDB(t *testing.T, opts ...Option) *Database {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(opts...)
}

// program builds a statement list from statements and rules.
func program(stmts []ir.TermStatement, rules ...ir.RewriteRule) ir.StatementList {
	return ir.StatementList{Statements: stmts, Rules: rules}
}

func stmts(s ...ir.TermStatement) []ir.TermStatement {
	return s
}

// loadProgram stores list into a fresh database.
func loadProgram(t *testing.T, list ir.StatementList, opts ...Option) *Database {
	t.Helper()
	db := newTestDB(t, opts...)
	require.NoError(t, db.StoreStatements(list))
	return db
}

// frameSource renders the active frame in compact form.
func frameSource(db *Database) string {
	return render.Program(db.ReadCurrentFrame())
}

// rootsSource renders only the live roots in compact form.
func rootsSource(db *Database) string {
	return render.Program(ir.StatementList{Statements: db.ReadCurrentFrame().Statements})
}

// recoverError runs fn and returns the error it panicked with, if any.
func recoverError(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err, _ = r.(error)
		}
	}()
	fn()
	return nil
}
