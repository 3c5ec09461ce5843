// Package testutil holds deterministic helpers shared by tests and the
// scenario harness.
package testutil

import (
	"io"
	"log/slog"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
