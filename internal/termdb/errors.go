package termdb

import (
	"errors"
	"fmt"
)

var (
	// ErrLabelNotFound is returned when a label was never interned.
	// A label that exists but currently resolves to no root is not an error.
	ErrLabelNotFound = errors.New("label not found")

	// ErrUnsupportedTerm is returned when an AST term has no database form.
	ErrUnsupportedTerm = errors.New("unsupported term")

	// ErrInvalidState marks violations of the canonicalization contract.
	ErrInvalidState = errors.New("invalid state")
)

// InvalidStateError describes a programmer-contract violation, such as
// building a term from an argument that has not been interned.
//
// It is raised with panic: continuing would silently break hash-consing.
type InvalidStateError struct {
	// Op is the operation that detected the violation.
	Op string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidState, e.Op, e.Message)
}

// Unwrap allows errors.Is(err, ErrInvalidState).
func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

func invalidState(op, format string, args ...any) *InvalidStateError {
	return &InvalidStateError{Op: op, Message: fmt.Sprintf(format, args...)}
}

// IsInvalidState reports whether err (or a recovered panic value) is an
// InvalidStateError.
func IsInvalidState(err error) bool {
	var ise *InvalidStateError
	return errors.As(err, &ise)
}
