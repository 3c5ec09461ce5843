package tracestore

import "errors"

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded rewrite.
type Run struct {
	ID             string `json:"id"`
	Seq            int64  `json:"seq"`
	ProgramHash    string `json:"program_hash"`
	IterationLimit int    `json:"iteration_limit"`
	Iterations     int    `json:"iterations"`
	Finished       bool   `json:"finished"`
}

// Replacement is one recorded root change.
type Replacement struct {
	RunID          string `json:"run_id"`
	Seq            int64  `json:"seq"`
	Iteration      int    `json:"iteration"`
	Kind           string `json:"kind"` // "rule" or "evaluator"
	Original       string `json:"original"`
	OriginalDigest string `json:"original_digest"`

	// Replacement is nil when the root was deleted.
	Replacement *string `json:"replacement,omitempty"`

	// Rule is nil for evaluator changes.
	Rule *string `json:"rule,omitempty"`
}
