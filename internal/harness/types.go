package harness

import "github.com/roach88/trl/internal/tracestore"

// TraceEvent is one replacement in the order the frame reported it.
type TraceEvent struct {
	Seq         int64   `json:"seq"`
	Iteration   int     `json:"iteration"`
	Kind        string  `json:"kind"` // "rule" or "evaluator"
	Original    string  `json:"original"`
	Replacement *string `json:"replacement,omitempty"` // nil for a delete
	Rule        *string `json:"rule,omitempty"`
}

func traceEvent(r tracestore.Replacement) TraceEvent {
	return TraceEvent{
		Seq:         r.Seq,
		Iteration:   r.Iteration,
		Kind:        r.Kind,
		Original:    r.Original,
		Replacement: r.Replacement,
		Rule:        r.Rule,
	}
}

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// RunID is the trace run id the scenario recorded under.
	RunID string `json:"run_id"`

	// Iterations is what Rewrite returned.
	Iterations int `json:"iterations"`

	// Frame is the compact rendering of the final frame.
	Frame string `json:"frame"`

	// Trace holds every replacement in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
