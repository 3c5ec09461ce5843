package harness

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/roach88/trl/internal/termdb"
)

// AssertionContext gives assertions access to the rewritten database.
type AssertionContext struct {
	DB *termdb.Database
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			to := "<deleted>"
			if ev.Replacement != nil {
				to = *ev.Replacement
			}
			fmt.Fprintf(&buf, "  [%d] iteration %d %s: %s -> %s\n", ev.Seq, ev.Iteration, ev.Kind, ev.Original, to)
		}
	}
	return buf.String()
}

func assertFrame(result *Result, a Assertion) error {
	if result.Frame == a.Expect {
		return nil
	}
	return &AssertionError{Type: AssertFrame, Expected: a.Expect, Actual: result.Frame, Trace: result.Trace}
}

func assertLabel(db *termdb.Database, a Assertion) error {
	terms, err := db.ReadInternalTermsForLabel(a.Label)
	if err != nil {
		return &AssertionError{Type: AssertLabel, Expected: fmt.Sprintf("label %q", a.Label), Actual: err.Error()}
	}
	got := lo.Map(terms, func(t *termdb.Term, _ int) string { return db.TermString(t) })
	want := a.Terms
	if want == nil {
		want = []string{}
	}
	if slices.Equal(got, want) {
		return nil
	}
	return &AssertionError{
		Type:     AssertLabel,
		Expected: fmt.Sprintf("%s: %v", a.Label, want),
		Actual:   fmt.Sprintf("%s: %v", a.Label, got),
	}
}

func assertLabelMissing(db *termdb.Database, a Assertion) error {
	terms, err := db.ReadInternalTermsForLabel(a.Label)
	if errors.Is(err, termdb.ErrLabelNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return &AssertionError{
		Type:     AssertLabelMissing,
		Expected: fmt.Sprintf("label %q not found", a.Label),
		Actual:   fmt.Sprintf("label %q has %d terms", a.Label, len(terms)),
	}
}

func assertReplacementCount(result *Result, a Assertion) error {
	events := result.Trace
	if a.Kind != "" {
		events = lo.Filter(events, func(ev TraceEvent, _ int) bool { return ev.Kind == a.Kind })
	}
	if len(events) == *a.Count {
		return nil
	}
	what := "replacements"
	if a.Kind != "" {
		what = a.Kind + " replacements"
	}
	return &AssertionError{
		Type:     AssertReplacementCount,
		Expected: fmt.Sprintf("%d %s", *a.Count, what),
		Actual:   fmt.Sprintf("%d %s", len(events), what),
		Trace:    result.Trace,
	}
}

func assertIterations(result *Result, a Assertion) error {
	if result.Iterations == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertIterations,
		Expected: fmt.Sprintf("%d iterations", *a.Count),
		Actual:   fmt.Sprintf("%d iterations", result.Iterations),
	}
}

func assertUnify(db *termdb.Database, a Assertion) error {
	lhs, err := singleRoot(db, a.LHS)
	if err != nil {
		return err
	}
	rhs, err := singleRoot(db, a.RHS)
	if err != nil {
		return err
	}

	bindings, ok := db.Unify(lhs, rhs)
	switch {
	case a.Fails && ok:
		return &AssertionError{Type: AssertUnify, Expected: "no unifier", Actual: db.BindingsString(bindings)}
	case a.Fails:
		return nil
	case !ok:
		return &AssertionError{Type: AssertUnify, Expected: a.Expect, Actual: "no unifier"}
	case a.Expect != "" && db.BindingsString(bindings) != a.Expect:
		return &AssertionError{Type: AssertUnify, Expected: a.Expect, Actual: db.BindingsString(bindings)}
	}
	return nil
}

// singleRoot returns the only live term under label.
func singleRoot(db *termdb.Database, label string) (*termdb.Term, error) {
	terms, err := db.ReadInternalTermsForLabel(label)
	if err != nil {
		return nil, fmt.Errorf("label %q: %w", label, err)
	}
	if len(terms) != 1 {
		return nil, fmt.Errorf("label %q: want exactly one term, found %d", label, len(terms))
	}
	return terms[0], nil
}

func assertMetrics(db *termdb.Database, a Assertion) error {
	m := db.Metrics()
	actual := map[string]int{
		"term_count":   m.TermCount,
		"string_count": m.StringCount,
		"rule_count":   m.RuleCount,
		"label_count":  m.LabelCount,
	}

	var diffs []string
	for _, name := range metricNames {
		want, ok := a.Metrics[name]
		if ok && actual[name] != want {
			diffs = append(diffs, fmt.Sprintf("%s=%d (want %d)", name, actual[name], want))
		}
	}
	if len(diffs) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertMetrics,
		Expected: fmt.Sprintf("%v", a.Metrics),
		Actual:   strings.Join(diffs, ", "),
	}
}

// EvaluateAssertions checks every assertion and returns the failure
// messages, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var failures []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertFrame:
			err = assertFrame(result, a)
		case AssertReplacementCount:
			err = assertReplacementCount(result, a)
		case AssertIterations:
			err = assertIterations(result, a)
		case AssertLabel, AssertLabelMissing, AssertUnify, AssertMetrics:
			if actx == nil || actx.DB == nil {
				err = fmt.Errorf("%s requires database context", a.Type)
				break
			}
			switch a.Type {
			case AssertLabel:
				err = assertLabel(actx.DB, a)
			case AssertLabelMissing:
				err = assertLabelMissing(actx.DB, a)
			case AssertUnify:
				err = assertUnify(actx.DB, a)
			case AssertMetrics:
				err = assertMetrics(actx.DB, a)
			}
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}

		if err != nil {
			failures = append(failures, fmt.Sprintf("assertion[%d]: %v", i, err))
		}
	}
	return failures
}
