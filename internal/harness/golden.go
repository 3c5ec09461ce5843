package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/trl/internal/ir"
)

// TraceSnapshot is the golden form of a scenario run.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	RunID        string       `json:"run_id"`
	Iterations   int          `json:"iterations"`
	Frame        string       `json:"frame"`
	Trace        []TraceEvent `json:"trace"`
}

// Snapshot builds the golden form of result.
func Snapshot(scenarioName string, result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName: scenarioName,
		RunID:        result.RunID,
		Iterations:   result.Iterations,
		Frame:        result.Frame,
		Trace:        result.Trace,
	}
}

// toCanonicalMap converts a TraceSnapshot for ir.MarshalCanonical, which
// only handles IR types and primitives. Absent optional fields are left out
// since canonical JSON has no null.
func (s TraceSnapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		m := map[string]any{
			"seq":       ev.Seq,
			"iteration": ev.Iteration,
			"kind":      ev.Kind,
			"original":  ev.Original,
		}
		if ev.Replacement != nil {
			m["replacement"] = *ev.Replacement
		}
		if ev.Rule != nil {
			m["rule"] = *ev.Rule
		}
		trace[i] = m
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"run_id":        s.RunID,
		"iterations":    s.Iterations,
		"frame":         s.Frame,
		"trace":         trace,
	}
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s TraceSnapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := Snapshot(scenarioName, result)
	data, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
