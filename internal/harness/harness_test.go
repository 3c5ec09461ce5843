package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trl/internal/loader"
	"github.com/roach88/trl/internal/testutil"
)

func intPtr(n int) *int { return &n }

func TestScenarios_Golden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "unifying_rule.yaml"))
	require.NoError(t, err)

	first, err := Run(t.Context(), scenario)
	require.NoError(t, err)
	second, err := Run(t.Context(), scenario)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	a, err := Snapshot(scenario.Name, first).MarshalCanonical()
	require.NoError(t, err)
	b, err := Snapshot(scenario.Name, second).MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func inlineScenario(t *testing.T, program string, assertions ...Assertion) *Scenario {
	t.Helper()
	doc, err := loader.Decode([]byte(program))
	require.NoError(t, err)
	return &Scenario{Name: t.Name(), Description: "inline", Program: &doc, Assertions: assertions}
}

func TestRun_FailingAssertions(t *testing.T) {
	scenario := inlineScenario(t, "statements: [{labels: [root], term: a}]\nrules: [{match: a, substitute: b}]",
		Assertion{Type: AssertFrame, Expect: "root: a;"},
		Assertion{Type: AssertReplacementCount, Count: intPtr(5)},
		Assertion{Type: AssertLabel, Label: "root", Terms: []string{"a"}},
		Assertion{Type: AssertLabelMissing, Label: "root"},
		Assertion{Type: AssertIterations, Count: intPtr(1)},
		Assertion{Type: AssertMetrics, Metrics: map[string]int{"rule_count": 2}},
	)

	result, err := Run(t.Context(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 6)
	assert.Contains(t, result.Errors[0], "Assertion failed: frame")
	assert.Contains(t, result.Errors[0], "Actual: root: b;a => b;")
	assert.Contains(t, result.Errors[0], "[1] iteration 0 rule: a -> b")
	assert.Contains(t, result.Errors[1], "Actual: 1 replacements")
	assert.Contains(t, result.Errors[2], "root: [b]")
	assert.Contains(t, result.Errors[3], `label "root" has 1 terms`)
	assert.Contains(t, result.Errors[4], "Actual: 2 iterations")
	assert.Contains(t, result.Errors[5], "rule_count=1 (want 2)")
}

func TestRun_ReplaceBuiltin(t *testing.T) {
	scenario := inlineScenario(t, "statements: [{labels: [root], term: x}]",
		Assertion{Type: AssertFrame, Expect: "root: y;root: z;"},
		Assertion{Type: AssertReplacementCount, Kind: "evaluator", Count: intPtr(2)},
	)
	y, z := "y", "z"
	scenario.Evaluators = []EvaluatorStep{{
		Name:    "x",
		Kind:    "identifier",
		Builtin: BuiltinReplace,
		Terms:   []loader.TermNode{{ID: &y}, {ID: &z}},
	}}

	result, err := Run(t.Context(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, testutil.DefaultRunID, result.RunID)
}

func TestRun_UnifyFailures(t *testing.T) {
	scenario := inlineScenario(t, "statements: [{labels: [a], term: {term: t, args: [1]}}, {labels: [b], term: {term: t, args: [{var: x}]}}, {labels: [b], term: c}]",
		Assertion{Type: AssertUnify, LHS: "a", RHS: "a", Fails: true},
		Assertion{Type: AssertUnify, LHS: "a", RHS: "b"},
		Assertion{Type: AssertUnify, LHS: "a", RHS: "missing"},
	)

	result, err := Run(t.Context(), scenario)
	require.NoError(t, err)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "Expected: no unifier")
	assert.Contains(t, result.Errors[1], "want exactly one term, found 2")
	assert.Contains(t, result.Errors[2], "label not found")
}

func TestRun_ProgramErrors(t *testing.T) {
	scenario := inlineScenario(t, "statements: [{term: {}}]", Assertion{Type: AssertFrame})
	_, err := Run(t.Context(), scenario)
	require.Error(t, err)
	var loadErr *loader.LoadError
	assert.ErrorAs(t, err, &loadErr)

	scenario = inlineScenario(t, "statements: [{term: a}]", Assertion{Type: AssertFrame})
	scenario.Evaluators = []EvaluatorStep{{Name: "a", Kind: "identifier", Builtin: BuiltinReplace, Terms: []loader.TermNode{{}}}}
	_, err = Run(t.Context(), scenario)
	assert.ErrorContains(t, err, "terms[0]")
}

func TestEvaluateAssertions_RequiresDatabase(t *testing.T) {
	failures := EvaluateAssertions(NewResult(), []Assertion{
		{Type: AssertLabel, Label: "x"},
		{Type: AssertFrame},
		{Type: "bogus"},
	}, nil)

	require.Len(t, failures, 2)
	assert.Equal(t, "assertion[0]: label requires database context", failures[0])
	assert.Equal(t, `assertion[2]: unknown assertion type "bogus"`, failures[1])
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing name", "description: d\nprogram: {}\nassertions: [{type: frame}]", "name is required"},
		{"missing description", "name: n\nprogram: {}\nassertions: [{type: frame}]", "description is required"},
		{"no program", "name: n\ndescription: d\nassertions: [{type: frame}]", "exactly one of program and program_file"},
		{"both programs", "name: n\ndescription: d\nprogram: {}\nprogram_file: p.yaml\nassertions: [{type: frame}]", "exactly one of program and program_file"},
		{"unknown field", "name: n\ndescription: d\nprogram: {}\nasserts: []", "field asserts not found"},
		{"unknown mutation", "name: n\ndescription: d\nprogram: {}\nmutations: [inline]\nassertions: [{type: frame}]", `unknown mutation "inline"`},
		{"bad kind", "name: n\ndescription: d\nprogram: {}\nevaluators: [{name: a, kind: atom, builtin: sum}]\nassertions: [{type: frame}]", `unknown term kind "atom"`},
		{"unknown builtin", "name: n\ndescription: d\nprogram: {}\nevaluators: [{name: a, kind: nonac, builtin: mul}]\nassertions: [{type: frame}]", `unknown builtin "mul"`},
		{"replace without terms", "name: n\ndescription: d\nprogram: {}\nevaluators: [{name: a, kind: nonac, builtin: replace}]\nassertions: [{type: frame}]", "replace needs at least one term"},
		{"no assertions", "name: n\ndescription: d\nprogram: {}", "assertions list is required"},
		{"count missing", "name: n\ndescription: d\nprogram: {}\nassertions: [{type: iterations}]", "requires 'count' field"},
		{"bad kind filter", "name: n\ndescription: d\nprogram: {}\nassertions: [{type: replacement_count, count: 1, kind: magic}]", "kind must be rule or evaluator"},
		{"unify labels", "name: n\ndescription: d\nprogram: {}\nassertions: [{type: unify, lhs: a}]", "requires 'lhs' and 'rhs'"},
		{"unify both", "name: n\ndescription: d\nprogram: {}\nassertions: [{type: unify, lhs: a, rhs: b, expect: '{}', fails: true}]", "either 'expect' or 'fails'"},
		{"unknown metric", "name: n\ndescription: d\nprogram: {}\nassertions: [{type: metrics, metrics: {roots: 1}}]", `unknown metric "roots"`},
		{"label missing field", "name: n\ndescription: d\nprogram: {}\nassertions: [{type: label}]", "requires 'label' field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scenario.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_ResolvesProgramFile(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "common_subterms.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "programs", "subterms.cue"), scenario.ProgramFile)
}

func TestAssertionError_Error(t *testing.T) {
	b := "b"
	err := &AssertionError{
		Type:     AssertFrame,
		Expected: "x",
		Actual:   "y",
		Trace: []TraceEvent{
			{Seq: 1, Iteration: 0, Kind: "rule", Original: "a", Replacement: &b},
			{Seq: 2, Iteration: 1, Kind: "evaluator", Original: "b"},
		},
	}
	lines := strings.Split(err.Error(), "\n")
	assert.Equal(t, "Assertion failed: frame", lines[0])
	assert.Contains(t, err.Error(), "[2] iteration 1 evaluator: b -> <deleted>")
}
