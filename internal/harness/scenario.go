package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/trl/internal/loader"
	"github.com/roach88/trl/internal/termdb"
)

// Scenario defines one rewrite test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is the inline program. Exactly one of Program and ProgramFile
	// must be given.
	Program *loader.Document `yaml:"program,omitempty"`

	// ProgramFile is a YAML, JSON or CUE program, relative to the scenario file.
	ProgramFile string `yaml:"program_file,omitempty"`

	// Mutations are applied in order before rewriting.
	Mutations []string `yaml:"mutations,omitempty"`

	// Evaluators are registered before rewriting.
	Evaluators []EvaluatorStep `yaml:"evaluators,omitempty"`

	// Iterations is the rewrite limit. Zero uses the database default.
	Iterations int `yaml:"iterations,omitempty"`

	// RunID is the fixed trace run id. Defaults to testutil.DefaultRunID.
	RunID string `yaml:"run_id,omitempty"`

	// Assertions validate the final frame and the trace.
	Assertions []Assertion `yaml:"assertions"`
}

// EvaluatorStep registers a built-in evaluator for terms with the given
// name and kind.
type EvaluatorStep struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"`
	Builtin string `yaml:"builtin"`

	// Terms are the results of the "replace" builtin.
	Terms []loader.TermNode `yaml:"terms,omitempty"`
}

// Assertion validates the frame, the trace or the database.
type Assertion struct {
	// Type specifies the assertion type:
	// - "frame": the compact rendering of the final frame equals Expect
	// - "label": the terms under Label render as Terms, in order
	// - "label_missing": Label was never used as a label
	// - "replacement_count": the trace has Count events (of Kind, if set)
	// - "iterations": the rewrite ran Count iterations
	// - "unify": the single roots under LHS and RHS unify to Expect, or Fails
	// - "metrics": each named counter in Metrics has the given value
	Type string `yaml:"type"`

	Expect  string         `yaml:"expect,omitempty"`
	Label   string         `yaml:"label,omitempty"`
	Terms   []string       `yaml:"terms,omitempty"`
	Kind    string         `yaml:"kind,omitempty"`
	Count   *int           `yaml:"count,omitempty"`
	LHS     string         `yaml:"lhs,omitempty"`
	RHS     string         `yaml:"rhs,omitempty"`
	Fails   bool           `yaml:"fails,omitempty"`
	Metrics map[string]int `yaml:"metrics,omitempty"`
}

// Assertion type constants.
const (
	AssertFrame            = "frame"
	AssertLabel            = "label"
	AssertLabelMissing     = "label_missing"
	AssertReplacementCount = "replacement_count"
	AssertIterations       = "iterations"
	AssertUnify            = "unify"
	AssertMetrics          = "metrics"
)

// MutationCommonSubterms names the common-subterm extraction pass.
const MutationCommonSubterms = "common_subterms"

// LoadScenario reads and parses a scenario YAML file. A relative
// ProgramFile is resolved against the scenario's directory.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.ProgramFile != "" && !filepath.IsAbs(scenario.ProgramFile) {
		scenario.ProgramFile = filepath.Join(filepath.Dir(path), scenario.ProgramFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if (s.Program == nil) == (s.ProgramFile == "") {
		return fmt.Errorf("exactly one of program and program_file is required")
	}
	if s.Iterations < 0 {
		return fmt.Errorf("iterations must not be negative")
	}

	for i, m := range s.Mutations {
		if m != MutationCommonSubterms {
			return fmt.Errorf("mutations[%d]: unknown mutation %q", i, m)
		}
	}

	for i, ev := range s.Evaluators {
		if _, err := termdb.ParseKind(ev.Kind); err != nil {
			return fmt.Errorf("evaluators[%d]: %w", i, err)
		}
		if _, ok := builtins[ev.Builtin]; !ok {
			return fmt.Errorf("evaluators[%d]: unknown builtin %q", i, ev.Builtin)
		}
		if ev.Builtin == BuiltinReplace && len(ev.Terms) == 0 {
			return fmt.Errorf("evaluators[%d]: replace needs at least one term", i)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

var metricNames = []string{"term_count", "string_count", "rule_count", "label_count"}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertFrame:
		// An empty Expect is a valid empty frame.
	case AssertLabel:
		if a.Label == "" {
			return fmt.Errorf("assertion[%d]: label requires 'label' field", index)
		}
	case AssertLabelMissing:
		if a.Label == "" {
			return fmt.Errorf("assertion[%d]: label_missing requires 'label' field", index)
		}
	case AssertReplacementCount, AssertIterations:
		if a.Count == nil {
			return fmt.Errorf("assertion[%d]: %s requires 'count' field", index, a.Type)
		}
		if a.Kind != "" && a.Kind != "rule" && a.Kind != "evaluator" {
			return fmt.Errorf("assertion[%d]: kind must be rule or evaluator, got %q", index, a.Kind)
		}
	case AssertUnify:
		if a.LHS == "" || a.RHS == "" {
			return fmt.Errorf("assertion[%d]: unify requires 'lhs' and 'rhs' labels", index)
		}
		if a.Fails && a.Expect != "" {
			return fmt.Errorf("assertion[%d]: unify takes either 'expect' or 'fails'", index)
		}
	case AssertMetrics:
		if len(a.Metrics) == 0 {
			return fmt.Errorf("assertion[%d]: metrics requires 'metrics' field", index)
		}
		for name := range a.Metrics {
			if !slices.Contains(metricNames, name) {
				return fmt.Errorf("assertion[%d]: unknown metric %q", index, name)
			}
		}
	default:
		return fmt.Errorf("assertion[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
