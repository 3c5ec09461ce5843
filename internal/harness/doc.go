// Package harness runs rewrite scenarios and checks their outcome.
//
// A scenario loads a program, optionally applies mutation passes and
// built-in evaluators, rewrites it, and evaluates assertions against the
// final frame and the recorded replacement trace. Traces are recorded
// through an in-memory trace store and can be compared against golden files.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	program:                  # or program_file: relative/path.cue
//	  statements:
//	    - labels: [root]
//	      term: {term: t, args: [a]}
//	  rules:
//	    - match: a
//	      substitute: b
//	mutations: [common_subterms]
//	evaluators:
//	  - {name: add, kind: nonac, builtin: sum}
//	iterations: 10
//	run_id: test-run-001
//	assertions:
//	  - type: frame
//	    expect: "root: t(b);a => b;"
//	  - type: label
//	    label: root
//	    terms: ["t(b)"]
//	  - type: replacement_count
//	    count: 1
package harness
