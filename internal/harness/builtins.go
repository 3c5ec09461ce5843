package harness

import (
	"fmt"
	"math/big"
	"slices"

	"github.com/roach88/trl/internal/loader"
	"github.com/roach88/trl/internal/termdb"
)

// Built-in evaluator names usable from scenarios.
const (
	// BuiltinDelete deletes every root containing a matching term.
	BuiltinDelete = "delete"
	// BuiltinReplace replaces a matching term by each of the step's terms.
	BuiltinReplace = "replace"
	// BuiltinSum folds a term whose arguments are all integers into their sum.
	BuiltinSum = "sum"
)

type builtin func(step EvaluatorStep, db *termdb.Database) (termdb.Evaluator, error)

var builtins = map[string]builtin{
	BuiltinDelete:  deleteBuiltin,
	BuiltinReplace: replaceBuiltin,
	BuiltinSum:     sumBuiltin,
}

func deleteBuiltin(EvaluatorStep, *termdb.Database) (termdb.Evaluator, error) {
	return func(*termdb.Term, *termdb.Database) []*termdb.Term { return nil }, nil
}

func replaceBuiltin(step EvaluatorStep, db *termdb.Database) (termdb.Evaluator, error) {
	out := make([]*termdb.Term, 0, len(step.Terms))
	for i, node := range step.Terms {
		t, err := loader.ConvertTerm(node)
		if err != nil {
			return nil, fmt.Errorf("terms[%d]: %w", i, err)
		}
		stored, err := db.StoreTerm(t)
		if err != nil {
			return nil, fmt.Errorf("terms[%d]: %w", i, err)
		}
		out = append(out, stored)
	}
	return func(*termdb.Term, *termdb.Database) []*termdb.Term { return slices.Clone(out) }, nil
}

func sumBuiltin(EvaluatorStep, *termdb.Database) (termdb.Evaluator, error) {
	return func(t *termdb.Term, db *termdb.Database) []*termdb.Term {
		total := new(big.Int)
		for _, arg := range t.Arguments {
			if arg.Kind() != termdb.KindNumber {
				return []*termdb.Term{t}
			}
			n, ok := new(big.Int).SetString(db.NameOf(arg), 10)
			if !ok {
				return []*termdb.Term{t}
			}
			total.Add(total, n)
		}
		return []*termdb.Term{db.StoreAtom(total.String(), termdb.KindNumber)}
	}, nil
}

// registerEvaluators installs the scenario's evaluators on db.
func registerEvaluators(db *termdb.Database, steps []EvaluatorStep) error {
	for i, step := range steps {
		kind, err := termdb.ParseKind(step.Kind)
		if err != nil {
			return fmt.Errorf("evaluators[%d]: %w", i, err)
		}
		build, ok := builtins[step.Builtin]
		if !ok {
			return fmt.Errorf("evaluators[%d]: unknown builtin %q", i, step.Builtin)
		}
		fn, err := build(step, db)
		if err != nil {
			return fmt.Errorf("evaluators[%d]: %w", i, err)
		}
		db.SetEvaluator(step.Name, kind, fn)
	}
	return nil
}
