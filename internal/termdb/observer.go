package termdb

// Evaluator is a native rewrite hook. It receives a matched subterm and
// returns its replacements:
//   - no terms deletes the whole root containing t
//   - one or more terms produce one successor root per term
//   - returning t itself is a no-op
type Evaluator func(t *Term, db *Database) []*Term

type evaluatorKey struct {
	name StringID
	kind Kind
}

// ReplacementType tells how a root was changed.
type ReplacementType int

const (
	// ReplacementRewriteRule is a change made by a rewrite rule.
	ReplacementRewriteRule ReplacementType = iota + 1
	// ReplacementEvaluator is a change made by a native evaluator.
	ReplacementEvaluator
)

// String returns "rule" or "evaluator".
func (t ReplacementType) String() string {
	switch t {
	case ReplacementRewriteRule:
		return "rule"
	case ReplacementEvaluator:
		return "evaluator"
	default:
		return "unknown"
	}
}

// TermReplacement records one root change during Rewrite.
type TermReplacement struct {
	Original *Term

	// Replacement is nil when the root was deleted.
	Replacement *Term

	// Iteration is the zero-based rewrite iteration.
	Iteration int

	// Rule is nil when the change came from an evaluator.
	Rule *Substitution
}

// Type reports whether a rule or an evaluator made the change.
func (r TermReplacement) Type() ReplacementType {
	if r.Rule == nil {
		return ReplacementEvaluator
	}
	return ReplacementRewriteRule
}

// IsDelete reports whether the original root was deleted.
func (r TermReplacement) IsDelete() bool {
	return r.Replacement == nil
}

// ReplacementObserver receives replacement events synchronously, in the
// order they happen.
type ReplacementObserver func(TermReplacement)
