package termdb

import (
	"context"
	"fmt"
	"slices"

	"github.com/hashicorp/go-set/v3"
)

// Frame is the working generation of a Database: live roots, active rules,
// native evaluators and the replacement observer.
//
// Roots keep a stable order. A successor takes the position of the root it
// replaced, so rendering a frame after Rewrite keeps statement order.
type Frame struct {
	db *Database

	roots   []*Term
	rootSet *set.Set[Handle]

	rules   []Substitution
	ruleSet *set.Set[Substitution]

	evaluators map[evaluatorKey]Evaluator
	observer   ReplacementObserver
}

// NewFrame creates an empty frame over db.
func NewFrame(db *Database) *Frame {
	return &Frame{
		db:         db,
		rootSet:    set.New[Handle](0),
		ruleSet:    set.New[Substitution](0),
		evaluators: make(map[evaluatorKey]Evaluator),
	}
}

// Database returns the database the frame's terms live in.
func (f *Frame) Database() *Database {
	return f.db
}

// AddRoot appends t to the roots. Returns false if t was already a root.
func (f *Frame) AddRoot(t *Term) bool {
	if !f.rootSet.Insert(t.Handle()) {
		return false
	}
	f.roots = append(f.roots, t)
	return true
}

// HasRoot reports whether t is a live root.
func (f *Frame) HasRoot(t *Term) bool {
	return f.rootSet.Contains(t.Handle())
}

// Roots returns the live roots in order.
func (f *Frame) Roots() []*Term {
	return slices.Clone(f.roots)
}

// AddRule appends s to the rules. Returns false if s was already present.
func (f *Frame) AddRule(s Substitution) bool {
	if !f.ruleSet.Insert(s) {
		return false
	}
	f.rules = append(f.rules, s)
	return true
}

// Rules returns the active rules in insertion order.
func (f *Frame) Rules() []Substitution {
	return slices.Clone(f.rules)
}

// Rewrite applies rules and evaluators until an iteration produces no new
// root, the limit is reached or ctx is cancelled. It returns the number of
// iterations performed. Reaching the limit is not an error.
func (f *Frame) Rewrite(ctx context.Context, limit int) (int, error) {
	if len(f.rules) == 0 && len(f.evaluators) == 0 {
		return 0, nil
	}

	logger := f.db.logger
	budget := newIterationBudget(limit)
	for budget.Take() {
		iteration := budget.Used() - 1
		if err := ctx.Err(); err != nil {
			return iteration, fmt.Errorf("rewrite cancelled at iteration %d: %w", iteration, err)
		}

		st := f.step(iteration)
		logger.Debug("rewrite iteration",
			"iteration", iteration,
			"roots", len(f.roots),
			"produced", st.produced,
			"removed", st.removed)

		if st.produced == 0 {
			break
		}
	}

	logger.Info("rewrite finished",
		"iterations", budget.Used(),
		"roots", len(f.roots),
		"capped", budget.Exhausted())
	return budget.Used(), nil
}

type stepStats struct {
	produced int
	removed  int
}

// iterationState collects the effects of one iteration over a snapshot.
type iterationState struct {
	f          *Frame
	iteration  int
	removed    *set.Set[Handle]
	successors map[Handle][]*Term
	produced   int
}

func (s *iterationState) replace(root, next *Term, rule *Substitution) {
	if next == root {
		return
	}
	s.removed.Insert(root.Handle())
	s.successors[root.Handle()] = append(s.successors[root.Handle()], next)
	s.produced++
	s.f.db.CopyLabels(root, next)
	s.f.notify(TermReplacement{Original: root, Replacement: next, Iteration: s.iteration, Rule: rule})
}

// delete drops root along with any successors it produced this iteration.
func (s *iterationState) delete(root *Term) {
	s.removed.Insert(root.Handle())
	s.produced -= len(s.successors[root.Handle()])
	delete(s.successors, root.Handle())
	s.f.notify(TermReplacement{Original: root, Iteration: s.iteration})
}

// step runs one iteration: rules first, then evaluators, both over the roots
// as they were when the iteration started.
func (f *Frame) step(iteration int) stepStats {
	snapshot := slices.Clone(f.roots)
	st := &iterationState{
		f:          f,
		iteration:  iteration,
		removed:    set.New[Handle](0),
		successors: make(map[Handle][]*Term),
	}

	for i := range f.rules {
		rule := f.rules[i]
		for _, root := range snapshot {
			f.applyRule(st, &rule, root)
		}
	}

	if len(f.evaluators) > 0 {
		for _, root := range snapshot {
			f.applyEvaluators(st, root)
		}
	}

	f.commit(snapshot, st)
	return stepStats{produced: st.produced, removed: st.removed.Size()}
}

func (f *Frame) applyRule(st *iterationState, rule *Substitution, root *Term) {
	head := rule.Match
	if head.IsGround() || head.IsVariable() {
		st.replace(root, f.db.Substitute(root, map[Handle]*Term{head.Handle(): rule.Substitute}), rule)
		return
	}

	for _, sub := range AllSubterms(root) {
		bindings, ok := f.db.Unify(head, sub)
		if !ok {
			continue
		}
		inst := f.db.Instantiate(rule.Substitute, bindings)
		st.replace(root, f.db.Substitute(root, map[Handle]*Term{sub.Handle(): inst}), rule)
	}
}

func (f *Frame) applyEvaluators(st *iterationState, root *Term) {
	for _, sub := range AllSubterms(root) {
		fn, ok := f.evaluators[evaluatorKey{name: sub.Name.StringID, kind: sub.Name.Kind}]
		if !ok {
			continue
		}
		out := fn(sub, f.db)
		if len(out) == 0 {
			st.delete(root)
			return
		}
		for _, rep := range out {
			if rep == nil || rep == sub {
				continue
			}
			st.replace(root, f.db.Substitute(root, map[Handle]*Term{sub.Handle(): rep}), nil)
		}
	}
}

// commit replaces superseded roots by their successors in place and drops
// deleted roots. A root that comes back as a successor stays live.
func (f *Frame) commit(snapshot []*Term, st *iterationState) {
	next := make([]*Term, 0, len(snapshot)+st.produced)
	live := set.New[Handle](len(snapshot) + st.produced)
	emit := func(t *Term) {
		if live.Insert(t.Handle()) {
			next = append(next, t)
		}
	}

	for _, root := range snapshot {
		if !st.removed.Contains(root.Handle()) {
			emit(root)
			continue
		}
		for _, succ := range st.successors[root.Handle()] {
			emit(succ)
		}
	}

	f.roots = next
	f.rootSet = live
}

func (f *Frame) notify(r TermReplacement) {
	if f.observer != nil {
		f.observer(r)
	}
}
