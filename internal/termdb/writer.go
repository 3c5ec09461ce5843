package termdb

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-set/v3"
	"github.com/samber/lo"

	"github.com/roach88/trl/internal/ir"
)

// StoreAtom interns an identifier, number or string atom.
// Use StoreVariable for variables.
//
// Panics with *InvalidStateError when kind is not an atom kind.
func (db *Database) StoreAtom(value string, kind Kind) *Term {
	switch kind {
	case KindIdentifier, KindNumber, KindString:
	default:
		panic(invalidState("StoreAtom", "kind %s is not an atom", kind))
	}
	t, _ := db.intern(newTerm(Symbol{StringID: db.InternString(value), Kind: kind}, nil, nil))
	return t
}

// StoreVariable interns a variable. name excludes the ':' sigil.
// A variable is a free occurrence of itself.
func (db *Database) StoreVariable(name string) *Term {
	t, added := db.intern(newTerm(Symbol{StringID: db.InternString(name), Kind: KindVariable}, nil, nil))
	if added {
		t.Variables.Insert(t.Handle())
	}
	return t
}

// StoreTermList interns an ordered, unnamed list.
func (db *Database) StoreTermList(items []*Term) *Term {
	t, _ := db.intern(newTerm(Symbol{StringID: db.InternString(""), Kind: KindTermList}, cloneArgs(items), nil))
	return t
}

// StoreNonAcTerm interns a named n-ary constructor.
// metadata may be nil.
func (db *Database) StoreNonAcTerm(name string, args []*Term, metadata map[MetadataKind]*Term) *Term {
	t, _ := db.intern(newTerm(Symbol{StringID: db.InternString(name), Kind: KindNonAcTerm}, cloneArgs(args), cloneMetadata(metadata)))
	return t
}

// StoreCopy interns a term with the name, kind and metadata of t and the
// given arguments. Returns t itself when args are t's own arguments.
func (db *Database) StoreCopy(t *Term, args []*Term) *Term {
	if !t.Name.Kind.IsCompound() {
		if len(args) > 0 {
			panic(invalidState("StoreCopy", "atom of kind %s cannot take arguments", t.Name.Kind))
		}
		return t
	}
	c, _ := db.intern(newTerm(t.Name, cloneArgs(args), cloneMetadata(t.Metadata)))
	return c
}

func cloneArgs(args []*Term) []*Term {
	if len(args) == 0 {
		return []*Term{}
	}
	out := make([]*Term, len(args))
	copy(out, args)
	return out
}

func cloneMetadata(m map[MetadataKind]*Term) map[MetadataKind]*Term {
	if len(m) == 0 {
		return nil
	}
	out := make(map[MetadataKind]*Term, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// StoreTerm interns an AST term and all of its subterms.
// It does not add the term to the frame's roots.
func (db *Database) StoreTerm(t ir.Term) (*Term, error) {
	switch v := t.(type) {
	case ir.Identifier:
		return db.StoreAtom(v.Name, KindIdentifier), nil
	case ir.Number:
		return db.StoreAtom(v.Value, KindNumber), nil
	case ir.String:
		return db.StoreAtom(v.Value, KindString), nil
	case ir.Variable:
		return db.StoreVariable(strings.TrimPrefix(v.Name, ":")), nil
	case ir.TermList:
		args, err := db.storeTerms(v.Terms)
		if err != nil {
			return nil, err
		}
		return db.StoreTermList(args), nil
	case ir.NonAcTerm:
		args, err := db.storeTerms(v.Arguments)
		if err != nil {
			return nil, err
		}
		var metadata map[MetadataKind]*Term
		if len(v.ClassMembers) > 0 {
			members := lo.Map(v.ClassMembers, func(m string, _ int) *Term {
				return db.StoreAtom(m, KindIdentifier)
			})
			metadata = map[MetadataKind]*Term{MetaClassMemberMappings: db.StoreTermList(members)}
		}
		return db.StoreNonAcTerm(v.Name, args, metadata), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedTerm, t)
	}
}

func (db *Database) storeTerms(terms []ir.Term) ([]*Term, error) {
	out := make([]*Term, len(terms))
	for i, t := range terms {
		st, err := db.StoreTerm(t)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = st
	}
	return out, nil
}

// StoreStatement interns the statement's term, attaches its labels and adds
// it to the frame's roots.
func (db *Database) StoreStatement(st ir.TermStatement) (*Term, error) {
	t, err := db.StoreTerm(st.Term)
	if err != nil {
		return nil, err
	}
	db.LabelTerm(t, st.Labels...)
	db.SetAsRoot(t)
	return t, nil
}

// StoreRewriteRule interns both sides of r and adds the rule to the frame.
func (db *Database) StoreRewriteRule(r ir.RewriteRule) (Substitution, error) {
	match, err := db.StoreTerm(r.Match)
	if err != nil {
		return Substitution{}, fmt.Errorf("rule match: %w", err)
	}
	sub, err := db.StoreTerm(r.Substitute)
	if err != nil {
		return Substitution{}, fmt.Errorf("rule substitute: %w", err)
	}
	s := Substitution{Match: match, Substitute: sub}
	db.frame.AddRule(s)
	return s, nil
}

// StoreStatements stores every statement, then every rule, in order.
func (db *Database) StoreStatements(list ir.StatementList) error {
	for i, st := range list.Statements {
		if _, err := db.StoreStatement(st); err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}
	for i, r := range list.Rules {
		if _, err := db.StoreRewriteRule(r); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

// LabelTerm attaches labels to t, creating label index entries as needed.
func (db *Database) LabelTerm(t *Term, labels ...string) {
	for _, l := range labels {
		id := db.InternString(l)
		db.labelIndex(id).Insert(t.Handle())
		t.Labels.Insert(id)
	}
}

func (db *Database) labelIndex(id StringID) *set.Set[Handle] {
	idx, ok := db.labels[id]
	if !ok {
		idx = set.New[Handle](1)
		db.labels[id] = idx
	}
	return idx
}

// SetAsRoot adds t to the active frame's roots.
func (db *Database) SetAsRoot(t *Term) {
	db.frame.AddRoot(t)
}

// CopyLabels makes to retrievable under every label of from.
func (db *Database) CopyLabels(from, to *Term) {
	if from == to {
		return
	}
	for id := range from.Labels.Items() {
		to.Labels.Insert(id)
		db.labelIndex(id).Insert(to.Handle())
	}
}

// SetEvaluator registers fn for terms with the given name and kind on the
// active frame. A nil fn removes the registration. Term lists are named by
// the empty string; variable names exclude the ':' sigil.
func (db *Database) SetEvaluator(name string, kind Kind, fn Evaluator) {
	key := evaluatorKey{name: db.InternString(name), kind: kind}
	if fn == nil {
		delete(db.frame.evaluators, key)
		return
	}
	db.frame.evaluators[key] = fn
}

// SetReplacementObserver installs fn to receive one event per root change.
// A nil fn removes the observer.
func (db *Database) SetReplacementObserver(fn ReplacementObserver) {
	db.frame.observer = fn
}
