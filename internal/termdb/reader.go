package termdb

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/roach88/trl/internal/ir"
	"github.com/roach88/trl/internal/render"
)

// ReadTerm reconstructs the AST form of t.
func (db *Database) ReadTerm(t *Term) ir.Term {
	name := db.NameOf(t)
	switch t.Name.Kind {
	case KindIdentifier:
		return ir.Ident(name)
	case KindNumber:
		return ir.Num(name)
	case KindString:
		return ir.Str(name)
	case KindVariable:
		return ir.Var(name)
	case KindTermList:
		return ir.List(db.readTerms(t.Arguments)...)
	case KindNonAcTerm:
		nt := ir.T(name, db.readTerms(t.Arguments)...)
		if members := t.ClassMembers(); members != nil {
			nt.ClassMembers = lo.Map(members.Arguments, func(m *Term, _ int) string {
				return db.NameOf(m)
			})
		}
		return nt
	default:
		panic(invalidState("ReadTerm", "unknown kind %s", t.Name.Kind))
	}
}

func (db *Database) readTerms(terms []*Term) []ir.Term {
	return lo.Map(terms, func(a *Term, _ int) ir.Term {
		return db.ReadTerm(a)
	})
}

// ReadRootTermStatement returns t as a statement carrying its labels.
func (db *Database) ReadRootTermStatement(t *Term) ir.TermStatement {
	var labels []string
	for id := range t.Labels.Items() {
		labels = append(labels, db.String(id))
	}
	return ir.TermStatement{Labels: labels, Term: db.ReadTerm(t)}
}

// ReadInternalTermsForLabel returns the live roots carrying label, in root
// order. It returns ErrLabelNotFound if label was never interned, and an
// empty slice if the label exists but nothing under it is live.
func (db *Database) ReadInternalTermsForLabel(label string) ([]*Term, error) {
	id, ok := db.LookupString(label)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrLabelNotFound, label)
	}
	idx, ok := db.labels[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrLabelNotFound, label)
	}
	return lo.Filter(db.frame.Roots(), func(t *Term, _ int) bool {
		return idx.Contains(t.Handle())
	}), nil
}

// ReadStatementsForLabel is ReadInternalTermsForLabel in AST form.
func (db *Database) ReadStatementsForLabel(label string) ([]ir.TermStatement, error) {
	terms, err := db.ReadInternalTermsForLabel(label)
	if err != nil {
		return nil, err
	}
	return lo.Map(terms, func(t *Term, _ int) ir.TermStatement {
		return db.ReadRootTermStatement(t)
	}), nil
}

// ReadAllRewriteRules returns the active rules in insertion order.
func (db *Database) ReadAllRewriteRules() []ir.RewriteRule {
	return lo.Map(db.frame.Rules(), func(s Substitution, _ int) ir.RewriteRule {
		return db.ReadRule(s)
	})
}

// ReadRule returns the AST form of s.
func (db *Database) ReadRule(s Substitution) ir.RewriteRule {
	return ir.Rule(db.ReadTerm(s.Match), db.ReadTerm(s.Substitute))
}

// ReadCurrentFrame returns every live root and every rule.
func (db *Database) ReadCurrentFrame() ir.StatementList {
	return ir.StatementList{
		Statements: lo.Map(db.frame.Roots(), func(t *Term, _ int) ir.TermStatement {
			return db.ReadRootTermStatement(t)
		}),
		Rules: db.ReadAllRewriteRules(),
	}
}

// TermString renders t in source form.
func (db *Database) TermString(t *Term) string {
	return render.Term(db.ReadTerm(t))
}

// RuleString renders s in source form, for diagnostics.
func (db *Database) RuleString(s Substitution) string {
	return render.Rule(db.ReadRule(s))
}

// BindingsString renders unifier bindings as {:x=>2,:z=>2} in binding order.
func (db *Database) BindingsString(bindings []Substitution) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, s := range bindings {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(db.TermString(s.Match))
		b.WriteString("=>")
		b.WriteString(db.TermString(s.Substitute))
	}
	b.WriteByte('}')
	return b.String()
}
