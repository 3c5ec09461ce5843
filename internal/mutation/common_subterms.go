// Package mutation holds one-shot frame transformations.
package mutation

import (
	"strconv"
	"unicode/utf8"

	"github.com/roach88/trl/internal/termdb"
)

// listPrefixName stands in for the (empty) name of term lists when minting
// identifiers, so duplicated lists are hoisted as l0, l1, ...
const listPrefixName = "list"

// CommonSubterms hoists every variable-free compound term that occurs more
// than once across the roots of a frame into a rewrite rule
// `identifier => term`, and replaces each occurrence by the identifier.
//
// Terms that occur once are rebuilt from their transformed arguments and
// otherwise left alone. Terms containing variables are never hoisted: two
// occurrences of an open term are not interchangeable.
type CommonSubterms struct {
	db       *termdb.Database
	out      *termdb.Frame
	repeated map[termdb.Handle]bool
	hoisted  map[termdb.Handle]*termdb.Term
	rebuilt  map[termdb.Handle]*termdb.Term
	counters map[string]int
}

var _ termdb.Mutation = (*CommonSubterms)(nil)

// NewCommonSubterms creates the pass. A value can be reused; all state is
// reset on each MutateFrame call.
func NewCommonSubterms() *CommonSubterms {
	return &CommonSubterms{}
}

// MutateFrame returns a new frame over the same database. Rules of in are
// carried over first, followed by one rule per hoisted term.
func (c *CommonSubterms) MutateFrame(in *termdb.Frame) *termdb.Frame {
	c.db = in.Database()
	c.out = termdb.NewFrame(c.db)
	c.repeated = make(map[termdb.Handle]bool)
	c.hoisted = make(map[termdb.Handle]*termdb.Term)
	c.rebuilt = make(map[termdb.Handle]*termdb.Term)
	c.counters = make(map[string]int)

	for _, r := range in.Rules() {
		c.out.AddRule(r)
	}

	roots := in.Roots()
	for _, root := range roots {
		c.mark(root)
	}

	for _, root := range roots {
		next := c.rewrite(root)
		if next != root {
			c.db.CopyLabels(root, next)
		}
		c.out.AddRoot(next)
	}
	return c.out
}

// mark records every compound reachable from t. The second visit of a
// variable-free compound flags it as repeated; its subtree was already
// counted on the first visit and is not walked again.
func (c *CommonSubterms) mark(t *termdb.Term) {
	if !t.Kind().IsCompound() || !t.IsGround() {
		for _, a := range t.Arguments {
			c.mark(a)
		}
		return
	}
	if _, seen := c.repeated[t.Handle()]; seen {
		c.repeated[t.Handle()] = true
		return
	}
	c.repeated[t.Handle()] = false
	for _, a := range t.Arguments {
		c.mark(a)
	}
}

// rewrite rebuilds t bottom-up, replacing repeated terms by identifiers.
func (c *CommonSubterms) rewrite(t *termdb.Term) *termdb.Term {
	if !t.Kind().IsCompound() {
		return t
	}
	if id, ok := c.hoisted[t.Handle()]; ok {
		return id
	}
	if done, ok := c.rebuilt[t.Handle()]; ok {
		return done
	}

	args := make([]*termdb.Term, len(t.Arguments))
	for i, a := range t.Arguments {
		args[i] = c.rewrite(a)
	}
	body := c.db.StoreCopy(t, args)

	if !c.repeated[t.Handle()] {
		c.rebuilt[t.Handle()] = body
		return body
	}

	id := c.db.StoreAtom(c.freshName(t), termdb.KindIdentifier)
	c.out.AddRule(termdb.Substitution{Match: id, Substitute: body})
	c.hoisted[t.Handle()] = id
	return id
}

// freshName mints "<first letter of name><n>" with the smallest n (per
// prefix) that is not already an interned string.
func (c *CommonSubterms) freshName(t *termdb.Term) string {
	name := c.db.NameOf(t)
	if t.Kind() == termdb.KindTermList || name == "" {
		name = listPrefixName
	}
	r, _ := utf8.DecodeRuneInString(name)
	prefix := string(r)

	n := c.counters[prefix]
	candidate := prefix + strconv.Itoa(n)
	for {
		if _, taken := c.db.LookupString(candidate); !taken {
			break
		}
		n++
		candidate = prefix + strconv.Itoa(n)
	}
	c.counters[prefix] = n + 1
	return candidate
}
