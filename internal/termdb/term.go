package termdb

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/go-set/v3"
)

// Term is a node in the hash-consed term DAG.
//
// Terms are created by the Database's Store* methods and are immutable once
// interned, except for Labels which grows when a rewrite carries labels from
// a superseded root to its successor.
type Term struct {
	Name      Symbol
	Arguments []*Term

	// Variables holds the handles of every free variable in the term,
	// including the term itself when it is a variable.
	Variables *set.Set[Handle]

	Metadata map[MetadataKind]*Term

	// Labels are the label string ids attached to this term, in
	// creation order of the labels.
	Labels *set.TreeSet[StringID]
}

// Handle returns the canonical handle, or 0 if the term was never interned.
func (t *Term) Handle() Handle {
	return t.Name.TermID
}

// Kind returns the term's kind.
func (t *Term) Kind() Kind {
	return t.Name.Kind
}

// IsVariable reports whether the term is a bare variable.
func (t *Term) IsVariable() bool {
	return t.Name.Kind == KindVariable
}

// IsGround reports whether the term contains no variables.
func (t *Term) IsGround() bool {
	return t.Variables.Empty()
}

// HasVariable reports whether v occurs free in t.
func (t *Term) HasVariable(v Handle) bool {
	return t.Variables.Contains(v)
}

// ClassMembers returns the class member mapping list, or nil.
func (t *Term) ClassMembers() *Term {
	if t.Metadata == nil {
		return nil
	}
	return t.Metadata[MetaClassMemberMappings]
}

func newTerm(name Symbol, args []*Term, metadata map[MetadataKind]*Term) *Term {
	vars := set.New[Handle](0)
	for _, a := range args {
		if !a.Name.HasTermID() {
			panic(invalidState("newTerm", "argument of kind %s has no canonical handle", a.Name.Kind))
		}
		for v := range a.Variables.Items() {
			vars.Insert(v)
		}
	}
	for k, m := range metadata {
		if m == nil || !m.Name.HasTermID() {
			panic(invalidState("newTerm", "metadata %d has no canonical handle", k))
		}
	}
	if len(metadata) == 0 {
		metadata = nil
	}
	name.TermID = 0
	return &Term{
		Name:      name,
		Arguments: args,
		Variables: vars,
		Metadata:  metadata,
		Labels:    set.NewTreeSet[StringID](cmp.Compare[StringID]),
	}
}

// key returns the structural identity of t: name, kind, argument handles
// and metadata handles. Two terms are the same canonical term iff their
// keys are equal.
func (t *Term) key() string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(uint64(t.Name.StringID), 10))
	b.WriteByte('/')
	b.WriteString(strconv.FormatUint(uint64(t.Name.Kind), 10))
	b.WriteByte('(')
	for i, a := range t.Arguments {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(a.Handle()), 10))
	}
	b.WriteByte(')')
	if len(t.Metadata) > 0 {
		kinds := make([]MetadataKind, 0, len(t.Metadata))
		for k := range t.Metadata {
			kinds = append(kinds, k)
		}
		slices.Sort(kinds)
		b.WriteByte('<')
		for _, k := range kinds {
			b.WriteString(strconv.FormatUint(uint64(k), 10))
			b.WriteByte('=')
			b.WriteString(strconv.FormatUint(uint64(t.Metadata[k].Handle()), 10))
			b.WriteByte(';')
		}
		b.WriteByte('>')
	}
	return b.String()
}

// Substitution is a rewrite rule over canonical terms. Two substitutions are
// equal iff both sides are the same canonical terms.
type Substitution struct {
	Match      *Term
	Substitute *Term
}

// AllSubterms returns t and every distinct subterm of t in pre-order.
// Shared subterms are visited once.
func AllSubterms(t *Term) []*Term {
	var out []*Term
	seen := set.New[Handle](0)
	stack := []*Term{t}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !seen.Insert(cur.Handle()) {
			continue
		}
		out = append(out, cur)
		for i := len(cur.Arguments) - 1; i >= 0; i-- {
			stack = append(stack, cur.Arguments[i])
		}
	}
	return out
}
