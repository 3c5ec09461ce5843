package termdb

import "fmt"

// Handle identifies a canonical term. 0 is never assigned.
type Handle uint64

// StringID identifies an interned string. 0 is never assigned.
type StringID uint64

// Kind is the syntactic category of a term.
type Kind uint8

const (
	KindIdentifier Kind = iota + 1
	KindNumber
	KindString
	KindVariable
	KindTermList
	KindNonAcTerm
)

// String returns the lower-case kind name used in traces and JSON output.
func (k Kind) String() string {
	switch k {
	case KindIdentifier:
		return "identifier"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindVariable:
		return "variable"
	case KindTermList:
		return "list"
	case KindNonAcTerm:
		return "nonac"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k := KindIdentifier; k <= KindNonAcTerm; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown term kind %q", s)
}

// IsAtom reports whether terms of this kind carry no arguments.
func (k Kind) IsAtom() bool {
	return k >= KindIdentifier && k <= KindVariable
}

// IsCompound reports whether terms of this kind carry an argument sequence.
func (k Kind) IsCompound() bool {
	return k == KindTermList || k == KindNonAcTerm
}

// Symbol names a term: its interned name, its kind and, once the term has
// been interned, its canonical handle.
type Symbol struct {
	StringID StringID
	Kind     Kind
	TermID   Handle
}

// HasTermID reports whether the owning term has been interned.
func (s Symbol) HasTermID() bool {
	return s.TermID != 0
}

// MetadataKind keys auxiliary data attached to a compound term.
type MetadataKind uint8

const (
	// MetaClassMemberMappings holds the ordered field-name list written
	// between angle brackets, stored as a list of identifiers.
	MetaClassMemberMappings MetadataKind = iota + 1
)
