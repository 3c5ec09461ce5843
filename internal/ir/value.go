package ir

import (
	"fmt"
	"slices"
	"unicode/utf16"
)

// IRValue is a sealed interface representing values that can be canonically encoded.
// Only IRString, IRInt, IRBool, IRArray, and IRObject implement this.
// There is no float and no null: neither has a canonical form here.
type IRValue interface {
	irValue() // Sealed - only these types implement it
}

// IRString represents a string value.
type IRString string

func (IRString) irValue() {}

// IRInt represents an integer value.
type IRInt int64

func (IRInt) irValue() {}

// IRBool represents a boolean value.
type IRBool bool

func (IRBool) irValue() {}

// IRArray represents an array of IRValue elements.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject represents a map of string keys to IRValue elements.
// Use SortedKeys() for deterministic iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// CRITICAL: Go's sort.Strings uses UTF-8 which produces DIFFERENT order.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON).
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// TermValue converts an AST term into its IRValue form.
//
// Each term becomes an object tagged with "kind":
//
//	{"kind":"identifier","name":"a"}
//	{"kind":"nonac","name":"point","members":["x","y"],"args":[...]}
//
// Returns error for nil terms or unknown term types.
func TermValue(t Term) (IRValue, error) {
	switch v := t.(type) {
	case Identifier:
		return IRObject{"kind": IRString("identifier"), "name": IRString(v.Name)}, nil
	case Number:
		return IRObject{"kind": IRString("number"), "value": IRString(v.Value)}, nil
	case String:
		return IRObject{"kind": IRString("string"), "value": IRString(v.Value)}, nil
	case Variable:
		return IRObject{"kind": IRString("variable"), "name": IRString(v.Name)}, nil
	case TermList:
		args, err := termValues(v.Terms)
		if err != nil {
			return nil, err
		}
		return IRObject{"kind": IRString("list"), "args": args}, nil
	case NonAcTerm:
		args, err := termValues(v.Arguments)
		if err != nil {
			return nil, err
		}
		obj := IRObject{"kind": IRString("nonac"), "name": IRString(v.Name), "args": args}
		if len(v.ClassMembers) > 0 {
			members := make(IRArray, len(v.ClassMembers))
			for i, m := range v.ClassMembers {
				members[i] = IRString(m)
			}
			obj["members"] = members
		}
		return obj, nil
	case nil:
		return nil, fmt.Errorf("nil term")
	default:
		return nil, fmt.Errorf("unsupported term type: %T", t)
	}
}

func termValues(terms []Term) (IRArray, error) {
	arr := make(IRArray, len(terms))
	for i, t := range terms {
		v, err := TermValue(t)
		if err != nil {
			return nil, fmt.Errorf("args[%d]: %w", i, err)
		}
		arr[i] = v
	}
	return arr, nil
}

// ProgramValue converts a statement list into its IRValue form.
// Statement and rule order is preserved; labels are kept as written.
func ProgramValue(list StatementList) (IRValue, error) {
	stmts := make(IRArray, len(list.Statements))
	for i, st := range list.Statements {
		term, err := TermValue(st.Term)
		if err != nil {
			return nil, fmt.Errorf("statements[%d]: %w", i, err)
		}
		labels := make(IRArray, len(st.Labels))
		for j, l := range st.Labels {
			labels[j] = IRString(l)
		}
		stmts[i] = IRObject{"labels": labels, "term": term}
	}

	rules := make(IRArray, len(list.Rules))
	for i, r := range list.Rules {
		match, err := TermValue(r.Match)
		if err != nil {
			return nil, fmt.Errorf("rules[%d].match: %w", i, err)
		}
		sub, err := TermValue(r.Substitute)
		if err != nil {
			return nil, fmt.Errorf("rules[%d].substitute: %w", i, err)
		}
		rules[i] = IRObject{"match": match, "substitute": sub}
	}

	return IRObject{"statements": stmts, "rules": rules}, nil
}
