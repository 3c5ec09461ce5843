package loader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/trl/internal/ir"
)

type converter struct {
	mode LoadMode
	errs []error
}

// Convert turns a decoded document into a program, NFC-normalizing every
// name, label and string on the way in.
func Convert(doc Document, mode LoadMode) (ir.StatementList, []error) {
	c := &converter{mode: mode}
	var list ir.StatementList

	for i, st := range doc.Statements {
		path := fmt.Sprintf("statements[%d]", i)
		labels := c.labels(st.Labels, path+".labels")
		term := c.term(st.Term, path+".term")
		if c.stop() {
			return ir.StatementList{}, c.errs
		}
		list.Statements = append(list.Statements, ir.Stmt(term, labels...))
	}

	for i, r := range doc.Rules {
		path := fmt.Sprintf("rules[%d]", i)
		match := c.term(r.Match, path+".match")
		substitute := c.term(r.Substitute, path+".substitute")
		if c.stop() {
			return ir.StatementList{}, c.errs
		}
		list.Rules = append(list.Rules, ir.Rule(match, substitute))
	}

	if len(c.errs) > 0 {
		return ir.StatementList{}, c.errs
	}
	return list, nil
}

// ConvertTerm converts a single term node. The returned error is the first
// *LoadError found.
func ConvertTerm(n TermNode) (ir.Term, error) {
	c := &converter{mode: LoadModeFailFast}
	t := c.term(n, "term")
	if len(c.errs) > 0 {
		return nil, c.errs[0]
	}
	return t, nil
}

func (c *converter) fail(code, path, format string, args ...any) {
	c.errs = append(c.errs, &LoadError{Code: code, Path: path, Message: fmt.Sprintf(format, args...)})
}

func (c *converter) stop() bool {
	return c.mode == LoadModeFailFast && len(c.errs) > 0
}

func (c *converter) labels(labels []string, path string) []string {
	for i, l := range labels {
		if l == "" {
			c.fail(ErrCodeEmptyName, fmt.Sprintf("%s[%d]", path, i), "label must not be empty")
		}
	}
	if len(labels) == 0 {
		return nil
	}
	return lo.Map(labels, func(l string, _ int) string { return norm.NFC.String(l) })
}

func (c *converter) name(s, path, what string) string {
	if s == "" {
		c.fail(ErrCodeEmptyName, path, "%s must not be empty", what)
	}
	return norm.NFC.String(s)
}

func (c *converter) terms(nodes []TermNode, path string) []ir.Term {
	out := make([]ir.Term, 0, len(nodes))
	for i, n := range nodes {
		out = append(out, c.term(n, fmt.Sprintf("%s[%d]", path, i)))
		if c.stop() {
			break
		}
	}
	return out
}

func (c *converter) term(n TermNode, path string) ir.Term {
	kinds := n.kinds()
	switch {
	case len(kinds) == 0:
		c.fail(ErrCodeTermKind, path, "term has no kind (want one of id, num, str, var, list, term)")
		return nil
	case len(kinds) > 1:
		c.fail(ErrCodeTermKind, path, "term sets %s; only one kind is allowed", strings.Join(kinds, " and "))
		return nil
	case n.Term == nil && (n.Args != nil || n.Fields != nil):
		c.fail(ErrCodeTermShape, path, "args and fields are only allowed with term")
		return nil
	}

	switch {
	case n.ID != nil:
		return ir.Ident(c.name(*n.ID, path, "identifier"))
	case n.Num != nil:
		return ir.Num(c.number(*n.Num, path))
	case n.Str != nil:
		return ir.Str(norm.NFC.String(*n.Str))
	case n.Var != nil:
		return ir.Var(c.name(strings.TrimPrefix(*n.Var, ":"), path, "variable name"))
	case n.List != nil:
		return ir.List(c.terms(*n.List, path+".list")...)
	}

	name := c.name(*n.Term, path, "term name")
	args := c.terms(n.Args, path+".args")
	if n.Fields == nil {
		return ir.T(name, args...)
	}

	if len(n.Fields) != len(args) {
		c.fail(ErrCodeClassMembers, path+".fields",
			"%d class members do not match %d arguments", len(n.Fields), len(args))
	}
	members := lo.Map(n.Fields, func(f string, i int) string {
		f = norm.NFC.String(f)
		switch {
		case f == "":
			c.fail(ErrCodeEmptyName, fmt.Sprintf("%s.fields[%d]", path, i), "class member must not be empty")
		case strings.Contains(f, "."):
			c.fail(ErrCodeQualifiedMember, fmt.Sprintf("%s.fields[%d]", path, i),
				"class member %q must not be qualified", f)
		}
		return f
	})
	return ir.TM(name, members, args...)
}

// number keeps the source text but rejects anything that is not a number.
func (c *converter) number(text, path string) string {
	if _, err := strconv.ParseFloat(text, 64); err != nil && !errors.Is(err, strconv.ErrRange) {
		c.fail(ErrCodeNumber, path, "%q is not a number", text)
	}
	return text
}

func (n TermNode) kinds() []string {
	var kinds []string
	for _, k := range []struct {
		name string
		set  bool
	}{
		{"id", n.ID != nil},
		{"num", n.Num != nil},
		{"str", n.Str != nil},
		{"var", n.Var != nil},
		{"list", n.List != nil},
		{"term", n.Term != nil},
	} {
		if k.set {
			kinds = append(kinds, k.name)
		}
	}
	return kinds
}
