// Package render prints AST terms and programs in source form.
//
// Compact form writes statements back to back ("root: c;a => b;"); pretty
// form puts each statement and rule on its own line. Arguments are joined
// with "," and no spaces in both forms.
package render

import (
	"strings"

	"github.com/samber/lo"

	"github.com/roach88/trl/internal/ir"
)

var stringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Term renders a single term.
func Term(t ir.Term) string {
	var b strings.Builder
	writeTerm(&b, t)
	return b.String()
}

func writeTerm(b *strings.Builder, t ir.Term) {
	switch v := t.(type) {
	case ir.Identifier:
		b.WriteString(v.Name)
	case ir.Number:
		b.WriteString(v.Value)
	case ir.String:
		b.WriteByte('"')
		b.WriteString(stringEscaper.Replace(v.Value))
		b.WriteByte('"')
	case ir.Variable:
		b.WriteByte(':')
		b.WriteString(v.Name)
	case ir.TermList:
		writeArgs(b, v.Terms)
	case ir.NonAcTerm:
		b.WriteString(v.Name)
		if len(v.ClassMembers) > 0 {
			b.WriteByte('<')
			b.WriteString(strings.Join(v.ClassMembers, ","))
			b.WriteByte('>')
		}
		writeArgs(b, v.Arguments)
	case nil:
		b.WriteString("<nil>")
	default:
		b.WriteString("<?>")
	}
}

func writeArgs(b *strings.Builder, args []ir.Term) {
	b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		writeTerm(b, a)
	}
	b.WriteByte(')')
}

// Statement renders "labels: term;".
func Statement(st ir.TermStatement) string {
	term := Term(st.Term) + ";"
	if len(st.Labels) == 0 {
		return term
	}
	return strings.Join(st.Labels, ",") + ": " + term
}

// Rule renders "match => substitute;".
func Rule(r ir.RewriteRule) string {
	return Term(r.Match) + " => " + Term(r.Substitute) + ";"
}

// Program renders statements then rules in compact form.
func Program(list ir.StatementList) string {
	return strings.Join(lines(list), "")
}

// Pretty renders one statement or rule per line, each line newline-terminated.
func Pretty(list ir.StatementList) string {
	ls := lines(list)
	if len(ls) == 0 {
		return ""
	}
	return strings.Join(ls, "\n") + "\n"
}

func lines(list ir.StatementList) []string {
	return append(
		lo.Map(list.Statements, func(st ir.TermStatement, _ int) string { return Statement(st) }),
		lo.Map(list.Rules, func(r ir.RewriteRule, _ int) string { return Rule(r) })...,
	)
}
