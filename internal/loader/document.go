package loader

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/trl/internal/ir"
)

// Document is the serialized shape of a program. YAML, JSON and CUE sources
// all decode into it.
type Document struct {
	Statements []StatementNode `yaml:"statements,omitempty" json:"statements,omitempty"`
	Rules      []RuleNode      `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// StatementNode is one labeled root term.
type StatementNode struct {
	Labels []string `yaml:"labels,omitempty,flow" json:"labels,omitempty"`
	Term   TermNode `yaml:"term" json:"term"`
}

// RuleNode is one rewrite rule.
type RuleNode struct {
	Match      TermNode `yaml:"match" json:"match"`
	Substitute TermNode `yaml:"substitute" json:"substitute"`
}

// TermNode is a single term. Exactly one of ID, Num, Str, Var, List or Term
// must be set; Args and Fields belong to Term.
//
// In YAML a plain scalar is shorthand: numbers become Num, a leading ':'
// makes a Var, quoted scalars become Str and anything else is an ID.
type TermNode struct {
	ID     *string     `yaml:"id,omitempty" json:"id,omitempty"`
	Num    *string     `yaml:"num,omitempty" json:"num,omitempty"`
	Str    *string     `yaml:"str,omitempty" json:"str,omitempty"`
	Var    *string     `yaml:"var,omitempty" json:"var,omitempty"`
	List   *[]TermNode `yaml:"list,omitempty" json:"list,omitempty"`
	Term   *string     `yaml:"term,omitempty" json:"term,omitempty"`
	Args   []TermNode  `yaml:"args,omitempty" json:"args,omitempty"`
	Fields []string    `yaml:"fields,omitempty,flow" json:"fields,omitempty"`
}

var termNodeKeys = map[string]bool{
	"id": true, "num": true, "str": true, "var": true,
	"list": true, "term": true, "args": true, "fields": true,
}

// UnmarshalYAML accepts both the mapping form and the scalar shorthand.
func (n *TermNode) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		return n.fromScalar(value)
	case yaml.MappingNode:
		for i := 0; i < len(value.Content); i += 2 {
			key := value.Content[i]
			if !termNodeKeys[key.Value] {
				return fmt.Errorf("line %d: unknown term field %q", key.Line, key.Value)
			}
		}
		type plain TermNode
		return value.Decode((*plain)(n))
	default:
		return fmt.Errorf("line %d: term must be a scalar or a mapping", value.Line)
	}
}

func (n *TermNode) fromScalar(value *yaml.Node) error {
	text := value.Value
	switch {
	case value.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0:
		n.Str = &text
	case value.ShortTag() == "!!int" || value.ShortTag() == "!!float":
		n.Num = &text
	case strings.HasPrefix(text, ":"):
		name := text[1:]
		n.Var = &name
	default:
		n.ID = &text
	}
	return nil
}

// NewDocument converts a program back into its serialized shape, always
// using the explicit mapping form.
func NewDocument(list ir.StatementList) Document {
	var doc Document
	for _, st := range list.Statements {
		doc.Statements = append(doc.Statements, StatementNode{Labels: st.Labels, Term: nodeOf(st.Term)})
	}
	for _, r := range list.Rules {
		doc.Rules = append(doc.Rules, RuleNode{Match: nodeOf(r.Match), Substitute: nodeOf(r.Substitute)})
	}
	return doc
}

// Encode renders a program as a YAML document.
func Encode(list ir.StatementList) ([]byte, error) {
	out, err := yaml.Marshal(NewDocument(list))
	if err != nil {
		return nil, fmt.Errorf("encode program: %w", err)
	}
	return out, nil
}

// EncodeFormat renders a program in format. CUE output is not supported.
func EncodeFormat(list ir.StatementList, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return Encode(list)
	case FormatJSON:
		out, err := json.MarshalIndent(NewDocument(list), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode program: %w", err)
		}
		return append(out, '\n'), nil
	default:
		return nil, &LoadError{Code: ErrCodeFormat, Message: fmt.Sprintf("cannot write %s documents", format)}
	}
}

func nodeOf(t ir.Term) TermNode {
	switch t := t.(type) {
	case ir.Identifier:
		return TermNode{ID: ptr(t.Name)}
	case ir.Number:
		return TermNode{Num: ptr(t.Value)}
	case ir.String:
		return TermNode{Str: ptr(t.Value)}
	case ir.Variable:
		return TermNode{Var: ptr(strings.TrimPrefix(t.Name, ":"))}
	case ir.TermList:
		items := make([]TermNode, 0, len(t.Terms))
		for _, item := range t.Terms {
			items = append(items, nodeOf(item))
		}
		return TermNode{List: &items}
	case ir.NonAcTerm:
		n := TermNode{Term: ptr(t.Name), Fields: t.ClassMembers}
		for _, arg := range t.Arguments {
			n.Args = append(n.Args, nodeOf(arg))
		}
		return n
	default:
		return TermNode{}
	}
}

func ptr(s string) *string { return &s }
