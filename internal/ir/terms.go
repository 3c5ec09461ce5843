package ir

// Term is a sealed interface over the AST term shapes.
// Only Identifier, Number, String, Variable, TermList and NonAcTerm implement it.
type Term interface {
	irTerm() // Sealed - only these types implement it
}

// Identifier is a bare symbol such as `a` or `Pi`.
type Identifier struct {
	Name string `json:"name" yaml:"name"`
}

func (Identifier) irTerm() {}

// Number is a numeric literal. Value holds the source text ("1.10" and "1.1"
// are different numbers to the term database).
type Number struct {
	Value string `json:"value" yaml:"value"`
}

func (Number) irTerm() {}

// String is a quoted string literal.
type String struct {
	Value string `json:"value" yaml:"value"`
}

func (String) irTerm() {}

// Variable is a logic variable, written `:name` in source text.
type Variable struct {
	Name string `json:"name" yaml:"name"`
}

func (Variable) irTerm() {}

// TermList is an ordered, unnamed sequence of terms: `(a, b, c)`.
type TermList struct {
	Terms []Term `json:"terms" yaml:"terms"`
}

func (TermList) irTerm() {}

// NonAcTerm is a named n-ary constructor: `point<x,y>(1, 2)`.
// ClassMembers is the optional field-name mapping written between angle brackets;
// it is part of the term's identity.
type NonAcTerm struct {
	Name         string   `json:"name" yaml:"name"`
	Arguments    []Term   `json:"arguments" yaml:"arguments"`
	ClassMembers []string `json:"class_members,omitempty" yaml:"class_members,omitempty"`
}

func (NonAcTerm) irTerm() {}

// TermStatement is a term with an optional set of labels: `a, b: t(1);`.
type TermStatement struct {
	Labels []string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Term   Term     `json:"term" yaml:"term"`
}

// RewriteRule is `match => substitute;`.
type RewriteRule struct {
	Match      Term `json:"match" yaml:"match"`
	Substitute Term `json:"substitute" yaml:"substitute"`
}

// StatementList is a complete program: labeled statements followed by rules.
type StatementList struct {
	Statements []TermStatement `json:"statements" yaml:"statements"`
	Rules      []RewriteRule   `json:"rules" yaml:"rules"`
}

// Convenience constructors, mostly used by tests and evaluators.

// Ident creates an Identifier.
func Ident(name string) Identifier { return Identifier{Name: name} }

// Num creates a Number from its source text.
func Num(value string) Number { return Number{Value: value} }

// Str creates a String.
func Str(value string) String { return String{Value: value} }

// Var creates a Variable. The name excludes the ':' sigil.
func Var(name string) Variable { return Variable{Name: name} }

// List creates a TermList.
func List(terms ...Term) TermList {
	if terms == nil {
		terms = []Term{}
	}
	return TermList{Terms: terms}
}

// T creates a NonAcTerm without class member mappings.
func T(name string, args ...Term) NonAcTerm {
	if args == nil {
		args = []Term{}
	}
	return NonAcTerm{Name: name, Arguments: args}
}

// TM creates a NonAcTerm with class member mappings.
// Example: TM("point", []string{"x", "y"}, Num("1"), Num("2")) is point<x,y>(1,2).
func TM(name string, members []string, args ...Term) NonAcTerm {
	t := T(name, args...)
	t.ClassMembers = members
	return t
}

// Stmt creates a TermStatement.
func Stmt(term Term, labels ...string) TermStatement {
	return TermStatement{Labels: labels, Term: term}
}

// Rule creates a RewriteRule.
func Rule(match, substitute Term) RewriteRule {
	return RewriteRule{Match: match, Substitute: substitute}
}
