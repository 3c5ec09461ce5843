package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedKeysUTF16Order(t *testing.T) {
	// U+FB01 sorts after U+1F600 in UTF-8 but before it in UTF-16, where
	// the emoji is a surrogate pair starting 0xD83D.
	obj := IRObject{"\U0001F600": IRInt(1), "\ufb01": IRInt(2), "a": IRInt(3)}
	assert.Equal(t, []string{"a", "\U0001F600", "\ufb01"}, obj.SortedKeys())
}

func TestCompareKeysRFC8785(t *testing.T) {
	assert.Equal(t, 0, compareKeysRFC8785("abc", "abc"))
	assert.Equal(t, -1, compareKeysRFC8785("ab", "abc"))
	assert.Equal(t, 1, compareKeysRFC8785("b", "abc"))
}

func TestTermValueShapes(t *testing.T) {
	tests := []struct {
		name string
		term Term
		want IRValue
	}{
		{"identifier", Ident("a"), IRObject{"kind": IRString("identifier"), "name": IRString("a")}},
		{"number", Num("1.10"), IRObject{"kind": IRString("number"), "value": IRString("1.10")}},
		{"string", Str("abc"), IRObject{"kind": IRString("string"), "value": IRString("abc")}},
		{"variable", Var("x"), IRObject{"kind": IRString("variable"), "name": IRString("x")}},
		{"empty list", List(), IRObject{"kind": IRString("list"), "args": IRArray{}}},
		{"nonac", T("s"), IRObject{"kind": IRString("nonac"), "name": IRString("s"), "args": IRArray{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TermValue(tt.term)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTermValueNestedError(t *testing.T) {
	_, err := TermValue(T("t", Ident("a"), nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "args[1]")
}

func TestProgramValue(t *testing.T) {
	v, err := ProgramValue(StatementList{
		Statements: []TermStatement{Stmt(T("t", Ident("a")), "root")},
		Rules:      []RewriteRule{Rule(Ident("a"), Ident("b"))},
	})
	require.NoError(t, err)

	got, err := MarshalCanonical(v)
	require.NoError(t, err)
	assert.Equal(t,
		`{"rules":[{"match":{"kind":"identifier","name":"a"},"substitute":{"kind":"identifier","name":"b"}}],`+
			`"statements":[{"labels":["root"],"term":{"args":[{"kind":"identifier","name":"a"}],"kind":"nonac","name":"t"}}]}`,
		string(got))
}

func TestConstructorsNeverNilSlices(t *testing.T) {
	assert.NotNil(t, T("t").Arguments)
	assert.NotNil(t, List().Terms)
	assert.Equal(t, []string{"x"}, TM("p", []string{"x"}).ClassMembers)
}
