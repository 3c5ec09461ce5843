package loader

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trl/internal/ir"
)

func subtermsProgram() ir.StatementList {
	return ir.StatementList{
		Statements: []ir.TermStatement{
			ir.Stmt(ir.T("t", ir.T("s"), ir.T("s"), ir.Num("123"), ir.Str("abc")), "root"),
		},
		Rules: []ir.RewriteRule{
			ir.Rule(ir.T("f", ir.Var("x")), ir.Var("x")),
		},
	}
}

func firstLoadError(t *testing.T, errs []error) *LoadError {
	t.Helper()
	require.NotEmpty(t, errs)
	var loadErr *LoadError
	require.True(t, errors.As(errs[0], &loadErr), "want *LoadError, got %T", errs[0])
	return loadErr
}

func TestLoadFile_Formats(t *testing.T) {
	for _, name := range []string{"subterms.yaml", "subterms.json", "subterms.cue"} {
		t.Run(name, func(t *testing.T) {
			got, errs := LoadFile(filepath.Join("testdata", name), LoadModeFailFast)
			require.Empty(t, errs)
			assert.Equal(t, subtermsProgram(), got)
		})
	}
}

func TestLoadFile_NotFound(t *testing.T) {
	_, errs := LoadFile(filepath.Join("testdata", "missing.yaml"), LoadModeFailFast)
	assert.Equal(t, ErrCodeNotFound, firstLoadError(t, errs).Code)
}

func TestLoadFile_UnsupportedFormat(t *testing.T) {
	_, errs := LoadFile(filepath.Join("testdata", "program.txt"), LoadModeFailFast)
	assert.Equal(t, ErrCodeFormat, firstLoadError(t, errs).Code)
}

func TestLoadFile_CUEConversionErrorCarriesPosition(t *testing.T) {
	_, errs := LoadFile(filepath.Join("testdata", "bad_members.cue"), LoadModeFailFast)
	loadErr := firstLoadError(t, errs)

	assert.Equal(t, ErrCodeClassMembers, loadErr.Code)
	assert.Equal(t, "statements[0].term.fields", loadErr.Path)
	require.True(t, loadErr.Pos.IsValid())
	assert.Equal(t, 5, loadErr.Pos.Line())
	assert.Contains(t, loadErr.Error(), "bad_members.cue:5:")
}

func TestLoadFile_CUEBuildError(t *testing.T) {
	_, errs := LoadFile(filepath.Join("testdata", "broken.cue"), LoadModeFailFast)
	loadErr := firstLoadError(t, errs)

	assert.Equal(t, ErrCodeBuildFailed, loadErr.Code)
	assert.True(t, loadErr.Pos.IsValid())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantCode string
		wantPath string
		wantMsg  string
	}{
		{
			name:     "no kind",
			doc:      "statements: [{term: {}}]",
			wantCode: ErrCodeTermKind,
			wantPath: "statements[0].term",
		},
		{
			name:     "two kinds",
			doc:      `statements: [{term: {id: a, num: "1"}}]`,
			wantCode: ErrCodeTermKind,
			wantMsg:  "id and num",
		},
		{
			name:     "args without term",
			doc:      "statements: [{term: {id: a, args: [b]}}]",
			wantCode: ErrCodeTermShape,
		},
		{
			name:     "class member count",
			doc:      "statements: [{term: {term: point, args: [1, 2], fields: [x]}}]",
			wantCode: ErrCodeClassMembers,
			wantPath: "statements[0].term.fields",
		},
		{
			name:     "qualified class member",
			doc:      "rules: [{match: {term: point, args: [1], fields: [a.b]}, substitute: b}]",
			wantCode: ErrCodeQualifiedMember,
			wantPath: "rules[0].match.fields[0]",
		},
		{
			name:     "empty label",
			doc:      `statements: [{labels: [""], term: a}]`,
			wantCode: ErrCodeEmptyName,
			wantPath: "statements[0].labels[0]",
		},
		{
			name:     "empty term name",
			doc:      `statements: [{term: {term: ""}}]`,
			wantCode: ErrCodeEmptyName,
		},
		{
			name:     "bad number",
			doc:      "statements: [{term: {num: abc}}]",
			wantCode: ErrCodeNumber,
		},
		{
			name:     "nested error path",
			doc:      "statements: [{term: {term: t, args: [a, {list: [b, {}]}]}}]",
			wantCode: ErrCodeTermKind,
			wantPath: "statements[0].term.args[1].list[1]",
		},
		{
			name:     "unknown term field",
			doc:      "statements: [{term: {idd: a}}]",
			wantCode: ErrCodeParseFailed,
			wantMsg:  `unknown term field "idd"`,
		},
		{
			name:     "unknown document field",
			doc:      "statement: []",
			wantCode: ErrCodeParseFailed,
		},
		{
			name:     "null term",
			doc:      "statements: [{term: ~}]",
			wantCode: ErrCodeTermKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := Parse([]byte(tt.doc), FormatYAML, "inline.yaml", LoadModeFailFast)
			loadErr := firstLoadError(t, errs)

			assert.Equal(t, tt.wantCode, loadErr.Code)
			if tt.wantPath != "" {
				assert.Equal(t, tt.wantPath, loadErr.Path)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, loadErr.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParse_LoadModes(t *testing.T) {
	doc := []byte("statements: [{term: {}}, {term: {num: x}}]")

	_, errs := Parse(doc, FormatYAML, "", LoadModeFailFast)
	assert.Len(t, errs, 1)

	_, errs = Parse(doc, FormatYAML, "", LoadModeCollectAll)
	require.Len(t, errs, 2)
	assert.Equal(t, ErrCodeTermKind, firstLoadError(t, errs).Code)
	assert.Equal(t, ErrCodeNumber, firstLoadError(t, errs[1:]).Code)
}

func TestParse_Shorthand(t *testing.T) {
	doc := `
statements:
  - term:
      list:
        - a
        - 1.10
        - 'quoted'
        - "double"
        - :v
        - {id: "1"}
`
	got, errs := Parse([]byte(doc), FormatYAML, "", LoadModeFailFast)
	require.Empty(t, errs)
	require.Len(t, got.Statements, 1)
	assert.Equal(t,
		ir.List(ir.Ident("a"), ir.Num("1.10"), ir.Str("quoted"), ir.Str("double"), ir.Var("v"), ir.Ident("1")),
		got.Statements[0].Term)
	assert.Nil(t, got.Statements[0].Labels)
}

func TestParse_EmptyDocument(t *testing.T) {
	got, errs := Parse(nil, FormatYAML, "", LoadModeFailFast)
	require.Empty(t, errs)
	assert.Equal(t, ir.StatementList{}, got)
}

func TestParse_NormalizesToNFC(t *testing.T) {
	doc := `statements: [{labels: ["cafe\u0301"], term: {term: "cafe\u0301", args: [{str: "cafe\u0301"}], fields: ["cafe\u0301"]}}]`
	got, errs := Parse([]byte(doc), FormatYAML, "", LoadModeFailFast)
	require.Empty(t, errs)

	const nfc = "caf\u00e9"
	want := ir.Stmt(ir.TM(nfc, []string{nfc}, ir.Str(nfc)), nfc)
	assert.Equal(t, want, got.Statements[0])
}

func TestEncode_RoundTrip(t *testing.T) {
	list := ir.StatementList{
		Statements: []ir.TermStatement{
			ir.Stmt(ir.TM("point", []string{"x", "y"}, ir.Num("1.10"), ir.Str("true")), "a", "b"),
			ir.Stmt(ir.List()),
		},
		Rules: []ir.RewriteRule{
			ir.Rule(ir.T("f", ir.Var("x"), ir.List(ir.Ident("k"))), ir.Var("x")),
		},
	}

	out, err := Encode(list)
	require.NoError(t, err)

	got, errs := Parse(out, FormatYAML, "", LoadModeFailFast)
	require.Empty(t, errs)
	assert.Equal(t, list, got)
}

func TestEncodeFormat(t *testing.T) {
	list := ir.StatementList{
		Statements: []ir.TermStatement{ir.Stmt(ir.T("t", ir.Num("123"), ir.Str("abc"), ir.List()), "root")},
		Rules:      []ir.RewriteRule{ir.Rule(ir.Ident("s0"), ir.T("s"))},
	}

	for _, format := range []Format{FormatYAML, FormatJSON} {
		t.Run(format.String(), func(t *testing.T) {
			out, err := EncodeFormat(list, format)
			require.NoError(t, err)

			got, errs := Parse(out, format, "", LoadModeFailFast)
			require.Empty(t, errs)
			assert.Equal(t, list, got)
		})
	}

	out, err := EncodeFormat(list, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"str": "abc"`)

	_, err = EncodeFormat(list, FormatCUE)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeFormat, le.Code)
}

func TestLoadError_Error(t *testing.T) {
	err := &LoadError{Code: ErrCodeClassMembers, Path: "statements[0].term", Message: "mismatch"}
	assert.Equal(t, "E203: statements[0].term: mismatch", err.Error())

	err = &LoadError{Code: ErrCodeNotFound, Message: "gone"}
	assert.Equal(t, "E005: gone", err.Error())
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{"a.yaml": FormatYAML, "a.YML": FormatYAML, "a.json": FormatJSON, "a.cue": FormatCUE} {
		got, err := FormatFromPath(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}
	assert.Equal(t, "cue", FormatCUE.String())
}

func TestConvertTerm(t *testing.T) {
	name := "point"
	got, err := ConvertTerm(TermNode{Term: &name, Args: []TermNode{{Num: ptr("1")}}, Fields: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, ir.TM("point", []string{"x"}, ir.Num("1")), got)

	_, err = ConvertTerm(TermNode{})
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeTermKind, loadErr.Code)
}
