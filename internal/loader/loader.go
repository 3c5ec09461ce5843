// Package loader reads programs from YAML, JSON and CUE documents into the
// AST shapes of package ir.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/trl/internal/ir"
)

// LoadMode controls how errors are handled during loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Format is the syntax of a program document.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
	FormatCUE
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatCUE:
		return "cue"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Error code constants.
const (
	ErrCodeGeneric         = "E001" // Generic/unknown error
	ErrCodeFormat          = "E002" // Unsupported file extension
	ErrCodeParseFailed     = "E004" // YAML/JSON decode failed
	ErrCodeNotFound        = "E005" // Path not found
	ErrCodeBuildFailed     = "E006" // CUE build failed
	ErrCodeTermKind        = "E201" // Term node sets zero or several kinds
	ErrCodeTermShape       = "E202" // args/fields outside a term node
	ErrCodeClassMembers    = "E203" // Class member count differs from arity
	ErrCodeQualifiedMember = "E204" // Class member contains '.'
	ErrCodeEmptyName       = "E205" // Empty identifier, variable, term name or label
	ErrCodeNumber          = "E206" // Number text does not parse
)

// LoadError represents an error that occurred while loading a program.
type LoadError struct {
	Code    string
	Message string
	Path    string    // Document path such as statements[0].term.args[1]
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// FormatFromPath picks the document format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return 0, &LoadError{Code: ErrCodeFormat, Message: fmt.Sprintf("unsupported program file %s (want .yaml, .yml, .json or .cue)", path)}
	}
}

// LoadFile reads and converts the program at path.
func LoadFile(path string, mode LoadMode) (ir.StatementList, []error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return ir.StatementList{}, []error{err}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ir.StatementList{}, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("program file not found: %s", path)}}
	}
	if err != nil {
		return ir.StatementList{}, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("reading %s: %v", path, err)}}
	}

	return Parse(data, format, path, mode)
}

// Parse converts a program held in memory. filename only labels positions.
func Parse(data []byte, format Format, filename string, mode LoadMode) (ir.StatementList, []error) {
	if format == FormatCUE {
		return parseCUE(data, filename, mode)
	}

	doc, err := Decode(data)
	if err != nil {
		return ir.StatementList{}, []error{err}
	}
	return Convert(doc, mode)
}

// Decode parses a YAML or JSON document, rejecting unknown fields.
func Decode(data []byte) (Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Document{}, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("failed to parse document: %v", err)}
	}
	return doc, nil
}

func parseCUE(data []byte, filename string, mode LoadMode) (ir.StatementList, []error) {
	v := cuecontext.New().CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return ir.StatementList{}, []error{cueError(err)}
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return ir.StatementList{}, []error{cueError(err)}
	}

	js, err := v.MarshalJSON()
	if err != nil {
		return ir.StatementList{}, []error{cueError(err)}
	}
	doc, err := Decode(js)
	if err != nil {
		return ir.StatementList{}, []error{err}
	}

	list, errs := Convert(doc, mode)
	for _, err := range errs {
		var loadErr *LoadError
		if !errors.As(err, &loadErr) || loadErr.Path == "" {
			continue
		}
		if at := v.LookupPath(cue.ParsePath(loadErr.Path)); at.Exists() {
			loadErr.Pos = at.Pos()
		}
	}
	return list, errs
}

// cueError keeps the first CUE error and its position.
func cueError(err error) *LoadError {
	loadErr := &LoadError{Code: ErrCodeBuildFailed, Message: err.Error()}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return loadErr
	}
	first := errs[0]
	loadErr.Message = first.Error()
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		loadErr.Pos = positions[0]
	}
	return loadErr
}
