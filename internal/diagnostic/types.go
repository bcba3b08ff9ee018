package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"hintbind/failure"
	"hintbind/internal/common"
	"hintbind/internal/tagparse"
	"hintbind/marker"
)

// Diagnostic codes.
const (
	CodeUnknownMarker = "unknown_marker"
	CodeInvalidMarker = "invalid_marker"
	CodeSyntax        = "syntax"
	CodeConflict      = "conflict"
	CodeTypeMismatch  = "type_mismatch"
	CodeUntyped       = "untyped_field"
	CodeUnmarked      = "unmarked"
	CodeLoad          = "load"
)

// Diagnostics holds all diagnostic information from a check.
type Diagnostics struct {
	Errors   []Diagnostic `json:"errors,omitempty" msgpack:"errors,omitempty"`
	Warnings []Diagnostic `json:"warnings,omitempty" msgpack:"warnings,omitempty"`
	Infos    []Diagnostic `json:"infos,omitempty" msgpack:"infos,omitempty"`
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Severity DiagnosticSeverity `json:"severity" msgpack:"severity"`
	// Code is a unique identifier for this type of diagnostic.
	Code    string `json:"code" msgpack:"code"`
	Message string `json:"message" msgpack:"message"`
	// Target and Field locate the declaration, when known.
	Target string `json:"target,omitempty" msgpack:"target,omitempty"`
	Field  string `json:"field,omitempty" msgpack:"field,omitempty"`
	// Position is the source position ("file.go:12:2"), when known.
	Position    string   `json:"position,omitempty" msgpack:"position,omitempty"`
	Suggestions []string `json:"suggestions,omitempty" msgpack:"suggestions,omitempty"`
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// MarshalText encodes the severity by name.
func (s DiagnosticSeverity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name as written by MarshalText.
func (s *DiagnosticSeverity) UnmarshalText(text []byte) error {
	for _, sev := range []DiagnosticSeverity{DiagnosticInfo, DiagnosticWarning, DiagnosticError} {
		if string(text) == sev.String() {
			*s = sev
			return nil
		}
	}

	return fmt.Errorf("unknown severity %q", text)
}

// Add files d by its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case DiagnosticError:
		d.Errors = append(d.Errors, diag)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, target, field string) {
	d.Add(Diagnostic{Severity: DiagnosticError, Code: code, Message: message, Target: target, Field: field})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, target, field string) {
	d.Add(Diagnostic{Severity: DiagnosticWarning, Code: code, Message: message, Target: target, Field: field})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, target, field string) {
	d.Add(Diagnostic{Severity: DiagnosticInfo, Code: code, Message: message, Target: target, Field: field})
}

// AddErr classifies err, which may be a joined tree of errors, and adds one
// error diagnostic per leaf.
func (d *Diagnostics) AddErr(err error, target, field, position string) {
	for _, leaf := range Leaves(err) {
		diag := FromError(leaf)
		diag.Target = target
		diag.Position = position

		if diag.Field == "" {
			diag.Field = field
		}

		d.Add(diag)
	}
}

// FromError converts a resolution error into an error diagnostic.
func FromError(err error) Diagnostic {
	diag := Diagnostic{Severity: DiagnosticError, Code: CodeInvalidMarker, Message: err.Error()}

	var (
		unknown  *marker.UnknownMarkerError
		conflict *failure.ConflictError
		mismatch *failure.TypeMismatchError
		syntax   *tagparse.SyntaxError
	)

	switch {
	case errors.As(err, &unknown):
		diag.Code = CodeUnknownMarker
		diag.Message = unknown.Error()

		if unknown.Suggestion != "" {
			diag.Suggestions = []string{unknown.Suggestion}
		}
	case errors.As(err, &conflict):
		diag.Code = CodeConflict
		diag.Field = conflict.Hint
		diag.Message = fmt.Sprintf("duplicate markers %s and %s", conflict.First, conflict.Second)
		diag.Suggestions = []string{fmt.Sprintf("remove the marker at position %d", conflict.SecondPosition)}
	case errors.As(err, &mismatch):
		diag.Code = CodeTypeMismatch
		diag.Field = mismatch.Hint
		diag.Message = fmt.Sprintf("marker %s accepts %s, field is %s", mismatch.Marker, mismatch.Accepts, mismatch.Declared)
	case errors.As(err, &syntax):
		diag.Code = CodeSyntax
		diag.Message = syntax.Error()
	}

	return diag
}

// Leaves flattens errors.Join trees. A wrapped error stays whole unless
// it wraps a join of several errors.
func Leaves(err error) []error {
	switch e := err.(type) {
	case nil:
		return nil
	case interface{ Unwrap() []error }:
		var out []error
		for _, inner := range e.Unwrap() {
			out = append(out, Leaves(inner)...)
		}

		return out
	case interface{ Unwrap() error }:
		if inner := Leaves(e.Unwrap()); len(inner) > 1 {
			return inner
		}
	}

	return []error{err}
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Len is the number of diagnostics of every severity.
func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Infos)
}

// All lists errors, then warnings, then infos.
func (d *Diagnostics) All() []Diagnostic {
	all := make([]Diagnostic, 0, d.Len())
	all = append(all, d.Errors...)
	all = append(all, d.Warnings...)

	return append(all, d.Infos...)
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Position != "" {
		prefix = append(prefix, d.Position)
	}

	if d.Target != "" {
		prefix = append(prefix, "["+d.Target+"]")
	}

	if d.Field != "" {
		prefix = append(prefix, d.Field)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
