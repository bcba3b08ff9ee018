// Package failure holds the structured error values reported while
// resolving marker chains and binding values.
//
// Resolution-time errors (ConflictError, TypeMismatchError) signal a
// programming error in the declared metadata and are returned from chain
// resolution and binder construction. Evaluation-time errors
// (MissingValueError, MarkerFailure, UnknownValueError) are data errors;
// they are collected per field into an AggregateFailure and never abort
// the evaluation of sibling fields.
package failure

import (
	"errors"
	"fmt"
	"strings"

	"hintbind/primitive"
)

var (
	// ErrResolution matches every resolution-time error with errors.Is.
	ErrResolution = errors.New("marker resolution failed")
	// ErrValidation matches every evaluation-time error with errors.Is.
	ErrValidation = errors.New("value validation failed")
)

// ConflictError reports two duplicate markers attached to the same hint.
type ConflictError struct {
	Hint           string
	First, Second  string // marker descriptions
	FirstPosition  int
	SecondPosition int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("hint %q: duplicate markers %q (position %d) and %q (position %d)",
		e.Hint, e.First, e.FirstPosition, e.Second, e.SecondPosition)
}

func (e *ConflictError) Is(target error) bool { return target == ErrResolution }

// TypeMismatchError reports a marker attached to a hint whose declared kind
// it cannot operate on.
type TypeMismatchError struct {
	Hint     string
	Marker   string
	Position int
	Declared primitive.KindEnum
	Accepts  primitive.KindSet
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("hint %q: marker %q (position %d) accepts %s, declared type is %s",
		e.Hint, e.Marker, e.Position, e.Accepts, e.Declared)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrResolution }

// MissingValueError reports a required hint with no supplied value.
type MissingValueError struct {
	Target string
	Field  string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("%s: missing required value", qualify(e.Target, e.Field))
}

func (e *MissingValueError) Is(target error) bool { return target == ErrValidation }

// UnknownValueError reports a supplied value that matches no hint. It is
// only produced by binders in strict mode.
type UnknownValueError struct {
	Target     string
	Field      string
	Suggestion string // closest declared hint name, if any is similar
}

func (e *UnknownValueError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: no such field, did you mean %q?", qualify(e.Target, e.Field), e.Suggestion)
	}

	return fmt.Sprintf("%s: no such field", qualify(e.Target, e.Field))
}

func (e *UnknownValueError) Is(target error) bool { return target == ErrValidation }

// MarkerFailure reports the marker that rejected a value.
type MarkerFailure struct {
	Target   string
	Field    string
	Marker   string // description of the rejecting marker
	Position int    // index of the marker in the resolved chain
	Value    any    // the value as it reached the marker
	Err      error  // reason given by the marker
}

func (e *MarkerFailure) Error() string {
	prefix := qualify(e.Target, e.Field)
	if prefix != "" {
		prefix += ": "
	}

	return fmt.Sprintf("%s%s: %v (value %#v)", prefix, e.Marker, e.Err, e.Value)
}

func (e *MarkerFailure) Unwrap() error { return e.Err }

func (e *MarkerFailure) Is(target error) bool { return target == ErrValidation }

// WithField returns a copy of the failure attributed to the given target
// and field.
func (e *MarkerFailure) WithField(target, field string) *MarkerFailure {
	cp := *e
	cp.Target = target
	cp.Field = field

	return &cp
}

func qualify(target, field string) string {
	switch {
	case target == "":
		return field
	case field == "":
		return target
	default:
		return target + "." + field
	}
}

// AggregateFailure lists every per-field failure of one bind call, in the
// declaration order of the target's hints.
type AggregateFailure struct {
	Target   string
	Failures []error
}

func (e *AggregateFailure) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}

	return fmt.Sprintf("%s: %d field(s) failed: %s", e.Target, len(e.Failures), strings.Join(parts, "; "))
}

func (e *AggregateFailure) Unwrap() []error { return e.Failures }

// Fields returns the distinct field names that failed, in order.
func (e *AggregateFailure) Fields() []string {
	seen := make(map[string]struct{}, len(e.Failures))

	var fields []string
	for _, f := range e.Failures {
		name := FieldOf(f)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		fields = append(fields, name)
	}

	return fields
}

// For returns the failures reported for one field.
func (e *AggregateFailure) For(field string) []error {
	var out []error
	for _, f := range e.Failures {
		if FieldOf(f) == field {
			out = append(out, f)
		}
	}

	return out
}

// FieldOf extracts the field name from any per-field failure.
func FieldOf(err error) string {
	var (
		mf *MarkerFailure
		mv *MissingValueError
		uv *UnknownValueError
	)

	switch {
	case errors.As(err, &mf):
		return mf.Field
	case errors.As(err, &mv):
		return mv.Field
	case errors.As(err, &uv):
		return uv.Field
	default:
		return ""
	}
}
