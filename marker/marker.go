// Package marker defines the unit of metadata attached to a hint and the
// built-in marker variants.
//
// A Marker validates, transforms, or does both to a single value. Markers
// are immutable once constructed and free of side effects beyond the
// returned value or rejection, so one instance can be shared by any number
// of chains and goroutines.
//
// Custom markers only need to implement the Marker interface. Implementing
// Typed lets the resolver reject a marker attached to a hint of the wrong
// declared type at construction time; implementing Keyed gives the
// resolver an exact identity for duplicate detection.
package marker

import (
	"fmt"
	"reflect"

	"hintbind/primitive"
)

// Capability is the set of things a marker may do to a value.
type Capability uint8

const (
	// Validate markers accept or reject a value and never change it.
	Validate Capability = 1 << iota
	// Transform markers may return a different value on success.
	Transform
)

func (c Capability) CanTransform() bool { return c&Transform != 0 }

func (c Capability) String() string {
	switch c {
	case Validate:
		return "validate"
	case Transform:
		return "transform"
	case Validate | Transform:
		return "validate+transform"
	default:
		return "none"
	}
}

// Marker is a single composable rule attached to a hint.
type Marker interface {
	// Apply checks or converts value. On success it returns the value to
	// hand to the next marker; on failure it returns a non-nil reason.
	Apply(value any) (any, error)
	Capability() Capability
	// Priority orders markers within a chain: ascending, ties keep
	// declaration order. Markers without an explicit priority return 0.
	Priority() int
	// Description is a short human readable form used in failures.
	Description() string
}

// Typed is implemented by markers that can only operate on some declared
// kinds.
type Typed interface {
	Accepts() primitive.KindSet
}

// Keyed is implemented by markers that can describe their type and
// configuration as a string. Equal keys mean duplicate markers.
type Keyed interface {
	Key() string
}

// Wrapper is implemented by decorators such as the one returned by
// WithPriority.
type Wrapper interface {
	Unwrap() Marker
}

// Unwrap strips every decorator from m.
func Unwrap(m Marker) Marker {
	for {
		w, ok := m.(Wrapper)
		if !ok {
			return m
		}

		m = w.Unwrap()
	}
}

// AcceptsOf returns the declared kinds m can operate on. Markers that do
// not implement Typed accept every kind.
func AcceptsOf(m Marker) primitive.KindSet {
	if t, ok := Unwrap(m).(Typed); ok {
		return t.Accepts()
	}

	return primitive.AllKinds
}

// Same reports whether a and b are duplicates: the same marker type with
// the same configuration. Priority decorators are ignored. Markers that
// do not implement Keyed compare with reflect.DeepEqual, which never
// panics on fields holding non-comparable values.
func Same(a, b Marker) bool {
	a, b = Unwrap(a), Unwrap(b)

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	ka, aok := a.(Keyed)
	kb, bok := b.(Keyed)

	if aok && bok {
		return ka.Key() == kb.Key()
	}

	return reflect.DeepEqual(a, b)
}

type prioritized struct {
	Marker
	priority int
}

func (p prioritized) Priority() int { return p.priority }

func (p prioritized) Unwrap() Marker { return p.Marker }

// WithPriority returns m with an explicit priority. Lower priorities run
// first.
func WithPriority(m Marker, priority int) Marker {
	return prioritized{Marker: Unwrap(m), priority: priority}
}

// Rejection codes reported by the built-in markers.
const (
	CodeOutOfRange         = "out_of_range"
	CodeIncomparable       = "incomparable"
	CodeLengthOutOfRange   = "length_out_of_range"
	CodeUncomputableLength = "uncomputable_length"
	CodeNotString          = "not_string"
	CodeNotMatched         = "not_matched"
	CodeNotFound           = "not_found"
	CodeNotEqual           = "not_equal"
	CodeNotSatisfied       = "not_satisfied"
	CodeNotConvertible     = "not_convertible"
	CodeOverflow           = "overflow"
)

// Rejection is the reason a built-in marker gives for refusing a value.
type Rejection struct {
	Code    string
	Message string
	Err     error
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return r.Message + ": " + r.Err.Error()
	}

	return r.Message
}

func (r *Rejection) Unwrap() error { return r.Err }

func reject(code, format string, args ...any) error {
	return &Rejection{Code: code, Message: fmt.Sprintf(format, args...)}
}

func rejectWrap(code string, err error, format string, args ...any) error {
	return &Rejection{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}
