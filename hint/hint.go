// Package hint models the annotated things markers are attached to.
//
// A Hint is one named, typed slot (a struct field, a function parameter, a
// module attribute) together with its ordered metadata. Metadata is any
// sequence of values; the values implementing marker.Marker form the
// hint's markers, everything else (for example struct Tags) is carried
// along and ignored by resolution.
//
// A Target groups the hints of one struct, function or module. Sources
// produce targets: reflection over Go values lives in this package,
// definition files, OpenAPI documents and package analysis in
// internal packages.
package hint

import (
	"errors"
	"fmt"
	"reflect"

	"hintbind/primitive"
)

// ErrDuplicateHint is returned when a target declares two hints with the
// same name.
var ErrDuplicateHint = errors.New("duplicate hint name")

// Hint is one annotated slot.
type Hint struct {
	Name string
	// Type is the declared Go type. Sources that are not backed by Go
	// types (definition files, OpenAPI) leave it nil and set Kind.
	Type reflect.Type
	Kind primitive.KindEnum
	// Meta is the metadata in declaration order.
	Meta []any

	Optional   bool
	Default    any
	HasDefault bool
	// DefaultFunc, when set, produces the default on every use instead
	// of Default.
	DefaultFunc func() any

	// Index is the field index path for hints read from a struct.
	Index []int
}

// Tag is a struct tag other than the marker tag. It travels in Meta so
// that no annotation information is lost, and is never a marker.
type Tag struct {
	Key   string
	Value string
}

// Of declares a hint typed by the type parameter.
func Of[T any](name string, meta ...any) Hint {
	return Field(name, reflect.TypeFor[T](), meta...)
}

// Field declares a hint of the given Go type.
func Field(name string, typ reflect.Type, meta ...any) Hint {
	return Hint{Name: name, Type: typ, Kind: primitive.FromReflectType(typ), Meta: meta}
}

// Declared declares a hint known only by kind.
func Declared(name string, kind primitive.KindEnum, meta ...any) Hint {
	return Hint{Name: name, Kind: kind, Meta: meta}
}

// Param declares a function parameter; its type is taken from the function
// signature by Function.
func Param(name string, meta ...any) Hint {
	return Hint{Name: name, Meta: meta}
}

// AsOptional marks the hint as not required. A missing value is left out
// of the bound result.
func (h Hint) AsOptional() Hint {
	h.Optional = true
	return h
}

// WithDefault makes the hint optional and binds v when no value is given.
// Defaults are used as is and do not pass through the marker chain.
func (h Hint) WithDefault(v any) Hint {
	h.Optional = true
	h.Default = v
	h.HasDefault = true
	h.DefaultFunc = nil

	return h
}

// WithDefaultFunc is WithDefault with a factory called once per bind, so
// that mutable defaults such as slices and maps are never shared.
func (h Hint) WithDefaultFunc(fn func() any) Hint {
	h.Optional = true
	h.Default = nil
	h.HasDefault = true
	h.DefaultFunc = fn

	return h
}

// DefaultValue returns the default to bind for a missing value.
func (h Hint) DefaultValue() any {
	if h.DefaultFunc != nil {
		return h.DefaultFunc()
	}

	return h.Default
}

// DeclaredKind is Kind, falling back to the kind of Type and then to
// KindAny.
func (h Hint) DeclaredKind() primitive.KindEnum {
	switch {
	case h.Kind.IsValid():
		return h.Kind
	case h.Type != nil:
		return primitive.FromReflectType(h.Type)
	default:
		return primitive.KindAny
	}
}

// TargetKind says what a target was read from.
type TargetKind int

const (
	KindStruct TargetKind = iota + 1
	KindFunction
	KindModule
)

func (k TargetKind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindFunction:
		return "function"
	case KindModule:
		return "module"
	default:
		return "unknown"
	}
}

// Target is a named collection of hints with unique names.
type Target struct {
	Name  string
	Kind  TargetKind
	Hints []Hint

	// Type is the struct or function type for targets read by reflection.
	Type reflect.Type
}

// NewTarget validates hint names and fills in missing kinds.
func NewTarget(name string, kind TargetKind, hints ...Hint) (*Target, error) {
	seen := make(map[string]struct{}, len(hints))
	t := &Target{Name: name, Kind: kind, Hints: make([]Hint, 0, len(hints))}

	for _, h := range hints {
		if h.Name == "" {
			return nil, fmt.Errorf("target %q: hint without a name", name)
		}

		if _, dup := seen[h.Name]; dup {
			return nil, fmt.Errorf("target %q: %w: %q", name, ErrDuplicateHint, h.Name)
		}

		seen[h.Name] = struct{}{}
		h.Kind = h.DeclaredKind()
		t.Hints = append(t.Hints, h)
	}

	return t, nil
}

// Module declares a namespace of attributes.
func Module(name string, hints ...Hint) (*Target, error) {
	return NewTarget(name, KindModule, hints...)
}

// Hint returns the hint with the given name.
func (t *Target) Hint(name string) (Hint, bool) {
	for _, h := range t.Hints {
		if h.Name == name {
			return h, true
		}
	}

	return Hint{}, false
}

// Names lists hint names in declaration order.
func (t *Target) Names() []string {
	names := make([]string, len(t.Hints))
	for i, h := range t.Hints {
		names[i] = h.Name
	}

	return names
}
