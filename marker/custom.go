package marker

import (
	"fmt"
	"reflect"
)

// PredicateMarker wraps a user predicate; it is the custom-validator
// extension point.
type PredicateMarker struct {
	desc string
	fn   func(any) bool
	code uintptr
}

// Predicate builds a validator from fn; desc is shown in failures.
func Predicate(desc string, fn func(any) bool) *PredicateMarker {
	return &PredicateMarker{desc: desc, fn: fn, code: reflect.ValueOf(fn).Pointer()}
}

// Check is Predicate for a statically typed value. Values of another type
// are rejected.
func Check[T any](desc string, fn func(T) bool) *PredicateMarker {
	return &PredicateMarker{
		desc: desc,
		code: reflect.ValueOf(fn).Pointer(),
		fn: func(v any) bool {
			t, ok := v.(T)
			return ok && fn(t)
		},
	}
}

func (p *PredicateMarker) Apply(value any) (any, error) {
	if !p.fn(value) {
		return nil, reject(CodeNotSatisfied, "custom predicate is not satisfied")
	}

	return value, nil
}

func (p *PredicateMarker) Capability() Capability { return Validate }

func (p *PredicateMarker) Priority() int { return 0 }

func (p *PredicateMarker) Description() string { return p.desc }

// Key identifies a predicate by description and code address. Two
// closures of the same literal with the same description count as
// duplicates.
func (p *PredicateMarker) Key() string {
	return fmt.Sprintf("predicate(%s,%x)", p.desc, p.code)
}

// FuncMarker wraps a user transformation.
type FuncMarker struct {
	desc string
	fn   func(any) (any, error)
	code uintptr
}

// Func builds a transformer from fn. Values that are not a T are rejected
// before fn is called.
func Func[T, U any](desc string, fn func(T) (U, error)) *FuncMarker {
	return &FuncMarker{
		desc: desc,
		code: reflect.ValueOf(fn).Pointer(),
		fn: func(v any) (any, error) {
			t, ok := v.(T)
			if !ok {
				var zero T
				return nil, reject(CodeNotConvertible, "expected %T, got %T", zero, v)
			}

			return fn(t)
		},
	}
}

func (f *FuncMarker) Apply(value any) (any, error) {
	out, err := f.fn(value)
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (f *FuncMarker) Capability() Capability { return Transform }

func (f *FuncMarker) Priority() int { return 0 }

func (f *FuncMarker) Description() string { return f.desc }

func (f *FuncMarker) Key() string { return fmt.Sprintf("func(%s,%x)", f.desc, f.code) }
