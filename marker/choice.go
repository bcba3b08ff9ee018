package marker

import (
	"fmt"
	"reflect"
	"strings"
)

// EqualMarker requires the value to equal a target. Numbers compare by
// value regardless of their Go type.
type EqualMarker struct {
	target any
}

func Equal(target any) *EqualMarker { return &EqualMarker{target: target} }

func (e *EqualMarker) Apply(value any) (any, error) {
	if !equal(value, e.target) {
		return nil, reject(CodeNotEqual, "value not matching target %#v", e.target)
	}

	return value, nil
}

func (e *EqualMarker) Capability() Capability { return Validate }

func (e *EqualMarker) Priority() int { return 0 }

func (e *EqualMarker) Description() string { return fmt.Sprintf("equal[%v]", e.target) }

func (e *EqualMarker) Key() string { return fmt.Sprintf("equal(%#v)", e.target) }

// OneOfMarker requires the value to equal one of a fixed set of choices.
type OneOfMarker struct {
	choices []any

	compare func(value, choice any) bool
	code    uintptr
}

func OneOf(choices ...any) *OneOfMarker {
	return &OneOfMarker{choices: append([]any(nil), choices...), compare: equal}
}

// OneOfFunc is OneOf with a custom comparison. compare receives the value
// first and the choice second.
func OneOfFunc(compare func(value, choice any) bool, choices ...any) *OneOfMarker {
	return &OneOfMarker{
		choices: append([]any(nil), choices...),
		compare: compare,
		code:    reflect.ValueOf(compare).Pointer(),
	}
}

func (o *OneOfMarker) Apply(value any) (any, error) {
	for _, choice := range o.choices {
		if o.compare(value, choice) {
			return value, nil
		}
	}

	return nil, reject(CodeNotFound, "value not found in choices [%s]", o.list())
}

func (o *OneOfMarker) list() string {
	parts := make([]string, 0, len(o.choices))
	for _, c := range o.choices {
		parts = append(parts, fmt.Sprintf("%v", c))
	}

	return strings.Join(parts, ", ")
}

func (o *OneOfMarker) Capability() Capability { return Validate }

func (o *OneOfMarker) Priority() int { return 0 }

func (o *OneOfMarker) Description() string { return "oneof[" + o.list() + "]" }

func (o *OneOfMarker) Key() string {
	if o.code == 0 {
		return fmt.Sprintf("oneof(%#v)", o.choices)
	}

	return fmt.Sprintf("oneof(%#v,%x)", o.choices, o.code)
}
