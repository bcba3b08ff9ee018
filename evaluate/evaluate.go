// Package evaluate runs a resolved marker chain against one value.
package evaluate

import (
	"errors"
	"fmt"

	"hintbind/failure"
	"hintbind/marker"
	"hintbind/resolve"
)

// ErrMarkerPanic is wrapped by failures of markers that panicked.
var ErrMarkerPanic = errors.New("marker panicked")

// Step records one applied marker.
type Step struct {
	Index  int // position in the chain
	Marker marker.Marker
	Input  any
	Output any // value handed on; equals Input for validators
	Err    error
}

// Outcome is the result of running a chain. Exactly one of Value and
// Failure is meaningful: Failure is nil on success.
type Outcome struct {
	Value   any
	Failure *failure.MarkerFailure
	Trace   []Step
}

// OK reports success.
func (o Outcome) OK() bool { return o.Failure == nil }

// Run threads value through the chain in order. The first rejection stops
// evaluation; later markers are not applied. Markers without the
// Transform capability never change the value, whatever they return.
// A nil chain behaves like an empty one.
func Run(chain *resolve.Chain, value any) Outcome {
	if chain == nil {
		chain = &resolve.Chain{}
	}

	out := Outcome{Value: value, Trace: make([]Step, 0, chain.Len())}

	for i, link := range chain.Links {
		step := Step{Index: i, Marker: link.Marker, Input: out.Value}

		result, err := apply(link.Marker, out.Value)
		if err != nil {
			step.Err = err
			out.Trace = append(out.Trace, step)
			out.Failure = &failure.MarkerFailure{
				Field:    chain.Hint,
				Marker:   link.Marker.Description(),
				Position: i,
				Value:    out.Value,
				Err:      err,
			}
			out.Value = nil

			return out
		}

		if link.Marker.Capability().CanTransform() {
			out.Value = result
		}

		step.Output = out.Value
		out.Trace = append(out.Trace, step)
	}

	return out
}

func apply(m marker.Marker, value any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrMarkerPanic, r)
		}
	}()

	return m.Apply(value)
}
