package marker

import (
	"errors"
	"fmt"

	"hintbind/primitive"
)

// RangeMarker checks that a value falls within optional lower and upper
// bounds. Bounds may be numbers of any Go type, time.Time, time.Duration
// or strings; the bounds decide which declared kinds the marker accepts.
type RangeMarker struct {
	min, max     any
	exclusiveMin bool
	exclusiveMax bool
	family       family
}

type RangeOption func(*RangeMarker)

// ExclusiveMin excludes the lower bound itself from the range.
func ExclusiveMin() RangeOption { return func(r *RangeMarker) { r.exclusiveMin = true } }

// ExclusiveMax excludes the upper bound itself from the range.
func ExclusiveMax() RangeOption { return func(r *RangeMarker) { r.exclusiveMax = true } }

// NewRange builds a range marker; a nil bound leaves that side open.
func NewRange(min, max any, opts ...RangeOption) (*RangeMarker, error) {
	if min == nil && max == nil {
		return nil, errors.New("range: at least one bound is required")
	}

	r := &RangeMarker{min: min, max: max}
	for _, opt := range opts {
		opt(r)
	}

	fmin, fmax := boundFamily(min), boundFamily(max)

	switch {
	case min != nil && fmin == familyNone:
		return nil, fmt.Errorf("range: unsupported bound type %T", min)
	case max != nil && fmax == familyNone:
		return nil, fmt.Errorf("range: unsupported bound type %T", max)
	case min != nil && max != nil && fmin != fmax:
		return nil, fmt.Errorf("range: bounds %T and %T are not comparable", min, max)
	case min != nil && max != nil:
		if c, _ := compare(min, max); c > 0 {
			return nil, fmt.Errorf("range: lower bound %v exceeds upper bound %v", min, max)
		}
	}

	r.family = fmin
	if min == nil {
		r.family = fmax
	}

	return r, nil
}

// Range is NewRange that panics on invalid bounds, for use in static
// metadata declarations.
func Range(min, max any, opts ...RangeOption) *RangeMarker {
	r, err := NewRange(min, max, opts...)
	if err != nil {
		panic(err)
	}

	return r
}

// Min is a range with only a lower bound.
func Min(v any, opts ...RangeOption) *RangeMarker { return Range(v, nil, opts...) }

// Max is a range with only an upper bound.
func Max(v any, opts ...RangeOption) *RangeMarker { return Range(nil, v, opts...) }

func boundFamily(v any) family {
	if v == nil {
		return familyNone
	}

	return familyOf(primitive.FromValue(v))
}

func (r *RangeMarker) Apply(value any) (any, error) {
	inside, ordered := r.contains(value)

	switch {
	case !ordered:
		return nil, reject(CodeIncomparable, "cannot compare value against the range [%s]", r.statement())
	case !inside:
		return nil, reject(CodeOutOfRange, "value outside of range [%s]", r.statement())
	}

	return value, nil
}

func (r *RangeMarker) contains(value any) (bool, bool) {
	if r.min != nil {
		c, ok := compare(value, r.min)
		if !ok {
			return false, false
		}

		if c < 0 || (c == 0 && r.exclusiveMin) {
			return false, true
		}
	}

	if r.max != nil {
		c, ok := compare(value, r.max)
		if !ok {
			return false, false
		}

		if c > 0 || (c == 0 && r.exclusiveMax) {
			return false, true
		}
	}

	return true, true
}

func (r *RangeMarker) statement() string {
	statement := "?"
	if r.min != nil {
		op := "<="
		if r.exclusiveMin {
			op = "<"
		}

		statement = fmt.Sprintf("%v %s %s", r.min, op, statement)
	}

	if r.max != nil {
		op := "<="
		if r.exclusiveMax {
			op = "<"
		}

		statement = fmt.Sprintf("%s %s %v", statement, op, r.max)
	}

	return statement
}

func (r *RangeMarker) Capability() Capability { return Validate }

func (r *RangeMarker) Priority() int { return 0 }

func (r *RangeMarker) Description() string { return "range[" + r.statement() + "]" }

func (r *RangeMarker) Accepts() primitive.KindSet { return r.family.kinds() }

func (r *RangeMarker) Key() string {
	return fmt.Sprintf("range(%#v,%#v,%t,%t)", r.min, r.max, r.exclusiveMin, r.exclusiveMax)
}
