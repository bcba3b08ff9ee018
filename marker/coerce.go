package marker

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"fortio.org/safecast"

	"hintbind/primitive"
)

// CoerceMarker converts a value into a target kind. Which source kinds are
// convertible is decided by coercion categories (see primitive). A value
// already of the target kind passes through unchanged, so coercion is
// idempotent.
type CoerceMarker struct {
	to         primitive.KindEnum
	categories primitive.CategoryEnum
}

// NewCoerce builds a coercion into kind to. Without categories
// primitive.CategoryDefault applies.
func NewCoerce(to primitive.KindEnum, categories ...primitive.CategoryEnum) (*CoerceMarker, error) {
	switch {
	case !to.IsValid():
		return nil, fmt.Errorf("coerce: invalid target kind %d", to)
	case to == primitive.KindAny || to == primitive.KindSlice || to == primitive.KindArray || to == primitive.KindMap:
		return nil, fmt.Errorf("coerce: cannot coerce into %s", to)
	}

	c := &CoerceMarker{to: to}
	for _, category := range categories {
		c.categories |= category
	}

	if c.categories == primitive.CategoryNone {
		c.categories = primitive.CategoryDefault
	}

	return c, nil
}

// Coerce is NewCoerce that panics on an unsupported target kind.
func Coerce(to primitive.KindEnum, categories ...primitive.CategoryEnum) *CoerceMarker {
	c, err := NewCoerce(to, categories...)
	if err != nil {
		panic(err)
	}

	return c
}

func (c *CoerceMarker) Apply(value any) (any, error) {
	rv, ok := deref(value)
	if !ok {
		return nil, reject(CodeNotConvertible, "cannot convert nil to %s", c.to)
	}

	from := primitive.FromReflectType(rv.Type())
	if from == c.to {
		return rv.Interface(), nil
	}

	if !primitive.Allowed(from, c.to, c.categories) {
		return nil, reject(CodeNotConvertible, "cannot convert %s to %s", from, c.to)
	}

	return convert(rv, from, c.to)
}

func (c *CoerceMarker) Capability() Capability { return Transform }

func (c *CoerceMarker) Priority() int { return 0 }

func (c *CoerceMarker) Description() string { return "coerce[" + c.to.String() + "]" }

func (c *CoerceMarker) Accepts() primitive.KindSet { return primitive.SetOf(c.to) }

func (c *CoerceMarker) Key() string { return fmt.Sprintf("coerce(%s,%d)", c.to, c.categories) }

// Target returns the kind values are converted into.
func (c *CoerceMarker) Target() primitive.KindEnum { return c.to }

//nolint:gocyclo // one case per conversion pair family
func convert(rv reflect.Value, from, to primitive.KindEnum) (any, error) {
	switch {
	case from.IsNumber() && to.IsNumber():
		return castNumber(rv, from, to)

	case from == primitive.KindString && to.IsNumber():
		return parseNumber(strings.TrimSpace(rv.String()), to)

	case from.IsNumber() && to == primitive.KindString:
		return formatNumber(rv, from), nil

	case from == primitive.KindString && to == primitive.KindBool:
		return parseBoolFlag(rv.String())

	case from == primitive.KindBool && to == primitive.KindString:
		return strconv.FormatBool(rv.Bool()), nil

	case from.IsInteger() && to == primitive.KindBool:
		switch formatNumber(rv, from) {
		case "0":
			return false, nil
		case "1":
			return true, nil
		default:
			return nil, reject(CodeNotConvertible, "only 0 and 1 convert to bool, got %v", rv.Interface())
		}

	case from == primitive.KindBool && to.IsInteger():
		var n int64
		if rv.Bool() {
			n = 1
		}

		return castTo(n, to)

	case from == primitive.KindString && to == primitive.KindTime:
		return parseTime(strings.TrimSpace(rv.String()))

	case from == primitive.KindTime && to == primitive.KindString:
		return rv.Interface().(time.Time).Format(time.RFC3339Nano), nil

	case from.IsInteger() && to == primitive.KindTime:
		secs, err := castNumber(rv, from, primitive.KindInt64)
		if err != nil {
			return nil, err
		}

		return time.Unix(secs.(int64), 0).UTC(), nil

	case from == primitive.KindTime && to.IsInteger():
		return castTo(rv.Interface().(time.Time).Unix(), to)

	case from == primitive.KindString && to == primitive.KindDuration:
		d, err := time.ParseDuration(strings.TrimSpace(rv.String()))
		if err != nil {
			return nil, rejectWrap(CodeNotConvertible, err, "cannot parse duration %q", rv.String())
		}

		return d, nil

	case from == primitive.KindDuration && to == primitive.KindString:
		return time.Duration(rv.Int()).String(), nil

	case from.IsInteger() && to == primitive.KindDuration:
		ns, err := castNumber(rv, from, primitive.KindInt64)
		if err != nil {
			return nil, err
		}

		return time.Duration(ns.(int64)), nil

	case from == primitive.KindDuration && to.IsInteger():
		return castTo(rv.Int(), to)

	case from.IsFloat() && to == primitive.KindDuration:
		secs := rv.Float()
		if math.IsNaN(secs) || math.IsInf(secs, 0) || math.Abs(secs) > math.MaxInt64/float64(time.Second) {
			return nil, reject(CodeOverflow, "cannot represent %v seconds as a duration", secs)
		}

		return time.Duration(secs * float64(time.Second)), nil

	case from == primitive.KindDuration && to.IsFloat():
		return castTo(time.Duration(rv.Int()).Seconds(), to)
	}

	return nil, reject(CodeNotConvertible, "cannot convert %s to %s", from, to)
}

func castNumber(rv reflect.Value, from, to primitive.KindEnum) (any, error) {
	switch {
	case from.IsSigned():
		return castTo(rv.Int(), to)
	case from.IsUnsigned():
		return castTo(rv.Uint(), to)
	}

	f := rv.Float()
	if to.IsInteger() && (math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f)) {
		return nil, reject(CodeNotConvertible, "%v has no exact %s representation", f, to)
	}

	return castTo(f, to)
}

type number interface {
	int | int8 | int16 | int32 | int64 |
		uint | uint8 | uint16 | uint32 | uint64 |
		float32 | float64
}

func castTo[N number](x N, to primitive.KindEnum) (any, error) {
	switch to {
	case primitive.KindInt:
		return conv[int](x)
	case primitive.KindInt8:
		return conv[int8](x)
	case primitive.KindInt16:
		return conv[int16](x)
	case primitive.KindInt32:
		return conv[int32](x)
	case primitive.KindInt64:
		return conv[int64](x)
	case primitive.KindUint:
		return conv[uint](x)
	case primitive.KindUint8:
		return conv[uint8](x)
	case primitive.KindUint16:
		return conv[uint16](x)
	case primitive.KindUint32:
		return conv[uint32](x)
	case primitive.KindUint64:
		return conv[uint64](x)
	case primitive.KindFloat32:
		return conv[float32](x)
	case primitive.KindFloat64:
		return conv[float64](x)
	default:
		return nil, reject(CodeNotConvertible, "%s is not a number kind", to)
	}
}

func conv[T, N number](x N) (any, error) {
	out, err := narrow[T](x)
	if err != nil {
		return nil, rejectWrap(CodeOverflow, err, "cannot represent %v as %T", x, out)
	}

	return out, nil
}

// narrow converts x into T. Integer conversions must keep the
// value exactly. Conversions involving one float go through
// safecast.Convert and must round trip. Between floats only overflow
// fails: float64 -> float32 rounds to the nearest float32.
func narrow[T, N number](x N) (T, error) {
	if v, ok := any(x).(T); ok {
		return v, nil
	}

	out := T(x)

	switch {
	case isFloat[N]() && isFloat[T]():
		if math.IsInf(float64(out), 0) && !math.IsInf(float64(x), 0) {
			return out, safecast.ErrOutOfRange
		}

		return out, nil
	case isFloat[N]() || isFloat[T]():
		return safecast.Convert[T](x)
	case (x >= 0) != (out >= 0) || N(out) != x:
		return out, safecast.ErrOutOfRange
	default:
		return out, nil
	}
}

func isFloat[T number]() bool {
	var zero T

	switch any(zero).(type) {
	case float32, float64:
		return true
	default:
		return false
	}
}

func parseNumber(s string, to primitive.KindEnum) (any, error) {
	switch {
	case to.IsSigned():
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, rejectWrap(CodeNotConvertible, err, "cannot parse %q as %s", s, to)
		}

		return castTo(n, to)
	case to.IsUnsigned():
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, rejectWrap(CodeNotConvertible, err, "cannot parse %q as %s", s, to)
		}

		return castTo(n, to)
	default:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, rejectWrap(CodeNotConvertible, err, "cannot parse %q as %s", s, to)
		}

		return castTo(f, to)
	}
}

func formatNumber(rv reflect.Value, from primitive.KindEnum) string {
	switch {
	case from.IsSigned():
		return strconv.FormatInt(rv.Int(), 10)
	case from.IsUnsigned():
		return strconv.FormatUint(rv.Uint(), 10)
	default:
		return strconv.FormatFloat(rv.Float(), 'g', -1, from.Bits())
	}
}

var (
	trueFlags  = []string{"1", "y", "yes", "true", "on"}
	falseFlags = []string{"0", "n", "no", "false", "off"}
)

func parseBoolFlag(s string) (any, error) {
	flag := strings.ToLower(strings.TrimSpace(s))

	for _, t := range trueFlags {
		if flag == t {
			return true, nil
		}
	}

	for _, f := range falseFlags {
		if flag == f {
			return false, nil
		}
	}

	return nil, reject(CodeNotConvertible, "cannot convert given value flag to boolean: %q", s)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

func parseTime(s string) (any, error) {
	var firstErr error

	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}

		if firstErr == nil {
			firstErr = err
		}
	}

	return nil, rejectWrap(CodeNotConvertible, firstErr, "cannot parse %q as time", s)
}
