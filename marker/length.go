package marker

import (
	"fmt"
	"reflect"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"hintbind/primitive"
	"hintbind/utils"
)

// LengthUnit selects how the length of a string is counted. Slices,
// arrays and maps always use their element count.
type LengthUnit int

const (
	Runes LengthUnit = iota
	Bytes
	Width // terminal display columns, East Asian wide runes count as two
)

func (u LengthUnit) String() string {
	switch u {
	case Bytes:
		return "bytes"
	case Width:
		return "width"
	default:
		return "runes"
	}
}

// ParseLengthUnit resolves "runes", "bytes" or "width".
func ParseLengthUnit(s string) (LengthUnit, bool) {
	switch s {
	case "", "runes":
		return Runes, true
	case "bytes":
		return Bytes, true
	case "width":
		return Width, true
	default:
		return Runes, false
	}
}

// LengthMarker checks the length of strings and collections against
// optional inclusive bounds.
type LengthMarker struct {
	min, max *int
	unit     LengthUnit
}

type LengthOption func(*LengthMarker)

// In selects the unit strings are measured in.
func In(unit LengthUnit) LengthOption { return func(l *LengthMarker) { l.unit = unit } }

// NewLength builds a length marker. A negative min or max leaves that side
// open.
func NewLength(min, max int, opts ...LengthOption) (*LengthMarker, error) {
	l := &LengthMarker{}
	if min >= 0 {
		l.min = &min
	}

	if max >= 0 {
		l.max = &max
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.min != nil && l.max != nil && *l.min > *l.max {
		return nil, fmt.Errorf("length: min %d exceeds max %d", min, max)
	}

	return l, nil
}

// Length is NewLength that panics on invalid bounds.
func Length(min, max int, opts ...LengthOption) *LengthMarker {
	l, err := NewLength(min, max, opts...)
	if err != nil {
		panic(err)
	}

	return l
}

// LengthExactly requires the length to be exactly n.
func LengthExactly(n int, opts ...LengthOption) *LengthMarker {
	return Length(n, n, opts...)
}

func (l *LengthMarker) Apply(value any) (any, error) {
	n, ok := l.measure(value)
	if !ok {
		return nil, reject(CodeUncomputableLength, "cannot compute length of value")
	}

	if !utils.IsInBounds(l.min, n, l.max) {
		return nil, reject(CodeLengthOutOfRange, "length %d outside of range [%s]", n, l.statement())
	}

	return value, nil
}

func (l *LengthMarker) measure(value any) (int, bool) {
	rv, ok := deref(value)
	if !ok {
		return 0, false
	}

	switch rv.Kind() {
	case reflect.String:
		s := rv.String()

		switch l.unit {
		case Bytes:
			return len(s), true
		case Width:
			return runewidth.StringWidth(s), true
		default:
			return utf8.RuneCountInString(s), true
		}
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	default:
		return 0, false
	}
}

func (l *LengthMarker) statement() string {
	statement := "?"
	if l.min != nil {
		statement = fmt.Sprintf("%d <= %s", *l.min, statement)
	}

	if l.max != nil {
		statement = fmt.Sprintf("%s <= %d", statement, *l.max)
	}

	return statement
}

func (l *LengthMarker) Capability() Capability { return Validate }

func (l *LengthMarker) Priority() int { return 0 }

func (l *LengthMarker) Description() string {
	if l.unit != Runes {
		return fmt.Sprintf("length[%s] in %s", l.statement(), l.unit)
	}

	return "length[" + l.statement() + "]"
}

func (l *LengthMarker) Accepts() primitive.KindSet { return primitive.SizedKinds }

func (l *LengthMarker) Key() string {
	return fmt.Sprintf("length(%s,%s)", l.statement(), l.unit)
}
