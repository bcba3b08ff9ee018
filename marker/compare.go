package marker

import (
	"math"
	"reflect"
	"time"

	"hintbind/primitive"
)

// family groups kinds whose values can be ordered against each other.
type family int

const (
	familyNone family = iota
	familyNumber
	familyTime
	familyDuration
	familyString
)

func familyOf(k primitive.KindEnum) family {
	switch {
	case k.IsNumber():
		return familyNumber
	case k == primitive.KindTime:
		return familyTime
	case k == primitive.KindDuration:
		return familyDuration
	case k == primitive.KindString:
		return familyString
	default:
		return familyNone
	}
}

func (f family) kinds() primitive.KindSet {
	switch f {
	case familyNumber:
		return primitive.NumberKinds
	case familyTime:
		return primitive.SetOf(primitive.KindTime)
	case familyDuration:
		return primitive.SetOf(primitive.KindDuration)
	case familyString:
		return primitive.SetOf(primitive.KindString)
	default:
		return 0
	}
}

// deref follows pointers; ok is false for a nil pointer or nil value.
func deref(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}

		rv = rv.Elem()
	}

	return rv, rv.IsValid()
}

// compare orders a against b. ok is false when the two values are not in
// the same family or cannot be ordered (NaN).
func compare(a, b any) (int, bool) {
	ra, aok := deref(a)
	rb, bok := deref(b)

	if !aok || !bok {
		return 0, false
	}

	ka, kb := primitive.FromReflectType(ra.Type()), primitive.FromReflectType(rb.Type())
	fa := familyOf(ka)

	if fa == familyNone || fa != familyOf(kb) {
		return 0, false
	}

	switch fa {
	case familyNumber:
		return compareNumbers(ra, ka, rb, kb)
	case familyTime:
		ta, tb := ra.Interface().(time.Time), rb.Interface().(time.Time)
		return ta.Compare(tb), true
	case familyDuration:
		return cmpOrdered(ra.Int(), rb.Int()), true
	case familyString:
		return cmpOrdered(ra.String(), rb.String()), true
	}

	return 0, false
}

func compareNumbers(ra reflect.Value, ka primitive.KindEnum, rb reflect.Value, kb primitive.KindEnum) (int, bool) {
	switch {
	case ka.IsFloat() || kb.IsFloat():
		fa, fb := asFloat(ra, ka), asFloat(rb, kb)
		if math.IsNaN(fa) || math.IsNaN(fb) {
			return 0, false
		}

		return cmpOrdered(fa, fb), true
	case ka.IsSigned() && kb.IsSigned():
		return cmpOrdered(ra.Int(), rb.Int()), true
	case ka.IsUnsigned() && kb.IsUnsigned():
		return cmpOrdered(ra.Uint(), rb.Uint()), true
	case ka.IsSigned():
		if ra.Int() < 0 {
			return -1, true
		}

		return cmpOrdered(uint64(ra.Int()), rb.Uint()), true
	default:
		if rb.Int() < 0 {
			return 1, true
		}

		return cmpOrdered(ra.Uint(), uint64(rb.Int())), true
	}
}

func asFloat(rv reflect.Value, k primitive.KindEnum) float64 {
	switch {
	case k.IsFloat():
		return rv.Float()
	case k.IsSigned():
		return float64(rv.Int())
	default:
		return float64(rv.Uint())
	}
}

func cmpOrdered[T int64 | uint64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// equal compares two values semantically: numbers of different Go types
// compare by value, everything else with reflect.DeepEqual.
func equal(a, b any) bool {
	if c, ok := compare(a, b); ok {
		return c == 0
	}

	return reflect.DeepEqual(a, b)
}
