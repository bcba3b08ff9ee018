package primitive

import (
	"math"
	"reflect"
	"strings"
	"time"
)

type KindEnum int

const (
	_ KindEnum = iota // skip zero value, use it as a default (invalid) value for KindEnum

	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindTime
	KindDuration
	KindSlice
	KindArray
	KindMap
	KindAny // interfaces and every type the kinds above do not describe

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

var kindNames = [...]string{
	KindInt:      "int",
	KindInt8:     "int8",
	KindInt16:    "int16",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindUint:     "uint",
	KindUint8:    "uint8",
	KindUint16:   "uint16",
	KindUint32:   "uint32",
	KindUint64:   "uint64",
	KindFloat32:  "float32",
	KindFloat64:  "float64",
	KindBool:     "bool",
	KindString:   "string",
	KindTime:     "time",
	KindDuration: "duration",
	KindSlice:    "slice",
	KindArray:    "array",
	KindMap:      "map",
	KindAny:      "any",
}

// String returns the Go-ish name of the kind ("int", "time", "any").
func (k KindEnum) String() string {
	if k <= 0 || int(k) >= KindTotal {
		return "invalid"
	}

	return kindNames[k]
}

func (k KindEnum) IsValid() bool {
	return k > 0 && int(k) < KindTotal
}

func (k KindEnum) IsNumber() bool {
	switch k {
	default:
		return false
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint, KindUint8, KindUint16, KindUint32, KindUint64,
		KindFloat32, KindFloat64:
		return true
	}
}

func (k KindEnum) IsInteger() bool {
	switch k {
	default:
		return false
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
}

func (k KindEnum) IsFloat() bool {
	switch k {
	default:
		return false
	case KindFloat32, KindFloat64:
		return true
	}
}

func (k KindEnum) IsSigned() bool {
	switch k {
	default:
		return false
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	}
}

func (k KindEnum) IsUnsigned() bool {
	switch k {
	default:
		return false
	case KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
}

// IsSized reports whether len() is meaningful for values of the kind.
func (k KindEnum) IsSized() bool {
	switch k {
	default:
		return false
	case KindString, KindSlice, KindArray, KindMap:
		return true
	}
}

func (k KindEnum) Bits() int {
	switch k {
	default:
		panic("only number kinds has meaningful bits amount, but requested for: " + k.String())
	case KindInt, KindUint:
		power := 0
		for n := uint(math.MaxUint); n > 0; n >>= 1 {
			power++
		}
		return power
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32:
		return 32
	case KindInt64, KindUint64:
		return 64
	case KindFloat32:
		return 32
	case KindFloat64:
		return 64
	}
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// FromReflectType classifies a declared type. Pointers are classified by
// their element type, named types by their underlying kind.
func FromReflectType(rtype reflect.Type) KindEnum {
	if rtype == nil {
		return 0
	}

	for rtype.Kind() == reflect.Pointer {
		rtype = rtype.Elem()
	}

	switch rtype {
	case timeType:
		return KindTime
	case durationType:
		return KindDuration
	}

	switch rtype.Kind() {
	case reflect.Int:
		return KindInt
	case reflect.Int8:
		return KindInt8
	case reflect.Int16:
		return KindInt16
	case reflect.Int32:
		return KindInt32
	case reflect.Int64:
		return KindInt64
	case reflect.Uint:
		return KindUint
	case reflect.Uint8:
		return KindUint8
	case reflect.Uint16:
		return KindUint16
	case reflect.Uint32:
		return KindUint32
	case reflect.Uint64:
		return KindUint64
	case reflect.Float32:
		return KindFloat32
	case reflect.Float64:
		return KindFloat64
	case reflect.Bool:
		return KindBool
	case reflect.String:
		return KindString
	case reflect.Slice:
		return KindSlice
	case reflect.Array:
		return KindArray
	case reflect.Map:
		return KindMap
	default:
		return KindAny
	}
}

// FromValue classifies the dynamic type of v; nil is KindAny.
func FromValue(v any) KindEnum {
	if v == nil {
		return KindAny
	}

	return FromReflectType(reflect.TypeOf(v))
}

var namedKinds = map[string]KindEnum{
	"int":           KindInt,
	"int8":          KindInt8,
	"int16":         KindInt16,
	"int32":         KindInt32,
	"rune":          KindInt32,
	"int64":         KindInt64,
	"uint":          KindUint,
	"uint8":         KindUint8,
	"byte":          KindUint8,
	"uint16":        KindUint16,
	"uint32":        KindUint32,
	"uint64":        KindUint64,
	"float32":       KindFloat32,
	"float64":       KindFloat64,
	"bool":          KindBool,
	"string":        KindString,
	"time":          KindTime,
	"time.Time":     KindTime,
	"duration":      KindDuration,
	"time.Duration": KindDuration,
	"slice":         KindSlice,
	"array":         KindArray,
	"map":           KindMap,
	"any":           KindAny,
	"interface{}":   KindAny,
}

// ParseKind resolves a type name as written in definition files and tag
// arguments ("int64", "time.Duration", "[]string"). It returns false for
// names it does not know.
func ParseKind(name string) (KindEnum, bool) {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "*")

	switch {
	case strings.HasPrefix(name, "[]"):
		return KindSlice, true
	case strings.HasPrefix(name, "["):
		return KindArray, true
	case strings.HasPrefix(name, "map["):
		return KindMap, true
	}

	k, ok := namedKinds[name]

	return k, ok
}

var reflectTypes = map[KindEnum]reflect.Type{
	KindInt:      reflect.TypeOf(int(0)),
	KindInt8:     reflect.TypeOf(int8(0)),
	KindInt16:    reflect.TypeOf(int16(0)),
	KindInt32:    reflect.TypeOf(int32(0)),
	KindInt64:    reflect.TypeOf(int64(0)),
	KindUint:     reflect.TypeOf(uint(0)),
	KindUint8:    reflect.TypeOf(uint8(0)),
	KindUint16:   reflect.TypeOf(uint16(0)),
	KindUint32:   reflect.TypeOf(uint32(0)),
	KindUint64:   reflect.TypeOf(uint64(0)),
	KindFloat32:  reflect.TypeOf(float32(0)),
	KindFloat64:  reflect.TypeOf(float64(0)),
	KindBool:     reflect.TypeOf(false),
	KindString:   reflect.TypeOf(""),
	KindTime:     timeType,
	KindDuration: durationType,
	KindSlice:    reflect.TypeOf([]any(nil)),
	KindMap:      reflect.TypeOf(map[string]any(nil)),
	KindAny:      reflect.TypeOf((*any)(nil)).Elem(),
}

// ReflectType returns the canonical Go type for a kind, or nil for kinds
// without one (arrays have no canonical length).
func (k KindEnum) ReflectType() reflect.Type {
	return reflectTypes[k]
}
