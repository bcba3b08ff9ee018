package primitive

// CategoryEnum is a bit set of conversion families a coerce marker may use.
type CategoryEnum int

const (
	CategorySafeNumber   CategoryEnum = 1 << iota // widening between numbers, never loses a value
	CategoryUnsafeNumber                          // every other number to number conversion, range checked at run time
	CategoryTextNumber                            // "42" <-> 42
	CategoryNumericBool                           // 0/1 <-> false/true
	CategoryTextualBool                           // "yes", "off", "true" <-> bool
	CategoryDatetime                              // RFC 3339 text <-> time
	CategoryTimestamp                             // Unix seconds <-> time
	CategoryDuration                              // "2h45m" <-> duration
	CategoryNanoseconds                           // integer nanoseconds <-> duration
	CategorySeconds                               // float seconds <-> duration

	CategoryAll  = (1 << iota) - 1
	CategoryNone = 0

	// CategoryDefault is what a coercion marker permits when no categories
	// are given: every lossless or runtime-checked conversion.
	CategoryDefault = CategorySafeNumber | CategoryUnsafeNumber | CategoryTextNumber |
		CategoryTextualBool | CategoryDatetime | CategoryDuration
)

// rule reports whether a category covers from -> to. Rules are symmetric
// unless they say otherwise.
type rule func(from, to KindEnum) bool

var rules = map[CategoryEnum]rule{
	CategorySafeNumber: widens,
	CategoryUnsafeNumber: func(from, to KindEnum) bool {
		return from.IsNumber() && to.IsNumber() && !widens(from, to)
	},
	CategoryTextNumber:  either(KindEnum.IsNumber, is(KindString)),
	CategoryNumericBool: either(KindEnum.IsInteger, is(KindBool)),
	CategoryTextualBool: either(is(KindString), is(KindBool)),
	CategoryDatetime:    either(is(KindString), is(KindTime)),
	CategoryTimestamp:   either(KindEnum.IsInteger, is(KindTime)),
	CategoryDuration:    either(is(KindString), is(KindDuration)),
	CategoryNanoseconds: either(func(k KindEnum) bool { return k.IsInteger() && k != KindUint64 }, is(KindDuration)),
	CategorySeconds:     either(KindEnum.IsFloat, is(KindDuration)),
}

func is(want KindEnum) func(KindEnum) bool {
	return func(k KindEnum) bool { return k == want }
}

// either matches a conversion between a kind accepted by a and one
// accepted by b, in any direction.
func either(a, b func(KindEnum) bool) rule {
	return func(from, to KindEnum) bool {
		return a(from) && b(to) || b(from) && a(to)
	}
}

// Platform-sized int and uint count as 64 bits when read and as 32 bits
// when written, so only conversions safe on every platform qualify.
func readWidth(k KindEnum) int {
	if k == KindInt || k == KindUint {
		return 64
	}

	return k.Bits()
}

func writeWidth(k KindEnum) int {
	if k == KindInt || k == KindUint {
		return 32
	}

	return k.Bits()
}

// mantissa is the widest integer a float kind holds exactly.
func mantissa(k KindEnum) int {
	if k == KindFloat32 {
		return 24
	}

	return 53
}

// widens reports whether every value of from is representable in to.
func widens(from, to KindEnum) bool {
	switch {
	case !from.IsNumber() || !to.IsNumber():
		return false
	case from == to:
		return true
	case from.IsFloat():
		return from == KindFloat32 && to == KindFloat64
	case to.IsFloat():
		return readWidth(from) <= mantissa(to)
	case from.IsSigned() && to.IsSigned(), from.IsUnsigned() && to.IsUnsigned():
		return readWidth(from) <= writeWidth(to)
	case from.IsUnsigned() && to.IsSigned():
		return readWidth(from) < writeWidth(to)
	default:
		return false
	}
}

// Allowed reports whether converting a value of kind from into kind to is
// permitted by any of the given categories. Identity is always allowed.
func Allowed(from, to KindEnum, categories CategoryEnum) bool {
	if from == to {
		return true
	}

	if !from.IsValid() || !to.IsValid() {
		return false
	}

	for category, covers := range rules {
		if categories&category != 0 && covers(from, to) {
			return true
		}
	}

	return false
}

var categoryNames = map[string]CategoryEnum{
	"safe-number":   CategorySafeNumber,
	"unsafe-number": CategoryUnsafeNumber,
	"text-number":   CategoryTextNumber,
	"numeric-bool":  CategoryNumericBool,
	"textual-bool":  CategoryTextualBool,
	"datetime":      CategoryDatetime,
	"timestamp":     CategoryTimestamp,
	"duration":      CategoryDuration,
	"nanoseconds":   CategoryNanoseconds,
	"seconds":       CategorySeconds,
	"all":           CategoryAll,
	"default":       CategoryDefault,
}

// ParseCategory resolves a category name as used in marker tags.
func ParseCategory(name string) (CategoryEnum, bool) {
	c, ok := categoryNames[name]
	return c, ok
}
