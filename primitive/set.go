package primitive

import "strings"

// KindSet is a set of kinds, used to declare which declared types a marker
// can operate on.
type KindSet uint64

// SetOf builds a set from the given kinds.
func SetOf(kinds ...KindEnum) KindSet {
	var s KindSet
	for _, k := range kinds {
		s |= 1 << uint(k)
	}

	return s
}

var (
	IntegerKinds = SetOf(KindInt, KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint, KindUint8, KindUint16, KindUint32, KindUint64)
	NumberKinds = IntegerKinds | SetOf(KindFloat32, KindFloat64)
	SizedKinds  = SetOf(KindString, KindSlice, KindArray, KindMap)
	AllKinds    = KindSet(1<<uint(KindTotal)-1) &^ 1
)

func (s KindSet) Has(k KindEnum) bool {
	return k.IsValid() && s&(1<<uint(k)) != 0
}

// Accepts reports whether a declared kind is compatible with the set.
// KindAny is accepted by every set since nothing is known statically.
func (s KindSet) Accepts(k KindEnum) bool {
	return k == KindAny || s.Has(k)
}

func (s KindSet) Kinds() []KindEnum {
	var kinds []KindEnum
	for k := KindEnum(1); int(k) < KindTotal; k++ {
		if s.Has(k) {
			kinds = append(kinds, k)
		}
	}

	return kinds
}

func (s KindSet) String() string {
	if s == AllKinds {
		return "any"
	}

	names := make([]string, 0, 4)
	for _, k := range s.Kinds() {
		names = append(names, k.String())
	}

	return "{" + strings.Join(names, ", ") + "}"
}
