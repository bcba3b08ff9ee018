package analyze

import (
	"go/token"
	"go/types"
	"maps"
	"reflect"
	"slices"
	"strings"

	"hintbind/internal/common"
	"hintbind/primitive"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "hintbind/store"
	Name    string // e.g., "Order"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// Qualified is the target name: package alias and type name.
func (t TypeID) Qualified() string {
	return common.Qualified(t.PkgPath, t.Name)
}

func (t TypeID) compare(o TypeID) int {
	if c := strings.Compare(t.PkgPath, o.PkgPath); c != 0 {
		return c
	}

	return strings.Compare(t.Name, o.Name)
}

// StructInfo describes an exported struct type.
type StructInfo struct {
	ID     TypeID
	Fields []FieldInfo // visible exported fields, promoted ones included
	Pos    token.Position
}

// Marked reports whether any field carries the tag key.
func (s *StructInfo) Marked(tagKey string) bool {
	return slices.ContainsFunc(s.Fields, func(f FieldInfo) bool { return f.HasTag(tagKey) })
}

// FieldInfo describes a struct field.
type FieldInfo struct {
	Name     string             // Go field name
	Type     types.Type         // declared type
	Kind     primitive.KindEnum // static classification of Type
	Tag      reflect.StructTag  // raw struct tag
	Embedded bool               // promoted from an embedded struct
	Index    []int              // field index path
	Pos      token.Position
}

// JSONName returns the JSON tag name if present, otherwise the field name.
func (f *FieldInfo) JSONName() string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}

	return name
}

// HasTag returns true if the field has the specified tag.
func (f *FieldInfo) HasTag(key string) bool {
	_, ok := f.Tag.Lookup(key)
	return ok
}

// GetTag returns the value of the specified tag.
func (f *FieldInfo) GetTag(key string) string {
	return f.Tag.Get(key)
}

// Optional reports a pointer field.
func (f *FieldInfo) Optional() bool {
	_, ok := types.Unalias(f.Type).(*types.Pointer)
	return ok
}

// TypeString renders the field type with package aliases: "*store.Address".
func (f *FieldInfo) TypeString() string {
	return types.TypeString(f.Type, func(p *types.Package) string {
		return common.PkgAlias(p.Path())
	})
}

// TypeGraph holds the structs of all analyzed packages.
type TypeGraph struct {
	// Structs maps TypeID to StructInfo for all exported structs.
	Structs map[TypeID]*StructInfo
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Structs:  make(map[TypeID]*StructInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetStruct returns the StructInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetStruct(id TypeID) *StructInfo {
	return g.Structs[id]
}

// Sorted lists structs by package path, then name.
func (g *TypeGraph) Sorted() []*StructInfo {
	ids := slices.SortedFunc(maps.Keys(g.Structs), TypeID.compare)

	out := make([]*StructInfo, len(ids))
	for i, id := range ids {
		out[i] = g.Structs[id]
	}

	return out
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path    string   // Import path
	Name    string   // Package name
	Structs []TypeID // exported structs defined in this package
}

// KindOf classifies a go/types type the way primitive.FromReflectType
// classifies the matching reflect.Type.
func KindOf(t types.Type) primitive.KindEnum {
	t = types.Unalias(t)
	for {
		p, ok := t.(*types.Pointer)
		if !ok {
			break
		}

		t = types.Unalias(p.Elem())
	}

	if named, ok := t.(*types.Named); ok {
		if obj := named.Obj(); obj.Pkg() != nil && obj.Pkg().Path() == "time" {
			switch obj.Name() {
			case "Time":
				return primitive.KindTime
			case "Duration":
				return primitive.KindDuration
			}
		}
	}

	switch u := t.Underlying().(type) {
	case *types.Basic:
		if k, ok := basicKinds[u.Kind()]; ok {
			return k
		}

		return primitive.KindAny
	case *types.Slice:
		return primitive.KindSlice
	case *types.Array:
		return primitive.KindArray
	case *types.Map:
		return primitive.KindMap
	default:
		return primitive.KindAny
	}
}

var basicKinds = map[types.BasicKind]primitive.KindEnum{
	types.Int:     primitive.KindInt,
	types.Int8:    primitive.KindInt8,
	types.Int16:   primitive.KindInt16,
	types.Int32:   primitive.KindInt32,
	types.Int64:   primitive.KindInt64,
	types.Uint:    primitive.KindUint,
	types.Uint8:   primitive.KindUint8,
	types.Uint16:  primitive.KindUint16,
	types.Uint32:  primitive.KindUint32,
	types.Uint64:  primitive.KindUint64,
	types.Float32: primitive.KindFloat32,
	types.Float64: primitive.KindFloat64,
	types.Bool:    primitive.KindBool,
	types.String:  primitive.KindString,
}
