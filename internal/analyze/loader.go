package analyze

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"go/types"
	"reflect"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"hintbind/hint"
	"hintbind/marker"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedTypes |
	packages.NeedImports

// Analyzer loads Go packages and collects their exported structs.
type Analyzer struct {
	graph    *TypeGraph
	dir      string
	tagKey   string
	registry *marker.Registry
	logger   *zap.Logger
}

type Option func(*Analyzer)

// WithDir sets the directory patterns are resolved in.
func WithDir(dir string) Option { return func(a *Analyzer) { a.dir = dir } }

// WithTagKey changes the struct tag holding marker specs.
func WithTagKey(key string) Option { return func(a *Analyzer) { a.tagKey = key } }

// WithRegistry resolves marker names against r instead of marker.Default().
func WithRegistry(r *marker.Registry) Option { return func(a *Analyzer) { a.registry = r } }

func WithLogger(l *zap.Logger) Option { return func(a *Analyzer) { a.logger = l } }

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		graph:    NewTypeGraph(),
		tagKey:   hint.DefaultTagKey,
		registry: marker.Default(),
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// LoadPackages loads the specified packages and adds their structs to the
// graph. Patterns are standard Go package patterns (e.g., "./store",
// "hintbind/store").
func (a *Analyzer) LoadPackages(ctx context.Context, patterns ...string) (*TypeGraph, error) {
	cfg := &packages.Config{
		Context: ctx,
		Mode:    LoadMode,
		Dir:     a.dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	// Check for package errors
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	for _, pkg := range pkgs {
		a.AddPackage(pkg.Fset, pkg.Types)
	}

	return a.graph, nil
}

// Graph returns the current type graph.
func (a *Analyzer) Graph() *TypeGraph {
	return a.graph
}

// AddPackage adds the exported structs of a type-checked package. fset
// resolves positions and may be nil.
func (a *Analyzer) AddPackage(fset *token.FileSet, pkg *types.Package) {
	pkgInfo := &PackageInfo{
		Path: pkg.Path(),
		Name: pkg.Name(),
	}

	scope := pkg.Scope()
	for _, name := range scope.Names() {
		typeName, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !typeName.Exported() || typeName.IsAlias() {
			continue
		}

		st, ok := typeName.Type().Underlying().(*types.Struct)
		if !ok {
			continue
		}

		id := TypeID{PkgPath: pkg.Path(), Name: name}
		a.graph.Structs[id] = &StructInfo{
			ID:     id,
			Fields: visibleFields(fset, st),
			Pos:    position(fset, typeName.Pos()),
		}
		pkgInfo.Structs = append(pkgInfo.Structs, id)
	}

	a.graph.Packages[pkg.Path()] = pkgInfo
	a.logger.Debug("package analyzed",
		zap.String("package", pkg.Path()),
		zap.Int("structs", len(pkgInfo.Structs)),
	)
}

func position(fset *token.FileSet, pos token.Pos) token.Position {
	if fset == nil || !pos.IsValid() {
		return token.Position{}
	}

	return fset.Position(pos)
}

type walked struct {
	field FieldInfo
	depth int
}

// visibleFields mirrors reflect.VisibleFields: promoted fields follow the
// embedded field, shallower fields hide deeper ones of the same name and
// names that clash at the same depth are dropped.
func visibleFields(fset *token.FileSet, st *types.Struct) []FieldInfo {
	var all []walked

	walk(fset, st, nil, 0, map[*types.Struct]bool{st: true}, &all)

	shallowest := map[string]int{}
	count := map[string]int{}

	for _, w := range all {
		d, ok := shallowest[w.field.Name]
		switch {
		case !ok || w.depth < d:
			shallowest[w.field.Name] = w.depth
			count[w.field.Name] = 1
		case w.depth == d:
			count[w.field.Name]++
		}
	}

	var fields []FieldInfo

	for _, w := range all {
		if w.depth == shallowest[w.field.Name] && count[w.field.Name] == 1 {
			fields = append(fields, w.field)
		}
	}

	return fields
}

func walk(fset *token.FileSet, st *types.Struct, index []int, depth int, seen map[*types.Struct]bool, out *[]walked) {
	for i := range st.NumFields() {
		f := st.Field(i)
		idx := append(slices.Clone(index), i)

		if f.Embedded() {
			if inner, ok := embeddedStruct(f.Type()); ok {
				if !seen[inner] {
					seen[inner] = true
					walk(fset, inner, idx, depth+1, seen, out)
					delete(seen, inner)
				}

				continue
			}
		}

		if !f.Exported() {
			continue
		}

		*out = append(*out, walked{
			field: FieldInfo{
				Name:     f.Name(),
				Type:     f.Type(),
				Kind:     KindOf(f.Type()),
				Tag:      reflect.StructTag(st.Tag(i)),
				Embedded: depth > 0,
				Index:    idx,
				Pos:      position(fset, f.Pos()),
			},
			depth: depth,
		})
	}
}

func embeddedStruct(t types.Type) (*types.Struct, bool) {
	t = types.Unalias(t)
	if p, ok := t.(*types.Pointer); ok {
		t = types.Unalias(p.Elem())
	}

	st, ok := t.Underlying().(*types.Struct)

	return st, ok
}
