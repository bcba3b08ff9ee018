package hint

import (
	"fmt"
	"reflect"
	"strings"

	"hintbind/marker"
)

// DefaultTagKey is the struct tag holding marker specs.
const DefaultTagKey = "mark"

type structOptions struct {
	tagKey   string
	registry *marker.Registry
	name     string
}

type StructOption func(*structOptions)

// WithTagKey reads markers from another struct tag.
func WithTagKey(key string) StructOption { return func(o *structOptions) { o.tagKey = key } }

// WithRegistry resolves marker names in tags against r instead of
// marker.Default().
func WithRegistry(r *marker.Registry) StructOption {
	return func(o *structOptions) { o.registry = r }
}

// WithName overrides the target name, which defaults to the Go type name.
func WithName(name string) StructOption { return func(o *structOptions) { o.name = name } }

// Struct reads a target from a struct value, a pointer to one, or a
// reflect.Type. Every exported field becomes a hint, promoted fields of
// embedded structs included. Fields tagged `mark:"-"` are skipped. The
// hint name is the json name when a json tag is present. Pointer fields are
// optional.
func Struct(v any, opts ...StructOption) (*Target, error) {
	o := structOptions{tagKey: DefaultTagKey}
	for _, opt := range opts {
		opt(&o)
	}

	if o.registry == nil {
		o.registry = marker.Default()
	}

	typ, ok := v.(reflect.Type)
	if !ok {
		typ = reflect.TypeOf(v)
	}

	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("hint: %v is not a struct", typ)
	}

	if o.name == "" {
		o.name = typ.Name()
	}

	var hints []Hint

	for _, f := range reflect.VisibleFields(typ) {
		if !f.IsExported() || (f.Anonymous && derefType(f.Type).Kind() == reflect.Struct) {
			continue
		}

		spec, tagged := f.Tag.Lookup(o.tagKey)
		if spec == "-" {
			continue
		}

		h := Field(fieldName(f), f.Type)
		h.Index = f.Index
		h.Optional = f.Type.Kind() == reflect.Pointer

		if tagged {
			markers, err := o.registry.Parse(spec)
			if err != nil {
				return nil, fmt.Errorf("hint: %s.%s: %w", o.name, f.Name, err)
			}

			for _, m := range markers {
				h.Meta = append(h.Meta, m)
			}
		}

		h.Meta = append(h.Meta, otherTags(f.Tag, o.tagKey)...)
		hints = append(hints, h)
	}

	t, err := NewTarget(o.name, KindStruct, hints...)
	if err != nil {
		return nil, err
	}

	t.Type = typ

	return t, nil
}

// MustStruct is Struct that panics, for package level declarations.
func MustStruct(v any, opts ...StructOption) *Target {
	t, err := Struct(v, opts...)
	if err != nil {
		panic(err)
	}

	return t
}

func derefType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

func fieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}

	return name
}

// otherTags splits a struct tag into key/value pairs, skipping the marker
// tag.
func otherTags(tag reflect.StructTag, skip string) []any {
	var tags []any

	rest := string(tag)
	for rest != "" {
		rest = strings.TrimLeft(rest, " ")

		colon := strings.Index(rest, ":\"")
		if colon <= 0 {
			break
		}

		key := rest[:colon]
		rest = rest[colon+1:]

		end := 1
		for end < len(rest) && rest[end] != '"' {
			if rest[end] == '\\' {
				end++
			}
			end++
		}

		if end >= len(rest) {
			break
		}

		if key != skip {
			if value, ok := tag.Lookup(key); ok {
				tags = append(tags, Tag{Key: key, Value: value})
			}
		}

		rest = rest[end+1:]
	}

	return tags
}

// Function reads a target from a function value. Parameter types come from
// the signature; params supply names, metadata, optionality and defaults
// in parameter order and must cover every parameter.
func Function(name string, fn any, params ...Hint) (*Target, error) {
	typ := reflect.TypeOf(fn)
	if typ == nil || typ.Kind() != reflect.Func {
		return nil, fmt.Errorf("hint: %s: %T is not a function", name, fn)
	}

	if typ.NumIn() != len(params) {
		return nil, fmt.Errorf("hint: %s: function takes %d parameters, %d declared",
			name, typ.NumIn(), len(params))
	}

	hints := make([]Hint, len(params))
	for i, p := range params {
		p.Type = typ.In(i)
		p.Kind = 0
		hints[i] = p
	}

	t, err := NewTarget(name, KindFunction, hints...)
	if err != nil {
		return nil, err
	}

	t.Type = typ

	return t, nil
}
