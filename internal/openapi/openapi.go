// Package openapi turns the object schemas of an OpenAPI 3 document into
// definition targets: component schemas become struct targets, JSON
// request bodies become function targets named by operation id.
//
// Schema keywords map onto builtin markers:
//
//	minimum, maximum, exclusive*   range
//	minLength, maxLength           length
//	pattern                        pattern
//	enum                           oneof
//	required                       optional when absent
//	default                        default
//
// Numeric, boolean and date-time properties get a leading coerce marker
// so that decoded JSON values (float64, string) bind to the declared kind.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"hintbind/internal/definition"
	"hintbind/internal/tagparse"
	"hintbind/marker"
	"hintbind/primitive"
)

type Options struct {
	// Operations adds a function target per operation with a JSON
	// request body.
	Operations bool
	// NoCoerce leaves out the leading coerce markers.
	NoCoerce bool
}

// LoadFile reads and validates a document from disk.
func LoadFile(ctx context.Context, path string) (*openapi3.T, error) {
	loader := &openapi3.Loader{Context: ctx}

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("openapi: load %s: %w", path, err)
	}

	return validate(ctx, doc)
}

// LoadData reads and validates a document from memory.
func LoadData(ctx context.Context, data []byte) (*openapi3.T, error) {
	loader := &openapi3.Loader{Context: ctx}

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}

	return validate(ctx, doc)
}

func validate(ctx context.Context, doc *openapi3.T) (*openapi3.T, error) {
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate: %w", err)
	}

	return doc, nil
}

// Convert builds a definition document from doc. Targets are ordered by
// name, component schemas first.
func Convert(doc *openapi3.T, opts Options) (*definition.File, error) {
	if doc == nil {
		return nil, errors.New("openapi: nil document")
	}

	c := converter{opts: opts}
	f := &definition.File{Version: "1"}

	if doc.Components != nil {
		for _, name := range slices.Sorted(maps.Keys(doc.Components.Schemas)) {
			ref := doc.Components.Schemas[name]
			if !isObject(ref) {
				continue
			}

			f.Targets = append(f.Targets, c.target(name, "struct", ref.Value))
		}
	}

	if opts.Operations && doc.Paths != nil {
		ops, err := c.operations(doc.Paths)
		if err != nil {
			return nil, err
		}

		f.Targets = append(f.Targets, ops...)
	}

	return f, nil
}

type converter struct {
	opts Options
}

func (c converter) operations(paths *openapi3.Paths) ([]definition.TargetDef, error) {
	var (
		targets []definition.TargetDef
		seen    = map[string]string{}
	)

	for _, path := range slices.Sorted(maps.Keys(paths.Map())) {
		ops := paths.Value(path).Operations()

		for _, method := range slices.Sorted(maps.Keys(ops)) {
			op := ops[method]

			schema := requestSchema(op)
			if schema == nil {
				continue
			}

			name := op.OperationID
			if name == "" {
				name = strings.ToLower(method) + ":" + path
			}

			if prev, ok := seen[name]; ok {
				return nil, fmt.Errorf("openapi: operation %q declared by %s and %s %s", name, prev, method, path)
			}

			seen[name] = method + " " + path
			targets = append(targets, c.target(name, "function", schema))
		}
	}

	return targets, nil
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}

	mt := op.RequestBody.Value.Content.Get("application/json")
	if mt == nil || !isObject(mt.Schema) {
		return nil
	}

	return mt.Schema.Value
}

func (c converter) target(name, kind string, s *openapi3.Schema) definition.TargetDef {
	td := definition.TargetDef{Name: name, Kind: kind}

	for _, prop := range slices.Sorted(maps.Keys(s.Properties)) {
		ref := s.Properties[prop]
		if ref == nil || ref.Value == nil {
			continue
		}

		td.Fields = append(td.Fields, c.field(prop, ref.Value, slices.Contains(s.Required, prop)))
	}

	return td
}

func (c converter) field(name string, s *openapi3.Schema, required bool) definition.FieldDef {
	kind := kindOf(s)

	fd := definition.FieldDef{
		Name:     name,
		Type:     kind.String(),
		Optional: !required || s.Default != nil,
		Default:  s.Default,
	}

	if !c.opts.NoCoerce && coerced.Has(kind) {
		fd.Marks = append(fd.Marks, "coerce("+kind.String()+")")

		// Defaults skip the chain, so they are stored already coerced.
		if fd.Default != nil {
			if v, err := marker.Coerce(kind).Apply(fd.Default); err == nil {
				fd.Default = v
			}
		}
	}

	var choices []string

	for _, v := range s.Enum {
		if v != nil {
			choices = append(choices, literal(v))
		}
	}

	if len(choices) > 0 {
		fd.Marks = append(fd.Marks, "oneof("+strings.Join(choices, ", ")+")")
	}

	if s.Min != nil || s.Max != nil {
		fd.Marks = append(fd.Marks, rangeSpec(s))
	}

	if s.MinLength != 0 || s.MaxLength != nil {
		fd.Marks = append(fd.Marks, lengthSpec(s.MinLength, s.MaxLength))
	}

	if s.Pattern != "" {
		fd.Marks = append(fd.Marks, "pattern("+tagparse.Quote(s.Pattern)+")")
	}

	return fd
}

var coerced = primitive.SetOf(
	primitive.KindInt32, primitive.KindInt64,
	primitive.KindFloat32, primitive.KindFloat64,
	primitive.KindBool, primitive.KindTime,
)

func kindOf(s *openapi3.Schema) primitive.KindEnum {
	switch typeOf(s) {
	case openapi3.TypeInteger:
		if s.Format == "int32" {
			return primitive.KindInt32
		}

		return primitive.KindInt64
	case openapi3.TypeNumber:
		if s.Format == "float" {
			return primitive.KindFloat32
		}

		return primitive.KindFloat64
	case openapi3.TypeBoolean:
		return primitive.KindBool
	case openapi3.TypeString:
		if s.Format == "date-time" {
			return primitive.KindTime
		}

		return primitive.KindString
	case openapi3.TypeArray:
		return primitive.KindSlice
	case openapi3.TypeObject:
		return primitive.KindMap
	default:
		return primitive.KindAny
	}
}

// typeOf is the first declared type that is not "null".
func typeOf(s *openapi3.Schema) string {
	if s == nil || s.Type == nil {
		return ""
	}

	for _, t := range s.Type.Slice() {
		if t != "null" {
			return t
		}
	}

	return ""
}

func isObject(ref *openapi3.SchemaRef) bool {
	return ref != nil && ref.Value != nil && typeOf(ref.Value) == openapi3.TypeObject
}

func rangeSpec(s *openapi3.Schema) string {
	bound := func(v *float64) string {
		if v == nil {
			return "_"
		}

		return number(*v)
	}

	args := []string{bound(s.Min), bound(s.Max)}

	if s.ExclusiveMin && s.Min != nil {
		args = append(args, "exclusive_min=true")
	}

	if s.ExclusiveMax && s.Max != nil {
		args = append(args, "exclusive_max=true")
	}

	return "range(" + strings.Join(args, ", ") + ")"
}

func lengthSpec(lo uint64, hi *uint64) string {
	switch {
	case hi == nil:
		return fmt.Sprintf("length(min=%d)", lo)
	case lo == *hi:
		return fmt.Sprintf("length(eq=%d)", lo)
	case lo == 0:
		return fmt.Sprintf("length(max=%d)", *hi)
	default:
		return fmt.Sprintf("length(%d, %d)", lo, *hi)
	}
}

// literal renders an enum value as a spec argument.
func literal(v any) string {
	switch v := v.(type) {
	case string:
		return tagparse.Quote(v)
	case float64:
		return number(v)
	default:
		return fmt.Sprint(v)
	}
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
