package marker

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"hintbind/failure"
	"hintbind/internal/match"
	"hintbind/internal/tagparse"
	"hintbind/primitive"
)

// Factory builds a marker from textual arguments, as written in a `mark`
// struct tag or a definition file.
type Factory func(args Args) (Marker, error)

// Args are the arguments of one marker invocation. Unquoted values are
// typed by ParseValue; quoted values are always strings.
type Args struct {
	Positional []any
	Named      map[string]any

	raw      []string
	rawNamed map[string]string
}

// Value returns the argument given by name, or else the positional
// argument at index i. A negative i only looks at the name.
func (a Args) Value(i int, name string) (any, bool) {
	if v, ok := a.Named[name]; ok && name != "" {
		return v, true
	}

	if i >= 0 && i < len(a.Positional) {
		return a.Positional[i], true
	}

	return nil, false
}

// Str is Value rendered as the text it was written as.
func (a Args) Str(i int, name string) (string, bool) {
	if s, ok := a.rawNamed[name]; ok && name != "" {
		return s, true
	}

	if _, ok := a.Named[name]; !ok && i >= 0 && i < len(a.raw) {
		return a.raw[i], true
	}

	v, ok := a.Value(i, name)
	if !ok {
		return "", false
	}

	if s, isStr := v.(string); isStr {
		return s, true
	}

	return fmt.Sprint(v), true
}

// Int is Value required to be an integer.
func (a Args) Int(i int, name string) (int, bool, error) {
	v, ok := a.Value(i, name)
	if !ok {
		return 0, false, nil
	}

	n, isInt := v.(int)
	if !isInt {
		return 0, true, fmt.Errorf("argument %s must be an integer, got %v", argName(i, name), v)
	}

	return n, true, nil
}

// Bool is Value required to be a boolean; a bare key=true is typical.
func (a Args) Bool(i int, name string) (bool, error) {
	v, ok := a.Value(i, name)
	if !ok {
		return false, nil
	}

	b, isBool := v.(bool)
	if !isBool {
		return false, fmt.Errorf("argument %s must be a boolean, got %v", argName(i, name), v)
	}

	return b, nil
}

func argName(i int, name string) string {
	if name != "" {
		return strconv.Quote(name)
	}

	return "#" + strconv.Itoa(i+1)
}

// ParseValue types an unquoted argument: integer, float, boolean, RFC 3339
// time and Go duration are tried in that order before falling back to the
// string itself.
func ParseValue(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}

	switch s {
	case "true":
		return true
	case "false":
		return false
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d
	}

	return s
}

func argsOf(items []tagparse.Arg) Args {
	var a Args

	for _, item := range items {
		var v any = item.Value
		if !item.Quoted {
			v = ParseValue(item.Value)
		}

		if item.Key == "" {
			a.Positional = append(a.Positional, v)
			a.raw = append(a.raw, item.Value)

			continue
		}

		if a.Named == nil {
			a.Named = map[string]any{}
			a.rawNamed = map[string]string{}
		}

		a.Named[item.Key] = v
		a.rawNamed[item.Key] = item.Value
	}

	return a
}

// UnknownMarkerError reports a marker name no factory is registered for.
type UnknownMarkerError struct {
	Name       string
	Suggestion string
}

func (e *UnknownMarkerError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown marker %q, did you mean %q?", e.Name, e.Suggestion)
	}

	return fmt.Sprintf("unknown marker %q", e.Name)
}

func (e *UnknownMarkerError) Is(target error) bool { return target == failure.ErrResolution }

// Registry maps marker names to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry holding the built-in markers.
func NewRegistry() *Registry {
	r := &Registry{factories: map[string]Factory{}}
	for name, f := range builtins() {
		r.factories[name] = f
	}

	return r
}

var defaultRegistry = sync.OnceValue(NewRegistry)

// Default is the process wide registry used when no other is configured.
func Default() *Registry { return defaultRegistry() }

// Register adds a factory. Names are case sensitive and may not be reused.
func (r *Registry) Register(name string, f Factory) error {
	if f == nil {
		return errors.New("marker: nil factory")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("marker %q is already registered", name)
	}

	r.factories[name] = f

	return nil
}

// Names lists registered marker names in alphabetical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.factories))
}

// Build constructs the named marker.
func (r *Registry) Build(name string, args Args) (Marker, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		suggestion, _ := match.Suggest(name, r.Names())
		return nil, &UnknownMarkerError{Name: name, Suggestion: suggestion}
	}

	m, err := f(args)
	if err != nil {
		return nil, fmt.Errorf("marker %q: %w", name, err)
	}

	return m, nil
}

// Parse builds the markers of a spec string such as
// "coerce(int); range(0, 120)@10". Order of the result follows the text.
func (r *Registry) Parse(spec string) ([]Marker, error) {
	items, err := tagparse.Parse(spec)
	if err != nil {
		return nil, err
	}

	markers := make([]Marker, 0, len(items))

	for _, item := range items {
		m, err := r.Build(item.Name, argsOf(item.Args))
		if err != nil {
			return nil, err
		}

		if item.Priority != nil {
			m = WithPriority(m, *item.Priority)
		}

		markers = append(markers, m)
	}

	return markers, nil
}

func builtins() map[string]Factory {
	return map[string]Factory{
		"range":   buildRange,
		"min":     buildBound(true),
		"max":     buildBound(false),
		"length":  buildLength,
		"pattern": buildPattern,
		"equal":   buildEqual,
		"oneof":   buildOneOf,
		"coerce":  buildCoerce,
		"trim":    func(Args) (Marker, error) { return Trim(), nil },
		"lower":   func(Args) (Marker, error) { return Lower(), nil },
		"upper":   func(Args) (Marker, error) { return Upper(), nil },
		"normalize": func(a Args) (Marker, error) {
			form, ok := a.Str(0, "form")
			if !ok {
				form = "nfc"
			}

			return NewNormalize(form)
		},
		"sanitize": func(a Args) (Marker, error) {
			policy, _ := a.Str(0, "policy")
			return NewSanitize(policy)
		},
	}
}

func rangeOptions(a Args) ([]RangeOption, error) {
	var opts []RangeOption

	exMin, err := a.Bool(-1, "exclusive_min")
	if err != nil {
		return nil, err
	}

	exMax, err := a.Bool(-1, "exclusive_max")
	if err != nil {
		return nil, err
	}

	if exMin {
		opts = append(opts, ExclusiveMin())
	}

	if exMax {
		opts = append(opts, ExclusiveMax())
	}

	return opts, nil
}

func buildRange(a Args) (Marker, error) {
	opts, err := rangeOptions(a)
	if err != nil {
		return nil, err
	}

	lo, _ := a.Value(0, "min")
	hi, _ := a.Value(1, "max")

	// "_" leaves a side open when written positionally.
	if lo == "_" {
		lo = nil
	}

	if hi == "_" {
		hi = nil
	}

	return NewRange(lo, hi, opts...)
}

func buildBound(lower bool) Factory {
	return func(a Args) (Marker, error) {
		opts, err := rangeOptions(a)
		if err != nil {
			return nil, err
		}

		v, ok := a.Value(0, "value")
		if !ok {
			return nil, errors.New("a bound is required")
		}

		if lower {
			return NewRange(v, nil, opts...)
		}

		return NewRange(nil, v, opts...)
	}
}

func buildLength(a Args) (Marker, error) {
	unitName, _ := a.Str(-1, "unit")

	unit, ok := ParseLengthUnit(unitName)
	if !ok {
		return nil, fmt.Errorf("unknown length unit %q", unitName)
	}

	eq, hasEq, err := a.Int(-1, "eq")
	if err != nil {
		return nil, err
	}

	if hasEq {
		return NewLength(eq, eq, In(unit))
	}

	lo, hasLo, err := a.Int(0, "min")
	if err != nil {
		return nil, err
	}

	hi, hasHi, err := a.Int(1, "max")
	if err != nil {
		return nil, err
	}

	switch {
	case !hasLo && !hasHi:
		return nil, errors.New("min, max or eq is required")
	case !hasLo:
		lo = -1
	case !hasHi:
		hi = -1
	}

	return NewLength(lo, hi, In(unit))
}

func buildPattern(a Args) (Marker, error) {
	expr, ok := a.Str(0, "expr")
	if !ok {
		return nil, errors.New("a regular expression is required")
	}

	return NewPattern(expr)
}

func buildEqual(a Args) (Marker, error) {
	v, ok := a.Value(0, "value")
	if !ok {
		return nil, errors.New("a value is required")
	}

	return Equal(v), nil
}

func buildOneOf(a Args) (Marker, error) {
	if len(a.Positional) == 0 {
		return nil, errors.New("at least one choice is required")
	}

	return OneOf(a.Positional...), nil
}

func buildCoerce(a Args) (Marker, error) {
	kindName, ok := a.Str(0, "kind")
	if !ok {
		return nil, errors.New("a target kind is required")
	}

	kind, ok := primitive.ParseKind(kindName)
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", kindName)
	}

	var categories []primitive.CategoryEnum

	for i := 1; i < len(a.Positional); i++ {
		name, _ := a.Str(i, "")

		c, ok := primitive.ParseCategory(strings.ToLower(name))
		if !ok {
			return nil, fmt.Errorf("unknown coercion category %q", name)
		}

		categories = append(categories, c)
	}

	return NewCoerce(kind, categories...)
}
