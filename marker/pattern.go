package marker

import (
	"fmt"
	"reflect"
	"regexp"

	"hintbind/primitive"
)

// PatternMarker requires a string value to match a regular expression in
// full.
type PatternMarker struct {
	expr string
	re   *regexp.Regexp

	post func(submatches []string) bool
	code uintptr
}

// PatternOption configures a PatternMarker.
type PatternOption func(*PatternMarker)

// Satisfying runs fn over the submatches of a successful match. Index 0 is
// the whole value, the rest follow the groups of the expression. A false
// result rejects the value.
func Satisfying(fn func(submatches []string) bool) PatternOption {
	return func(p *PatternMarker) {
		p.post = fn
		p.code = reflect.ValueOf(fn).Pointer()
	}
}

// NewPattern compiles expr; the match is anchored at both ends.
func NewPattern(expr string, opts ...PatternOption) (*PatternMarker, error) {
	re, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return nil, fmt.Errorf("pattern: %w", err)
	}

	p := &PatternMarker{expr: expr, re: re}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Pattern is NewPattern that panics on an invalid expression.
func Pattern(expr string, opts ...PatternOption) *PatternMarker {
	p, err := NewPattern(expr, opts...)
	if err != nil {
		panic(err)
	}

	return p
}

func (p *PatternMarker) Apply(value any) (any, error) {
	rv, ok := deref(value)
	if !ok || rv.Kind() != reflect.String {
		return nil, reject(CodeNotString, "value must be a string")
	}

	submatches := p.re.FindStringSubmatch(rv.String())
	if submatches == nil {
		return nil, reject(CodeNotMatched, "value does not match the pattern %s", p.expr)
	}

	if p.post != nil && !p.post(submatches) {
		return nil, reject(CodeNotSatisfied, "custom validation function is not satisfied")
	}

	return value, nil
}

func (p *PatternMarker) Capability() Capability { return Validate }

func (p *PatternMarker) Priority() int { return 0 }

func (p *PatternMarker) Description() string { return "pattern[" + p.expr + "]" }

func (p *PatternMarker) Accepts() primitive.KindSet { return primitive.SetOf(primitive.KindString) }

func (p *PatternMarker) Key() string {
	if p.post == nil {
		return "pattern(" + p.expr + ")"
	}

	return fmt.Sprintf("pattern(%s,%x)", p.expr, p.code)
}
