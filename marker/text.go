package marker

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"hintbind/primitive"
)

var stringKinds = primitive.SetOf(primitive.KindString)

// TextMarker rewrites string values. Every text marker rejects values that
// are not strings.
type TextMarker struct {
	name    string
	rewrite func(string) string
}

func (t *TextMarker) Apply(value any) (any, error) {
	rv, ok := deref(value)
	if !ok || primitive.FromReflectType(rv.Type()) != primitive.KindString {
		return nil, reject(CodeNotString, "%s expects a string, got %T", t.name, value)
	}

	return t.rewrite(rv.String()), nil
}

func (t *TextMarker) Capability() Capability { return Transform }

func (t *TextMarker) Priority() int { return 0 }

func (t *TextMarker) Description() string { return t.name }

func (t *TextMarker) Accepts() primitive.KindSet { return stringKinds }

func (t *TextMarker) Key() string { return "text(" + t.name + ")" }

// Trim removes leading and trailing white space.
func Trim() *TextMarker { return &TextMarker{name: "trim", rewrite: strings.TrimSpace} }

// Lower folds a string to lower case using Unicode case mapping.
func Lower() *TextMarker {
	return &TextMarker{name: "lower", rewrite: func(s string) string {
		return cases.Lower(language.Und).String(s)
	}}
}

// Upper maps a string to upper case using Unicode case mapping.
func Upper() *TextMarker {
	return &TextMarker{name: "upper", rewrite: func(s string) string {
		return cases.Upper(language.Und).String(s)
	}}
}

var normForms = map[string]norm.Form{
	"nfc":  norm.NFC,
	"nfd":  norm.NFD,
	"nfkc": norm.NFKC,
	"nfkd": norm.NFKD,
}

// NewNormalize brings strings into the named Unicode normalization form:
// nfc, nfd, nfkc or nfkd.
func NewNormalize(form string) (*TextMarker, error) {
	f, ok := normForms[strings.ToLower(form)]
	if !ok {
		return nil, fmt.Errorf("normalize: unknown form %q", form)
	}

	return &TextMarker{name: "normalize[" + strings.ToLower(form) + "]", rewrite: f.String}, nil
}

// Normalize is NewNormalize that panics on an unknown form.
func Normalize(form string) *TextMarker {
	t, err := NewNormalize(form)
	if err != nil {
		panic(err)
	}

	return t
}

// NewSanitize strips markup from strings. The strict policy removes every
// tag; the ugc policy keeps the safe subset of HTML used for user content.
func NewSanitize(policy string) (*TextMarker, error) {
	var p *bluemonday.Policy

	switch strings.ToLower(policy) {
	case "", "strict":
		policy, p = "strict", bluemonday.StrictPolicy()
	case "ugc":
		policy, p = "ugc", bluemonday.UGCPolicy()
	default:
		return nil, fmt.Errorf("sanitize: unknown policy %q", policy)
	}

	return &TextMarker{name: "sanitize[" + policy + "]", rewrite: p.Sanitize}, nil
}

// Sanitize is NewSanitize that panics on an unknown policy.
func Sanitize(policy string) *TextMarker {
	t, err := NewSanitize(policy)
	if err != nil {
		panic(err)
	}

	return t
}
