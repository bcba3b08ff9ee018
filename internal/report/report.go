// Package report prints bind outcomes, diagnostics and resolved chains as
// grid tables, JSON or msgpack.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/bndr/gotabulate"
	"github.com/fatih/color"
	"github.com/vmihailenco/msgpack/v5"

	"hintbind/binder"
	"hintbind/failure"
	"hintbind/internal/diagnostic"
	"hintbind/marker"
	"hintbind/resolve"
)

type Format string

const (
	FormatTable   Format = "table"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatTable, FormatJSON, FormatMsgpack:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (table|json|msgpack)", name)
	}
}

// Failure is one failed field of an Outcome.
type Failure struct {
	Field   string `json:"field" msgpack:"field"`
	Code    string `json:"code" msgpack:"code"`
	Marker  string `json:"marker,omitempty" msgpack:"marker,omitempty"`
	Message string `json:"message" msgpack:"message"`
	Value   any    `json:"value,omitempty" msgpack:"value,omitempty"`
}

// Failure codes for errors that are not marker rejections.
const (
	CodeMissing  = "missing"
	CodeUnknown  = "unknown_key"
	CodeRejected = "rejected"
	CodeError    = "error"
)

// Outcome is the printable result of one bind call.
type Outcome struct {
	Target   string         `json:"target" msgpack:"target"`
	OK       bool           `json:"ok" msgpack:"ok"`
	Values   map[string]any `json:"values,omitempty" msgpack:"values,omitempty"`
	Failures []Failure      `json:"failures,omitempty" msgpack:"failures,omitempty"`
}

// NewOutcome converts the result of Binder.Bind.
func NewOutcome(target string, values binder.Values, err error) Outcome {
	if err == nil {
		return Outcome{Target: target, OK: true, Values: values}
	}

	o := Outcome{Target: target}

	var agg *failure.AggregateFailure
	if !errors.As(err, &agg) {
		o.Failures = []Failure{{Code: CodeError, Message: err.Error()}}
		return o
	}

	for _, e := range agg.Failures {
		o.Failures = append(o.Failures, failureOf(e))
	}

	return o
}

func failureOf(err error) Failure {
	f := Failure{Field: failure.FieldOf(err), Code: CodeError, Message: err.Error()}

	var (
		mf        *failure.MarkerFailure
		missing   *failure.MissingValueError
		unknown   *failure.UnknownValueError
		rejection *marker.Rejection
	)

	switch {
	case errors.As(err, &mf):
		f.Code = CodeRejected
		f.Marker = mf.Marker
		f.Value = mf.Value
		f.Message = mf.Err.Error()

		if errors.As(mf.Err, &rejection) {
			f.Code = rejection.Code
		}
	case errors.As(err, &missing):
		f.Code = CodeMissing
		f.Message = "value is required"
	case errors.As(err, &unknown):
		f.Code = CodeUnknown
		f.Message = "no such field"

		if unknown.Suggestion != "" {
			f.Message += fmt.Sprintf(", did you mean %q?", unknown.Suggestion)
		}
	}

	return f
}

// Printer writes reports to one writer.
type Printer struct {
	w      io.Writer
	format Format

	ok, bad, warn *color.Color
}

// New returns a printer; colour only affects table output.
func New(w io.Writer, format Format, useColor bool) *Printer {
	p := &Printer{
		w:      w,
		format: format,
		ok:     color.New(color.FgGreen, color.Bold),
		bad:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
	}

	for _, c := range []*color.Color{p.ok, p.bad, p.warn} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

func (p *Printer) encode(v any) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")

		return enc.Encode(v)
	case FormatMsgpack:
		return msgpack.NewEncoder(p.w).Encode(v)
	default:
		return fmt.Errorf("report: format %q cannot encode", p.format)
	}
}

// Outcome prints a bind outcome.
func (p *Printer) Outcome(o Outcome) error {
	if p.format != FormatTable {
		return p.encode(o)
	}

	if o.OK {
		fmt.Fprintf(p.w, "%s: %s\n", o.Target, p.ok.Sprint("ok"))

		rows := make([][]any, 0, len(o.Values))
		for _, name := range slices.Sorted(maps.Keys(o.Values)) {
			v := o.Values[name]
			rows = append(rows, []any{name, fmt.Sprintf("%v", v), fmt.Sprintf("%T", v)})
		}

		return p.table([]string{"FIELD", "VALUE", "TYPE"}, rows)
	}

	fmt.Fprintf(p.w, "%s: %s\n", o.Target, p.bad.Sprintf("%d failure(s)", len(o.Failures)))

	rows := make([][]any, 0, len(o.Failures))
	for _, f := range o.Failures {
		rows = append(rows, []any{f.Field, f.Code, f.Marker, f.Message})
	}

	return p.table([]string{"FIELD", "CODE", "MARKER", "MESSAGE"}, rows)
}

// Diagnostics prints check results, errors first.
func (p *Printer) Diagnostics(d diagnostic.Diagnostics) error {
	if p.format != FormatTable {
		return p.encode(d)
	}

	all := d.All()
	if len(all) == 0 {
		fmt.Fprintln(p.w, p.ok.Sprint("no problems found"))
		return nil
	}

	rows := make([][]any, 0, len(all))
	for _, diag := range all {
		where := diag.Target
		if diag.Field != "" {
			where += "." + diag.Field
		}

		rows = append(rows, []any{
			diag.Severity.String(),
			diag.Code,
			where,
			diag.Message,
			strings.Join(diag.Suggestions, ", "),
		})
	}

	if err := p.table([]string{"SEVERITY", "CODE", "WHERE", "MESSAGE", "SUGGESTIONS"}, rows); err != nil {
		return err
	}

	summary := fmt.Sprintf("%d error(s), %d warning(s), %d info(s)", len(d.Errors), len(d.Warnings), len(d.Infos))

	switch {
	case len(d.Errors) > 0:
		summary = p.bad.Sprint(summary)
	case len(d.Warnings) > 0:
		summary = p.warn.Sprint(summary)
	default:
		summary = p.ok.Sprint(summary)
	}

	_, err := fmt.Fprintln(p.w, summary)

	return err
}

type chainRow struct {
	Hint    string   `json:"hint" msgpack:"hint"`
	Kind    string   `json:"kind" msgpack:"kind"`
	Markers []string `json:"markers" msgpack:"markers"`
}

// Chains prints the resolved chains of one target.
func (p *Printer) Chains(target string, chains []*resolve.Chain) error {
	out := make([]chainRow, len(chains))
	for i, c := range chains {
		out[i] = chainRow{Hint: c.Hint, Kind: c.Kind.String(), Markers: []string{}}
		for _, m := range c.Markers() {
			out[i].Markers = append(out[i].Markers, m.Description())
		}
	}

	if p.format != FormatTable {
		return p.encode(map[string]any{"target": target, "chains": out})
	}

	fmt.Fprintf(p.w, "%s:\n", target)

	rows := make([][]any, len(out))
	for i, c := range out {
		rows[i] = []any{c.Hint, c.Kind, strings.Join(c.Markers, " -> ")}
	}

	return p.table([]string{"HINT", "KIND", "CHAIN"}, rows)
}

// Names prints a one-column list.
func (p *Printer) Names(header string, names []string) error {
	if p.format != FormatTable {
		return p.encode(names)
	}

	rows := make([][]any, len(names))
	for i, n := range names {
		rows[i] = []any{n}
	}

	return p.table([]string{header}, rows)
}

func (p *Printer) table(headers []string, rows [][]any) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(p.w, "(none)")
		return err
	}

	t := gotabulate.Create(rows)
	t.SetHeaders(headers)
	t.SetAlign("left")
	t.SetWrapStrings(true)
	t.SetMaxCellSize(60)

	_, err := fmt.Fprint(p.w, t.Render("grid"))

	return err
}
