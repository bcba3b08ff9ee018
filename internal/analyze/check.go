package analyze

import (
	"fmt"

	"hintbind/hint"
	"hintbind/internal/diagnostic"
	"hintbind/primitive"
	"hintbind/resolve"
)

// Result is the outcome of Check.
type Result struct {
	// Targets holds a target per marked struct that resolved cleanly.
	Targets     []*hint.Target
	Diagnostics diagnostic.Diagnostics
}

// Check resolves the marker chains of every struct that has at least one
// tagged field. Unmarked structs are reported as infos.
func (a *Analyzer) Check() *Result {
	res := &Result{}

	for _, s := range a.graph.Sorted() {
		name := s.ID.Qualified()

		if !s.Marked(a.tagKey) {
			res.Diagnostics.Add(diagnostic.Diagnostic{
				Severity: diagnostic.DiagnosticInfo,
				Code:     diagnostic.CodeUnmarked,
				Message:  "no marker tags",
				Target:   name,
				Position: posString(s.Pos.String()),
			})

			continue
		}

		if t, ok := a.checkStruct(name, s, &res.Diagnostics); ok {
			res.Targets = append(res.Targets, t)
		}
	}

	return res
}

func (a *Analyzer) checkStruct(name string, s *StructInfo, d *diagnostic.Diagnostics) (*hint.Target, bool) {
	var (
		hints     []hint.Hint
		positions = map[string]string{}
		broken    bool
	)

	for _, f := range s.Fields {
		spec, tagged := f.Tag.Lookup(a.tagKey)
		if spec == "-" {
			continue
		}

		h := hint.Declared(f.JSONName(), f.Kind)
		h.Optional = f.Optional()
		h.Index = f.Index
		positions[h.Name] = posString(f.Pos.String())

		if tagged {
			markers, err := a.registry.Parse(spec)
			if err != nil {
				d.AddErr(err, name, h.Name, positions[h.Name])
				broken = true

				continue
			}

			for _, m := range markers {
				h.Meta = append(h.Meta, m)
			}

			if len(markers) > 0 && f.Kind == primitive.KindAny {
				d.Add(diagnostic.Diagnostic{
					Severity: diagnostic.DiagnosticWarning,
					Code:     diagnostic.CodeUntyped,
					Message:  fmt.Sprintf("type %s has no static kind, marker type checks are skipped", f.TypeString()),
					Target:   name,
					Field:    h.Name,
					Position: positions[h.Name],
				})
			}
		}

		hints = append(hints, h)
	}

	if broken {
		return nil, false
	}

	t, err := hint.NewTarget(name, hint.KindStruct, hints...)
	if err != nil {
		d.AddErr(err, name, "", posString(s.Pos.String()))
		return nil, false
	}

	if _, err := resolve.Target(t); err != nil {
		for _, leaf := range diagnostic.Leaves(err) {
			diag := diagnostic.FromError(leaf)
			diag.Target = name
			diag.Position = positions[diag.Field]
			d.Add(diag)
		}

		return nil, false
	}

	return t, true
}

// posString drops the "-" token.Position prints for unknown positions.
func posString(s string) string {
	if s == "-" {
		return ""
	}

	return s
}
