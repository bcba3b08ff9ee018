// Package resolve turns a hint's metadata into an ordered marker chain.
//
// Resolution keeps the values implementing marker.Marker, rejects
// duplicate markers and markers that cannot operate on the declared kind,
// and orders the rest by ascending priority. Markers of equal priority
// keep their declaration order, so resolving the same metadata always
// yields the same chain.
package resolve

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"hintbind/failure"
	"hintbind/hint"
	"hintbind/marker"
	"hintbind/primitive"
)

// Link is one marker of a chain with its position in the metadata
// sequence it was declared in.
type Link struct {
	Marker   marker.Marker
	Position int
}

// Chain is the resolved, ordered marker sequence of one hint. A chain is
// immutable and safe to share.
type Chain struct {
	Hint  string
	Kind  primitive.KindEnum
	Links []Link
}

// Len is the number of markers in the chain; a nil chain has none.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}

	return len(c.Links)
}

// Markers returns the markers in execution order.
func (c *Chain) Markers() []marker.Marker {
	out := make([]marker.Marker, len(c.Links))
	for i, l := range c.Links {
		out[i] = l.Marker
	}

	return out
}

func (c *Chain) String() string {
	parts := make([]string, len(c.Links))
	for i, l := range c.Links {
		parts[i] = l.Marker.Description()
	}

	return c.Hint + ": [" + strings.Join(parts, " -> ") + "]"
}

// Sequence resolves bare metadata without a declared type: no type checks
// are made.
func Sequence(meta []any) (*Chain, error) {
	return resolve("", primitive.KindAny, meta)
}

// Hint resolves the metadata of h against its declared kind.
func Hint(h hint.Hint) (*Chain, error) {
	return resolve(h.Name, h.DeclaredKind(), h.Meta)
}

func resolve(name string, kind primitive.KindEnum, meta []any) (*Chain, error) {
	chain := &Chain{Hint: name, Kind: kind}

	for pos, item := range meta {
		m, ok := item.(marker.Marker)
		if !ok || m == nil {
			continue
		}

		chain.Links = append(chain.Links, Link{Marker: m, Position: pos})
	}

	var errs []error

	for i, a := range chain.Links {
		for _, b := range chain.Links[i+1:] {
			if marker.Same(a.Marker, b.Marker) {
				errs = append(errs, &failure.ConflictError{
					Hint:           name,
					First:          a.Marker.Description(),
					Second:         b.Marker.Description(),
					FirstPosition:  a.Position,
					SecondPosition: b.Position,
				})
			}
		}
	}

	for _, l := range chain.Links {
		if accepts := marker.AcceptsOf(l.Marker); !accepts.Accepts(kind) {
			errs = append(errs, &failure.TypeMismatchError{
				Hint:     name,
				Marker:   l.Marker.Description(),
				Position: l.Position,
				Declared: kind,
				Accepts:  accepts,
			})
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	slices.SortStableFunc(chain.Links, func(a, b Link) int {
		return cmp.Compare(a.Marker.Priority(), b.Marker.Priority())
	})

	return chain, nil
}

// Target resolves every hint of t. Errors of all hints are joined; the
// returned chains follow hint declaration order and are only valid when
// the error is nil.
func Target(t *hint.Target) ([]*Chain, error) {
	chains := make([]*Chain, 0, len(t.Hints))

	var errs []error

	for _, h := range t.Hints {
		c, err := Hint(h)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.Name, err))
			continue
		}

		chains = append(chains, c)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return chains, nil
}
