// Package binder validates and transforms a set of named values against
// the hints of one target.
//
// A Binder resolves the marker chain of every hint once, at Build time, so
// metadata problems surface before any value is seen. After that it is
// immutable: Bind may be called from any number of goroutines.
//
// Bind evaluates every hint even when an earlier one fails, so a single
// call reports all field failures at once.
package binder

import (
	"errors"
	"maps"
	"slices"

	"go.uber.org/zap"

	"hintbind/evaluate"
	"hintbind/failure"
	"hintbind/hint"
	"hintbind/internal/match"
	"hintbind/resolve"
)

// Values are bound values keyed by hint name.
type Values map[string]any

type options struct {
	logger *zap.Logger
	strict bool
}

type Option func(*options)

// WithLogger logs binder construction and bind failures at debug level.
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// WithStrict reports values whose keys match no hint.
func WithStrict() Option { return func(o *options) { o.strict = true } }

type Binder struct {
	target *hint.Target
	chains []*resolve.Chain // parallel to target.Hints
	logger *zap.Logger
	strict bool
}

// Build resolves every hint of target. All resolution errors of all hints
// are returned together.
func Build(target *hint.Target, opts ...Option) (*Binder, error) {
	if target == nil {
		return nil, errors.New("binder: nil target")
	}

	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	chains, err := resolve.Target(target)
	if err != nil {
		o.logger.Debug("binder resolution failed", zap.String("target", target.Name), zap.Error(err))
		return nil, err
	}

	o.logger.Debug("binder built",
		zap.String("target", target.Name),
		zap.Stringer("kind", target.Kind),
		zap.Int("hints", len(chains)),
		zap.Bool("strict", o.strict),
	)

	return &Binder{target: target, chains: chains, logger: o.logger, strict: o.strict}, nil
}

// MustBuild is Build that panics, for package level binders.
func MustBuild(target *hint.Target, opts ...Option) *Binder {
	b, err := Build(target, opts...)
	if err != nil {
		panic(err)
	}

	return b
}

func (b *Binder) Target() *hint.Target { return b.target }

// Chains returns the resolved chains in hint declaration order.
func (b *Binder) Chains() []*resolve.Chain { return slices.Clone(b.chains) }

// Chain returns the chain of the named hint.
func (b *Binder) Chain(name string) (*resolve.Chain, bool) {
	for i, h := range b.target.Hints {
		if h.Name == name {
			return b.chains[i], true
		}
	}

	return nil, false
}

// Bind runs each hint's chain against the value supplied under the hint's
// name. On success the result holds a value for every required hint and
// every optional hint that was supplied or has a default. An explicit nil
// for an optional hint counts as missing. Otherwise the
// error is a *failure.AggregateFailure listing every failed field in
// declaration order.
func (b *Binder) Bind(values map[string]any) (Values, error) {
	out := make(Values, len(b.target.Hints))

	var failures []error

	for i, h := range b.target.Hints {
		v, ok := values[h.Name]
		if !ok || v == nil && h.Optional {
			switch {
			case h.HasDefault:
				out[h.Name] = h.DefaultValue()
			case !h.Optional:
				failures = append(failures, &failure.MissingValueError{Target: b.target.Name, Field: h.Name})
			}

			continue
		}

		outcome := evaluate.Run(b.chains[i], v)
		if !outcome.OK() {
			failures = append(failures, outcome.Failure.WithField(b.target.Name, h.Name))
			continue
		}

		out[h.Name] = outcome.Value
	}

	if b.strict {
		failures = append(failures, b.unknown(values)...)
	}

	if len(failures) > 0 {
		b.logger.Debug("bind failed",
			zap.String("target", b.target.Name),
			zap.Int("failures", len(failures)),
		)

		return nil, &failure.AggregateFailure{Target: b.target.Name, Failures: failures}
	}

	return out, nil
}

func (b *Binder) unknown(values map[string]any) []error {
	names := b.target.Names()

	var errs []error

	for _, key := range slices.Sorted(maps.Keys(values)) {
		if slices.Contains(names, key) {
			continue
		}

		suggestion, _ := match.Suggest(key, names)
		errs = append(errs, &failure.UnknownValueError{
			Target:     b.target.Name,
			Field:      key,
			Suggestion: suggestion,
		})
	}

	return errs
}
