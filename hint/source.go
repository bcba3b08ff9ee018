package hint

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"hintbind/internal/match"
)

// ErrTargetNotFound is returned by sources that know no target of the
// requested name.
var ErrTargetNotFound = errors.New("target not found")

// Source looks targets up by identifier. Sources backed by I/O honour ctx.
type Source interface {
	Lookup(ctx context.Context, id string) (*Target, error)
}

// Registry is an in-memory Source.
type Registry struct {
	mu      sync.RWMutex
	targets map[string]*Target
}

func NewRegistry() *Registry {
	return &Registry{targets: map[string]*Target{}}
}

// Add registers targets under their names. A name can be added once.
func (r *Registry) Add(targets ...*Target) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range targets {
		if _, ok := r.targets[t.Name]; ok {
			return fmt.Errorf("hint: target %q already registered", t.Name)
		}

		r.targets[t.Name] = t
	}

	return nil
}

func (r *Registry) Lookup(_ context.Context, id string) (*Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.targets[id]; ok {
		return t, nil
	}

	return nil, notFound(id, slices.Collect(maps.Keys(r.targets)))
}

// Names lists registered target names alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.targets))
}

func notFound(id string, known []string) error {
	if suggestion, ok := match.Suggest(id, known); ok {
		return fmt.Errorf("%w: %q, did you mean %q?", ErrTargetNotFound, id, suggestion)
	}

	return fmt.Errorf("%w: %q", ErrTargetNotFound, id)
}

// Sources tries each source in order and returns the first target found.
// Errors other than ErrTargetNotFound stop the search.
type Sources []Source

func (s Sources) Lookup(ctx context.Context, id string) (*Target, error) {
	for _, src := range s {
		t, err := src.Lookup(ctx, id)
		if err == nil {
			return t, nil
		}

		if !errors.Is(err, ErrTargetNotFound) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrTargetNotFound, id)
}
