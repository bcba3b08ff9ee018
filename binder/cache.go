package binder

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"hintbind/hint"
)

// Cache shares binders between callers, keyed by target name. Concurrent
// requests for a target that is not cached yet build it once.
type Cache struct {
	opts []Option

	mu      sync.RWMutex
	binders map[string]*Binder
	group   singleflight.Group
}

// NewCache returns an empty cache whose binders are built with opts.
func NewCache(opts ...Option) *Cache {
	return &Cache{opts: opts, binders: map[string]*Binder{}}
}

// Get returns the binder cached under t.Name, building it from t on first
// use. Targets are identified by name only.
func (c *Cache) Get(t *hint.Target) (*Binder, error) {
	c.mu.RLock()
	b, ok := c.binders[t.Name]
	c.mu.RUnlock()

	if ok {
		return b, nil
	}

	v, err, _ := c.group.Do(t.Name, func() (any, error) {
		c.mu.RLock()
		cached, ok := c.binders[t.Name]
		c.mu.RUnlock()

		if ok {
			return cached, nil
		}

		built, err := Build(t, c.opts...)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.binders[t.Name] = built
		c.mu.Unlock()

		return built, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Binder), nil
}

// Lookup finds the target id in src and returns its cached binder.
func (c *Cache) Lookup(ctx context.Context, src hint.Source, id string) (*Binder, error) {
	c.mu.RLock()
	b, ok := c.binders[id]
	c.mu.RUnlock()

	if ok {
		return b, nil
	}

	t, err := src.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	return c.Get(t)
}

// Len is the number of cached binders.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.binders)
}
