// Package cache keeps full record collections in memory and drops them when
// the change feed reports a write to the underlying table.
package cache

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Loader fetches the full, ordered collection from the store.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Collection is a read-through cache of one table.
type Collection[T any] struct {
	name  string
	load  Loader[T]
	group singleflight.Group

	mu     sync.Mutex
	items  []T
	loaded bool
	gen    uint64
}

func New[T any](name string, load Loader[T]) *Collection[T] {
	return &Collection[T]{name: name, load: load}
}

func (c *Collection[T]) Name() string {
	return c.name
}

// Get returns the cached collection, loading it on a miss. Concurrent misses
// share one load, which runs detached from any single caller's cancellation;
// each caller stops waiting when its own ctx is done. A load that races with
// Invalidate is returned to its callers but not stored.
func (c *Collection[T]) Get(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	if c.loaded {
		items := slices.Clone(c.items)
		c.mu.Unlock()
		return items, nil
	}
	gen := c.gen
	c.mu.Unlock()

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(c.name, func() (any, error) {
		items, err := c.load(loadCtx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gen == gen {
			c.items = items
			c.loaded = true
		}
		c.mu.Unlock()

		return items, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]T)), nil
	}
}

// Invalidate drops the cached collection; the next Get re-fetches it.
func (c *Collection[T]) Invalidate() {
	c.mu.Lock()
	c.gen++
	c.items = nil
	c.loaded = false
	c.mu.Unlock()
	c.group.Forget(c.name)
}

// Loaded reports whether the collection is currently cached.
func (c *Collection[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Invalidator is the type-erased view of a Collection kept by a Registry.
type Invalidator interface {
	Name() string
	Invalidate()
}

// Registry maps table names to their collections.
type Registry struct {
	mu          sync.RWMutex
	collections map[string]Invalidator
}

func NewRegistry() *Registry {
	return &Registry{collections: make(map[string]Invalidator)}
}

func (r *Registry) Register(collections ...Invalidator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range collections {
		r.collections[c.Name()] = c
	}
}

// Invalidate drops the collection for table. It reports false for tables
// nothing is registered under.
func (r *Registry) Invalidate(table string) bool {
	r.mu.RLock()
	c, ok := r.collections[table]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	c.Invalidate()
	slog.Debug("Cache invalidated", "table", table)
	return true
}

// InvalidateAll drops every collection. Used after the change feed
// reconnects, since notifications may have been missed.
func (r *Registry) InvalidateAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.collections {
		c.Invalidate()
	}
}

// Tables returns the registered table names, sorted.
func (r *Registry) Tables() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.collections))
	for name := range r.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reader is the read side of a Collection.
type Reader[T any] interface {
	Get(ctx context.Context) ([]T, error)
}
