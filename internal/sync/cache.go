// Package sync holds the client-side synchronization core: per-collection
// entity caches, the refresh governor, the change bus and the subscription
// reconciler that keeps cached snapshots consistent with the remote store
// under concurrent multi-client mutation.
package sync

import (
	"context"
	stdsync "sync"
)

// FetchFunc loads the full snapshot for one scope from the remote store.
type FetchFunc[T any] func(ctx context.Context, scope string) ([]T, error)

// CacheConfig configures a Cache. ID and Match are optional; GetByID and
// Search return nothing for a cache without them.
type CacheConfig[T any] struct {
	Collection string
	Fetch      FetchFunc[T]
	ID         func(T) string
	Match      func(T, string) bool
}

type scopeEntry[T any] struct {
	rows        []T
	loading     bool
	err         error
	initialized bool
}

// Cache is an arena of per-scope snapshots for one collection. A snapshot is
// replaced atomically by a single slice assignment under the mutex, so
// readers never observe a partially written list. Failed refreshes keep the
// previous snapshot (stale-but-available) and record the error per scope.
type Cache[T any] struct {
	cfg CacheConfig[T]

	mu          stdsync.Mutex
	scopes      map[string]*scopeEntry[T]
	generations map[string]uint64
}

func NewCache[T any](cfg CacheConfig[T]) *Cache[T] {
	return &Cache[T]{
		cfg:         cfg,
		scopes:      make(map[string]*scopeEntry[T]),
		generations: make(map[string]uint64),
	}
}

func (c *Cache[T]) Collection() string {
	return c.cfg.Collection
}

// Initialize performs the first fetch for a scope. It is idempotent: once a
// scope is marked initialized, later calls return immediately without
// refetching, even while the first fetch is still in flight.
func (c *Cache[T]) Initialize(ctx context.Context, scope string) error {
	c.mu.Lock()
	entry := c.entryLocked(scope)
	if entry.initialized {
		c.mu.Unlock()
		return nil
	}
	entry.initialized = true
	c.mu.Unlock()

	return c.Refresh(ctx, scope)
}

// Refresh unconditionally refetches a scope. The write-back is bound to the
// scope's generation: if the scope is evicted while the fetch is in flight,
// the stale result is dropped instead of resurrecting the scope.
func (c *Cache[T]) Refresh(ctx context.Context, scope string) error {
	c.mu.Lock()
	entry := c.entryLocked(scope)
	entry.loading = true
	generation := c.generations[scope]
	c.mu.Unlock()

	rows, err := c.cfg.Fetch(ctx, scope)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[scope] != generation {
		return nil
	}
	entry, ok := c.scopes[scope]
	if !ok {
		return nil
	}

	entry.loading = false
	if err != nil {
		entry.err = err
		return err
	}

	entry.err = nil
	entry.rows = rows
	return nil
}

// Rows returns the current snapshot for a scope. The returned slice is the
// snapshot itself and must be treated as read-only.
func (c *Cache[T]) Rows(scope string) []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.scopes[scope]; ok {
		return entry.rows
	}
	return nil
}

func (c *Cache[T]) Loading(scope string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.scopes[scope]; ok {
		return entry.loading
	}
	return false
}

func (c *Cache[T]) Err(scope string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.scopes[scope]; ok {
		return entry.err
	}
	return nil
}

func (c *Cache[T]) Initialized(scope string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.scopes[scope]; ok {
		return entry.initialized
	}
	return false
}

// GetByID looks an entity up by primary key within the cached snapshot.
// It never issues a remote call.
func (c *Cache[T]) GetByID(scope, id string) (T, bool) {
	var zero T
	if c.cfg.ID == nil {
		return zero, false
	}

	for _, row := range c.Rows(scope) {
		if c.cfg.ID(row) == id {
			return row, true
		}
	}
	return zero, false
}

// Search returns the cached rows matching a query, without mutating the
// snapshot. Matching semantics live in the configured Match func.
func (c *Cache[T]) Search(scope, query string) []T {
	rows := c.Rows(scope)
	if c.cfg.Match == nil || query == "" {
		return rows
	}

	var matched []T
	for _, row := range rows {
		if c.cfg.Match(row, query) {
			matched = append(matched, row)
		}
	}
	return matched
}

// Evict tears a scope down and bumps its generation so any in-flight
// refresh for it discards its write-back.
func (c *Cache[T]) Evict(scope string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.scopes, scope)
	c.generations[scope]++
}

func (c *Cache[T]) entryLocked(scope string) *scopeEntry[T] {
	entry, ok := c.scopes[scope]
	if !ok {
		entry = &scopeEntry[T]{}
		c.scopes[scope] = entry
	}
	return entry
}
