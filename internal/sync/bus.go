package sync

import (
	stdsync "sync"
)

const OpInsert = "INSERT"
const OpUpdate = "UPDATE"
const OpDelete = "DELETE"

// Change is a push-invalidation event: rows of a collection changed remotely.
// It carries no row data; subscribers refetch instead of patching.
type Change struct {
	Collection string `json:"collection"`
	Scope      string `json:"scope"`
	Op         string `json:"op"`
}

type busHandler struct {
	id         int
	collection string
	scope      string
	fn         func(Change)
}

// Bus fans collection-changed events out to registered handlers. A handler
// registered with a non-empty scope only receives events for that scope or
// collection-wide events with no scope.
type Bus struct {
	mu       stdsync.Mutex
	nextID   int
	handlers []busHandler
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler and returns its cancel func.
func (b *Bus) Subscribe(collection, scope string, fn func(Change)) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers = append(b.handlers, busHandler{
		id:         id,
		collection: collection,
		scope:      scope,
		fn:         fn,
	})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, h := range b.handlers {
			if h.id == id {
				b.handlers = append(b.handlers[:i], b.handlers[i+1:]...)
				return
			}
		}
	}
}

// Publish dispatches a change to every matching handler. Handlers run on the
// publisher's goroutine; the handler snapshot is taken under the lock so a
// handler may cancel itself.
func (b *Bus) Publish(change Change) {
	b.mu.Lock()
	matched := make([]busHandler, 0, len(b.handlers))
	for _, h := range b.handlers {
		if h.collection != change.Collection {
			continue
		}
		if h.scope != "" && change.Scope != "" && h.scope != change.Scope {
			continue
		}
		matched = append(matched, h)
	}
	b.mu.Unlock()

	for _, h := range matched {
		h.fn(change)
	}
}
