package sync

import (
	"context"
	"log/slog"
	stdsync "sync"

	"driver_training_service/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Reconciler keeps exactly one change-bus subscription open per
// (collection, scope) while that scope is active. On any change event it
// triggers a full refresh of the scope through the governor instead of
// patching the cache from the event payload: some cached rows are
// denormalized joins that a raw change event cannot reconstruct, and a
// refetch always matches a real server-side read.
type Reconciler struct {
	ctx      context.Context
	bus      *Bus
	governor *Governor

	mu   stdsync.Mutex
	subs map[string]func()
}

func NewReconciler(ctx context.Context, bus *Bus, governor *Governor) *Reconciler {
	return &Reconciler{
		ctx:      ctx,
		bus:      bus,
		governor: governor,
		subs:     make(map[string]func()),
	}
}

// Attach opens the push channel for a (collection, scope). It is a no-op
// when the channel is already open.
func (r *Reconciler) Attach(collection, scope string, refresh func(context.Context) error) {
	key := Key(collection, scope)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[key]; ok {
		return
	}

	r.subs[key] = r.bus.Subscribe(collection, scope, func(change Change) {
		if !r.governor.Trigger(r.ctx, key, refresh) {
			logger(r.ctx).Debug("refresh trigger dropped",
				slog.String("collection", change.Collection),
				slog.String("scope", change.Scope),
				slog.String("op", change.Op),
			)
		}
	})
}

// Detach closes the push channel for a (collection, scope). Must be called
// on scope teardown or the subscription leaks.
func (r *Reconciler) Detach(collection, scope string) {
	key := Key(collection, scope)

	r.mu.Lock()
	defer r.mu.Unlock()

	if cancel, ok := r.subs[key]; ok {
		cancel()
		delete(r.subs, key)
	}
}

// DetachAll closes every open channel, e.g. on logout.
func (r *Reconciler) DetachAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, cancel := range r.subs {
		cancel()
		delete(r.subs, key)
	}
}
