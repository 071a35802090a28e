package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBusScopeFilter(t *testing.T) {
	bus := NewBus()

	var got []Change
	cancel := bus.Subscribe("assignments", "user:1", func(change Change) {
		got = append(got, change)
	})

	bus.Publish(Change{Collection: "assignments", Scope: "user:1", Op: OpInsert})
	bus.Publish(Change{Collection: "assignments", Scope: "user:2", Op: OpInsert})
	bus.Publish(Change{Collection: "videos", Scope: "user:1", Op: OpUpdate})
	// A collection-wide event with no scope reaches every subscriber.
	bus.Publish(Change{Collection: "assignments", Op: OpDelete})

	assert.Len(t, got, 2)
	assert.Equal(t, OpInsert, got[0].Op)
	assert.Equal(t, OpDelete, got[1].Op)

	cancel()
	bus.Publish(Change{Collection: "assignments", Scope: "user:1", Op: OpInsert})
	assert.Len(t, got, 2)
}

func TestReconcilerRefreshesOnMatchingEvent(t *testing.T) {
	bus := NewBus()
	reconciler := NewReconciler(context.Background(), bus, NewGovernor(0))

	refreshes := 0
	reconciler.Attach("assignments", "user:1", func(context.Context) error {
		refreshes++
		return nil
	})

	bus.Publish(Change{Collection: "assignments", Scope: "user:1", Op: OpInsert})
	assert.Equal(t, 1, refreshes)

	bus.Publish(Change{Collection: "assignments", Scope: "user:2", Op: OpInsert})
	assert.Equal(t, 1, refreshes)
}

func TestReconcilerAttachIsIdempotent(t *testing.T) {
	bus := NewBus()
	reconciler := NewReconciler(context.Background(), bus, NewGovernor(0))

	refreshes := 0
	refresh := func(context.Context) error { refreshes++; return nil }
	reconciler.Attach("videos", "admin:1", refresh)
	reconciler.Attach("videos", "admin:1", refresh)

	bus.Publish(Change{Collection: "videos", Scope: "admin:1", Op: OpUpdate})
	assert.Equal(t, 1, refreshes)
}

func TestReconcilerDetachStopsRefreshes(t *testing.T) {
	bus := NewBus()
	reconciler := NewReconciler(context.Background(), bus, NewGovernor(0))

	refreshes := 0
	reconciler.Attach("users", "", func(context.Context) error {
		refreshes++
		return nil
	})
	bus.Publish(Change{Collection: "users", Op: OpInsert})
	assert.Equal(t, 1, refreshes)

	reconciler.Detach("users", "")
	bus.Publish(Change{Collection: "users", Op: OpInsert})
	assert.Equal(t, 1, refreshes)
}

func TestReconcilerThrottlesEventBursts(t *testing.T) {
	bus := NewBus()
	governor := NewGovernor(3 * time.Second)
	current := time.Unix(1_700_000_000, 0)
	governor.now = func() time.Time { return current }
	reconciler := NewReconciler(context.Background(), bus, governor)

	refreshes := 0
	reconciler.Attach("assignments", "user:1", func(context.Context) error {
		refreshes++
		return nil
	})

	// Two push events inside the cooldown window produce one refresh; the
	// second trigger is dropped, not deferred.
	bus.Publish(Change{Collection: "assignments", Scope: "user:1", Op: OpInsert})
	bus.Publish(Change{Collection: "assignments", Scope: "user:1", Op: OpUpdate})
	assert.Equal(t, 1, refreshes)

	current = current.Add(5 * time.Second)
	bus.Publish(Change{Collection: "assignments", Scope: "user:1", Op: OpUpdate})
	assert.Equal(t, 2, refreshes)
}
