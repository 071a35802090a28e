package sync

import (
	"context"
	stdsync "sync"
	"time"
)

type governorState struct {
	inFlight bool
	lastRun  time.Time
}

// Governor bounds how often a governed refresh may run. A trigger is honored
// only when no run is in flight for its key and at least MinInterval has
// passed since the last successful run; otherwise it is dropped, not queued
// (leading-edge drop, no trailing-edge scheduling).
type Governor struct {
	minInterval time.Duration
	now         func() time.Time

	mu     stdsync.Mutex
	states map[string]*governorState
}

func NewGovernor(minInterval time.Duration) *Governor {
	return &Governor{
		minInterval: minInterval,
		now:         time.Now,
		states:      make(map[string]*governorState),
	}
}

// Trigger runs fn if the key's cooldown allows it and reports whether it ran.
// The last-run timestamp advances only on success; the in-flight flag clears
// on any completion so the next trigger can proceed.
func (g *Governor) Trigger(ctx context.Context, key string, fn func(context.Context) error) bool {
	g.mu.Lock()
	state, ok := g.states[key]
	if !ok {
		state = &governorState{}
		g.states[key] = state
	}
	if state.inFlight || (!state.lastRun.IsZero() && g.now().Sub(state.lastRun) < g.minInterval) {
		g.mu.Unlock()
		return false
	}
	state.inFlight = true
	g.mu.Unlock()

	err := fn(ctx)

	g.mu.Lock()
	state.inFlight = false
	if err == nil {
		state.lastRun = g.now()
	}
	g.mu.Unlock()

	return true
}

// Forget drops the cooldown state for a key, typically on scope teardown.
func (g *Governor) Forget(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.states, key)
}

// Key names the governed operation for one (collection, scope) pair.
func Key(collection, scope string) string {
	return collection + "/" + scope
}
