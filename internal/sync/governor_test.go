package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGovernorDropsTriggerWithinInterval(t *testing.T) {
	governor := NewGovernor(3 * time.Second)
	current := time.Unix(1_700_000_000, 0)
	governor.now = func() time.Time { return current }

	calls := 0
	run := func(context.Context) error { calls++; return nil }

	assert.True(t, governor.Trigger(context.Background(), "k", run))
	assert.False(t, governor.Trigger(context.Background(), "k", run))
	assert.Equal(t, 1, calls)

	current = current.Add(2 * time.Second)
	assert.False(t, governor.Trigger(context.Background(), "k", run))
	assert.Equal(t, 1, calls)

	current = current.Add(2 * time.Second)
	assert.True(t, governor.Trigger(context.Background(), "k", run))
	assert.Equal(t, 2, calls)
}

func TestGovernorDropsTriggerWhileInFlight(t *testing.T) {
	governor := NewGovernor(time.Millisecond)

	started := make(chan struct{})
	release := make(chan struct{})
	ran := make(chan bool, 1)

	go func() {
		ran <- governor.Trigger(context.Background(), "k", func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	assert.False(t, governor.Trigger(context.Background(), "k", func(context.Context) error {
		t.Error("dropped trigger must not run")
		return nil
	}))

	close(release)
	assert.True(t, <-ran)
}

func TestGovernorClearsInFlightAfterFailure(t *testing.T) {
	governor := NewGovernor(3 * time.Second)
	current := time.Unix(1_700_000_000, 0)
	governor.now = func() time.Time { return current }

	failing := func(context.Context) error { return errors.New("fetch failed") }
	assert.True(t, governor.Trigger(context.Background(), "k", failing))

	// lastRun only advances on success, so a retry right after a failure
	// is not throttled.
	calls := 0
	assert.True(t, governor.Trigger(context.Background(), "k", func(context.Context) error {
		calls++
		return nil
	}))
	require.Equal(t, 1, calls)
}

func TestGovernorKeysAreIndependent(t *testing.T) {
	governor := NewGovernor(time.Hour)
	current := time.Unix(1_700_000_000, 0)
	governor.now = func() time.Time { return current }

	ok := func(context.Context) error { return nil }
	assert.True(t, governor.Trigger(context.Background(), Key("assignments", "user:1"), ok))
	assert.True(t, governor.Trigger(context.Background(), Key("assignments", "user:2"), ok))
	assert.False(t, governor.Trigger(context.Background(), Key("assignments", "user:1"), ok))

	governor.Forget(Key("assignments", "user:1"))
	assert.True(t, governor.Trigger(context.Background(), Key("assignments", "user:1"), ok))
}
