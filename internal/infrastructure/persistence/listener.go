package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"

	syncx "driver_training_service/internal/sync"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

const changeChannel = "collection_changed"

const pingInterval = 90 * time.Second

// Listener bridges Postgres NOTIFY into the in-process change bus. Row
// triggers (migrations/0001_init.sql) emit JSON payloads on the
// collection_changed channel; each payload is republished as a sync.Change.
type Listener struct {
	dsn          string
	minReconnect time.Duration
	maxReconnect time.Duration
	bus          *syncx.Bus
}

func NewListener(dsn string, minReconnect, maxReconnect time.Duration, bus *syncx.Bus) *Listener {
	return &Listener{
		dsn:          dsn,
		minReconnect: minReconnect,
		maxReconnect: maxReconnect,
		bus:          bus,
	}
}

// Run blocks until ctx is done, forwarding notifications to the bus.
func (l *Listener) Run(ctx context.Context) error {
	pqListener := pq.NewListener(l.dsn, l.minReconnect, l.maxReconnect,
		func(event pq.ListenerEventType, err error) {
			if err != nil {
				logger(ctx).Error("listener connection event",
					slog.Int("event", int(event)), slog.Any("error", err))
			}
		})
	defer pqListener.Close()

	if err := pqListener.Listen(changeChannel); err != nil {
		return fmt.Errorf("pqListener.Listen: %w", err)
	}

	logger(ctx).Info("push listener started", slog.String("channel", changeChannel))

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger(ctx).Info("push listener stopped")
			return nil

		case <-pingTicker.C:
			if err := pqListener.Ping(); err != nil {
				logger(ctx).Error("push listener ping failed", slog.Any("error", err))
			}

		case notification := <-pqListener.Notify:
			// nil notification means the connection was re-established;
			// events may have been missed while disconnected.
			if notification == nil {
				continue
			}

			var change syncx.Change
			if err := json.UnmarshalFromString(notification.Extra, &change); err != nil {
				logger(ctx).Error("push listener bad payload",
					slog.String("payload", notification.Extra), slog.Any("error", err))
				continue
			}

			l.bus.Publish(change)
		}
	}
}
