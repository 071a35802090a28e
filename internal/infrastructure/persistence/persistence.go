// Package persistence implements the remote store clients: sqlx queries over
// the pgx stdlib driver, plus the LISTEN/NOTIFY listener feeding the change
// bus. Every query races a configurable deadline; a deadline excess surfaces
// as a Timeout-coded error with the previous cache snapshot left intact by
// the caller.
package persistence

import (
	"context"
	"errors"
	"time"

	"driver_training_service/internal/domain"
	"driver_training_service/pkg/contextx"
	"driver_training_service/pkg/errcodes"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

func withQueryTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func queryError(err error, message string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.WrapError(err, errcodes.Timeout, message+": query deadline exceeded")
	}
	return domain.WrapError(err, errcodes.InternalServerError, message)
}
