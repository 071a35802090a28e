package connectors

import (
	"context"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"driver_training_service/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type Postgres struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration

	db *sqlx.DB
}

func (p *Postgres) Client(ctx context.Context) *sqlx.DB {
	if p.db != nil {
		return p.db
	}

	db := lo.Must(sqlx.ConnectContext(ctx, "pgx", p.DSN))
	db.SetMaxIdleConns(p.MaxIdleConns)
	db.SetMaxOpenConns(p.MaxOpenConns)
	db.SetConnMaxLifetime(p.ConnMaxLifetime)

	p.db = db

	return p.db
}

func (p *Postgres) Close(ctx context.Context) {
	if p.db == nil {
		return
	}

	if err := p.db.Close(); err != nil {
		logger(ctx).Error("postgres close error", slog.Any("error", err))
	}
}
