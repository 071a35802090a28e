package persistence

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"driver_training_service/internal/domain/entity"
)

type VideoRepository struct {
	db           *sqlx.DB
	queryTimeout time.Duration
}

func NewVideoRepository(db *sqlx.DB, queryTimeout time.Duration) *VideoRepository {
	return &VideoRepository{db: db, queryTimeout: queryTimeout}
}

// List returns all videos, or only one admin's videos when ownerId is set.
func (r *VideoRepository) List(ctx context.Context, ownerId string) ([]entity.Video, error) {
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `
        SELECT id, title, description, category, duration_seconds,
               youtube_id, is_annual_renewal, owner_id, created_at
        FROM videos
        ORDER BY created_at DESC;
    `
	args := []any{}
	if ownerId != "" {
		query = `
        SELECT id, title, description, category, duration_seconds,
               youtube_id, is_annual_renewal, owner_id, created_at
        FROM videos
        WHERE owner_id = $1
        ORDER BY created_at DESC;
    `
		args = append(args, ownerId)
	}

	var videos []entity.Video
	if err := r.db.SelectContext(ctx, &videos, query, args...); err != nil {
		return nil, queryError(err, "repository: failed to list videos")
	}

	return videos, nil
}
