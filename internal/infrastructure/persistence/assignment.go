package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"driver_training_service/internal/domain"
	"driver_training_service/internal/domain/entity"
	"driver_training_service/pkg/errcodes"
)

const assignmentDetailColumns = `
        a.id, a.user_id, a.video_id, a.is_completed, a.assigned_date,
        a.last_watched, a.modified_date, a.last_action,
        v.id AS "video.id", v.title AS "video.title",
        v.description AS "video.description", v.category AS "video.category",
        v.duration_seconds AS "video.duration_seconds",
        v.youtube_id AS "video.youtube_id",
        v.is_annual_renewal AS "video.is_annual_renewal",
        v.owner_id AS "video.owner_id", v.created_at AS "video.created_at"`

type AssignmentRepository struct {
	db           *sqlx.DB
	queryTimeout time.Duration
}

func NewAssignmentRepository(db *sqlx.DB, queryTimeout time.Duration) *AssignmentRepository {
	return &AssignmentRepository{db: db, queryTimeout: queryTimeout}
}

func (r *AssignmentRepository) ListByUser(ctx context.Context, userId string) ([]entity.AssignmentDetail, error) {
	return r.listBy(ctx, "a.user_id", userId)
}

func (r *AssignmentRepository) ListByVideo(ctx context.Context, videoId string) ([]entity.AssignmentDetail, error) {
	return r.listBy(ctx, "a.video_id", videoId)
}

func (r *AssignmentRepository) listBy(ctx context.Context, column, value string) ([]entity.AssignmentDetail, error) {
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `
        SELECT` + assignmentDetailColumns + `
        FROM assignments a
        JOIN videos v ON v.id = a.video_id
        WHERE ` + column + ` = $1
        ORDER BY a.assigned_date DESC;
    `

	var details []entity.AssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, value); err != nil {
		return nil, queryError(err, "repository: failed to list assignments")
	}

	return details, nil
}

// ListAnnual returns every assignment of an annual-renewal video, for the
// reminder sweep.
func (r *AssignmentRepository) ListAnnual(ctx context.Context) ([]entity.AssignmentDetail, error) {
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `
        SELECT` + assignmentDetailColumns + `
        FROM assignments a
        JOIN videos v ON v.id = a.video_id
        WHERE v.is_annual_renewal = TRUE
        ORDER BY a.assigned_date ASC;
    `

	var details []entity.AssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query); err != nil {
		return nil, queryError(err, "repository: failed to list annual assignments")
	}

	return details, nil
}

func (r *AssignmentRepository) InsertMany(ctx context.Context, assignments []entity.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `
        INSERT INTO assignments (id, user_id, video_id, is_completed, assigned_date)
        VALUES (:id, :user_id, :video_id, :is_completed, :assigned_date);
    `

	if _, err := r.db.NamedExecContext(ctx, query, assignments); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.WrapError(err, errcodes.AssignmentExists,
				"assignment for this user and video already exists")
		}
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.WrapError(err, errcodes.NotFound,
				"assignment references a missing user or video")
		}
		return queryError(err, "repository: failed to insert assignments")
	}

	return nil
}

func (r *AssignmentRepository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `DELETE FROM assignments WHERE id = ANY($1);`

	if _, err := r.db.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return queryError(err, "repository: failed to delete assignments")
	}

	return nil
}

// Update applies a partial update; nil patch fields keep their current value.
func (r *AssignmentRepository) Update(ctx context.Context, id string, patch entity.AssignmentPatch) error {
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `
        UPDATE assignments SET
            assigned_date = COALESCE($2, assigned_date),
            is_completed  = COALESCE($3, is_completed),
            last_watched  = COALESCE($4, last_watched),
            modified_date = COALESCE($5, modified_date),
            last_action   = COALESCE($6, last_action)
        WHERE id = $1;
    `

	result, err := r.db.ExecContext(ctx, query, id,
		patch.AssignedDate, patch.IsCompleted, patch.LastWatched, patch.ModifiedDate, patch.LastAction)
	if err != nil {
		return queryError(err, "repository: failed to update assignment")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return queryError(err, "repository: failed to read update result")
	}
	if affected == 0 {
		return domain.NewError(errcodes.NotFound, "assignment not found")
	}

	return nil
}
