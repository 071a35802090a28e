package persistence

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"driver_training_service/internal/domain/entity"
)

type UserRepository struct {
	db           *sqlx.DB
	queryTimeout time.Duration
}

func NewUserRepository(db *sqlx.DB, queryTimeout time.Duration) *UserRepository {
	return &UserRepository{db: db, queryTimeout: queryTimeout}
}

func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `
        SELECT id, email, full_name, is_active, created_at
        FROM users
        ORDER BY created_at DESC;
    `

	var users []entity.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, queryError(err, "repository: failed to list users")
	}

	return users, nil
}
