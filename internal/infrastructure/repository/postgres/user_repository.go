package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clutchpoint/arena/internal/domain/user"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userTableModel struct {
	PublicID string `db:"public_id"`
	Username string `db:"username"`
	Points   int64  `db:"points"`
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (user.User, bool, error) {
	const query = `
SELECT public_id, username, points
FROM users
WHERE public_id = $1
  AND deleted_at IS NULL`

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user: %w", err)
	}

	return user.User{ID: row.PublicID, Username: row.Username, Points: row.Points}, true, nil
}

func (r *UserRepository) Exists(ctx context.Context, userID string) (bool, error) {
	const query = `
SELECT EXISTS (
    SELECT 1 FROM users WHERE public_id = $1 AND deleted_at IS NULL
)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// AdjustPoints applies a signed delta atomically. The balance guard sits
// in SQL so concurrent debits cannot race a balance below zero.
func (r *UserRepository) AdjustPoints(ctx context.Context, userID string, delta int64) (int64, error) {
	const query = `
UPDATE users
SET points = points + $2,
    updated_at = NOW()
WHERE public_id = $1
  AND points + $2 >= 0
  AND deleted_at IS NULL
RETURNING points`

	var balance int64
	if err := r.db.GetContext(ctx, &balance, query, userID, delta); err != nil {
		if isNotFound(err) {
			exists, existsErr := r.Exists(ctx, userID)
			if existsErr != nil {
				return 0, existsErr
			}
			if !exists {
				return 0, fmt.Errorf("adjust points: user %s not found", userID)
			}
			return 0, fmt.Errorf("adjust points: balance for user %s would go negative", userID)
		}
		return 0, fmt.Errorf("adjust points: %w", err)
	}

	return balance, nil
}
