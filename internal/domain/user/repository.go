package user

import "context"

// Repository fronts the shared points ledger. Balance mutations are
// expressed as signed deltas so concurrent credits from other flows
// (gamification, shop) are never clobbered by an absolute overwrite.
type Repository interface {
	GetByID(ctx context.Context, userID string) (User, bool, error)
	Exists(ctx context.Context, userID string) (bool, error)
	AdjustPoints(ctx context.Context, userID string, delta int64) (int64, error)
}
