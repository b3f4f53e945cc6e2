package match

import "context"

type Repository interface {
	List(ctx context.Context) ([]Match, error)
	ListByStatus(ctx context.Context, status Status) ([]Match, error)
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	Upsert(ctx context.Context, item Match) error
}
