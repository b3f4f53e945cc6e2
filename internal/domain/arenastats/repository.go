package arenastats

import "context"

type Repository interface {
	GetByUser(ctx context.Context, userID string) (Stats, bool, error)
	Upsert(ctx context.Context, item Stats) error
	List(ctx context.Context) ([]Stats, error)
	Delete(ctx context.Context, userID string) error
}
