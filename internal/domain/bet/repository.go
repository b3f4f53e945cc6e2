package bet

import "context"

type Repository interface {
	Create(ctx context.Context, item Bet) error
	GetByID(ctx context.Context, betID string) (Bet, bool, error)
	ListByUser(ctx context.Context, userID string) ([]Bet, error)
	ListPendingByMatch(ctx context.Context, matchID string) ([]Bet, error)
	// UpdateFromPending persists a terminal transition only while the
	// stored bet is still PENDING. The bool reports whether this call
	// won the transition; false means another settlement got there
	// first.
	UpdateFromPending(ctx context.Context, item Bet) (bool, error)
}
