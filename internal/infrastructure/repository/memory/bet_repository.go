package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/clutchpoint/arena/internal/domain/bet"
)

type BetRepository struct {
	mu     sync.RWMutex
	items  map[string]bet.Bet
	orders []string
}

func NewBetRepository() *BetRepository {
	return &BetRepository{
		items: make(map[string]bet.Bet),
	}
}

func (r *BetRepository) Create(_ context.Context, item bet.Bet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; ok {
		return fmt.Errorf("bet %s already exists", item.ID)
	}
	r.items[item.ID] = item
	r.orders = append(r.orders, item.ID)

	return nil
}

func (r *BetRepository) GetByID(_ context.Context, betID string) (bet.Bet, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.items[betID]
	if !ok {
		return bet.Bet{}, false, nil
	}

	return b, true, nil
}

func (r *BetRepository) ListByUser(_ context.Context, userID string) ([]bet.Bet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]bet.Bet, 0)
	for _, id := range r.orders {
		if r.items[id].UserID == userID {
			out = append(out, r.items[id])
		}
	}

	return out, nil
}

func (r *BetRepository) ListPendingByMatch(_ context.Context, matchID string) ([]bet.Bet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]bet.Bet, 0)
	for _, id := range r.orders {
		item := r.items[id]
		if item.MatchID == matchID && item.Status == bet.StatusPending {
			out = append(out, item)
		}
	}

	return out, nil
}

func (r *BetRepository) UpdateFromPending(_ context.Context, item bet.Bet) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[item.ID]
	if !ok {
		return false, fmt.Errorf("bet %s not found", item.ID)
	}
	if current.Status != bet.StatusPending {
		return false, nil
	}
	r.items[item.ID] = item

	return true, nil
}
