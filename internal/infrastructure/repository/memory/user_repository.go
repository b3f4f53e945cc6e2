package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/clutchpoint/arena/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUserRepository(users []user.User) *UserRepository {
	items := make(map[string]user.User, len(users))
	for _, u := range users {
		items[u.ID] = u
	}

	return &UserRepository{items: items}
}

func (r *UserRepository) GetByID(_ context.Context, userID string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[userID]
	if !ok {
		return user.User{}, false, nil
	}

	return u, true, nil
}

func (r *UserRepository) Exists(_ context.Context, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[userID]
	return ok, nil
}

// AdjustPoints applies a signed delta under the store lock, mirroring
// the transactional balance update a real points ledger performs.
func (r *UserRepository) AdjustPoints(_ context.Context, userID string, delta int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[userID]
	if !ok {
		return 0, fmt.Errorf("user %s not found", userID)
	}

	next := u.Points + delta
	if next < 0 {
		return u.Points, fmt.Errorf("user %s balance would go negative", userID)
	}

	u.Points = next
	r.items[userID] = u

	return next, nil
}

// Delete removes a user record; used by housekeeping and tests
// exercising orphaned stats cleanup.
func (r *UserRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, userID)

	return nil
}
