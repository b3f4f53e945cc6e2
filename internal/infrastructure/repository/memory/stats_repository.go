package memory

import (
	"context"
	"sync"

	"github.com/clutchpoint/arena/internal/domain/arenastats"
)

type StatsRepository struct {
	mu    sync.RWMutex
	items map[string]arenastats.Stats
}

func NewStatsRepository() *StatsRepository {
	return &StatsRepository{
		items: make(map[string]arenastats.Stats),
	}
}

func (r *StatsRepository) GetByUser(_ context.Context, userID string) (arenastats.Stats, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[userID]
	if !ok {
		return arenastats.Stats{}, false, nil
	}

	return cloneStats(s), true, nil
}

func (r *StatsRepository) Upsert(_ context.Context, item arenastats.Stats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.UserID] = cloneStats(item)

	return nil
}

func (r *StatsRepository) List(_ context.Context) ([]arenastats.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]arenastats.Stats, 0, len(r.items))
	for _, s := range r.items {
		out = append(out, cloneStats(s))
	}

	return out, nil
}

func (r *StatsRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, userID)

	return nil
}

// cloneStats copies the badge slice so callers never share backing
// arrays with the store.
func cloneStats(s arenastats.Stats) arenastats.Stats {
	if len(s.Badges) > 0 {
		badges := make([]string, len(s.Badges))
		copy(badges, s.Badges)
		s.Badges = badges
	}
	return s
}
