package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/clutchpoint/arena/internal/domain/arenastats"
	"github.com/clutchpoint/arena/internal/domain/user"
	"github.com/clutchpoint/arena/internal/platform/cache"
	"github.com/clutchpoint/arena/internal/platform/logging"
)

const (
	leaderboardLimit    = 20
	leaderboardCacheKey = "leaderboard:top"
	leaderboardCacheTTL = 30 * time.Second
)

// LeaderboardService projects a ranked view over all users' arena
// stats. Stats records can outlive their owner, so the projection
// filters against a per-candidate existence check and deletes the
// orphans it finds.
type LeaderboardService struct {
	statsRepo arenastats.Repository
	userRepo  user.Repository
	store     *cache.Store
	logger    *logging.Logger
	limit     int
}

func NewLeaderboardService(statsRepo arenastats.Repository, userRepo user.Repository, logger *logging.Logger) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeaderboardService{
		statsRepo: statsRepo,
		userRepo:  userRepo,
		store:     cache.NewStore(leaderboardCacheTTL),
		logger:    logger,
		limit:     leaderboardLimit,
	}
}

// WithCacheTTL swaps the projection cache for one with the given TTL.
// Intended for wiring only, before the service starts serving.
func (s *LeaderboardService) WithCacheTTL(ttl time.Duration) *LeaderboardService {
	if ttl > 0 {
		s.store = cache.NewStore(ttl)
	}
	return s
}

// GetLeaderboard returns the top entries ordered by accuracy, best
// first. Results are cached briefly; concurrent cold reads collapse to
// one repository scan.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context) ([]arenastats.Stats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetLeaderboard")
	defer span.End()

	value, err := s.store.GetOrLoad(ctx, leaderboardCacheKey, func(ctx context.Context) (any, error) {
		ranked, orphans, err := s.project(ctx)
		if err != nil {
			return nil, err
		}
		s.deleteOrphans(ctx, orphans)

		if len(ranked) > s.limit {
			ranked = ranked[:s.limit]
		}
		return ranked, nil
	})
	if err != nil {
		return nil, err
	}

	ranked, ok := value.([]arenastats.Stats)
	if !ok {
		return nil, fmt.Errorf("unexpected leaderboard cache payload %T", value)
	}
	return ranked, nil
}

// GetUserRank returns a user's 1-based position in the full accuracy
// ordering, not just the display window. ok is false when the user has
// no stats record or no longer exists.
func (s *LeaderboardService) GetUserRank(ctx context.Context, userID string) (int, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetUserRank")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, false, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	ranked, orphans, err := s.project(ctx)
	if err != nil {
		return 0, false, err
	}
	s.deleteOrphans(ctx, orphans)

	for i, entry := range ranked {
		if entry.UserID == userID {
			return i + 1, true, nil
		}
	}
	return 0, false, nil
}

// project is the pure plan step: scan all stats, split them into ranked
// survivors and orphans whose owner is gone. Deletion happens in a
// separate idempotent step so a failed cleanup never corrupts the
// returned ranking.
func (s *LeaderboardService) project(ctx context.Context) (ranked, orphans []arenastats.Stats, err error) {
	all, err := s.statsRepo.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list arena stats: %w", err)
	}

	ranked = make([]arenastats.Stats, 0, len(all))
	for _, entry := range all {
		exists, err := s.userRepo.Exists(ctx, entry.UserID)
		if err != nil {
			return nil, nil, fmt.Errorf("check user %s: %w", entry.UserID, err)
		}
		if !exists {
			orphans = append(orphans, entry)
			continue
		}
		ranked = append(ranked, entry)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Accuracy != ranked[j].Accuracy {
			return ranked[i].Accuracy > ranked[j].Accuracy
		}
		return ranked[i].TotalPointsWon > ranked[j].TotalPointsWon
	})

	return ranked, orphans, nil
}

func (s *LeaderboardService) deleteOrphans(ctx context.Context, orphans []arenastats.Stats) {
	for _, orphan := range orphans {
		if err := s.statsRepo.Delete(ctx, orphan.UserID); err != nil {
			s.logger.WarnContext(ctx, "delete orphaned arena stats",
				"user_id", orphan.UserID, "error", err)
		}
	}
}

// InvalidateCache drops the cached projection, typically after a batch
// settlement lands.
func (s *LeaderboardService) InvalidateCache(ctx context.Context) {
	s.store.Delete(ctx, leaderboardCacheKey)
}
