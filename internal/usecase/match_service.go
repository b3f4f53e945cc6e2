package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/clutchpoint/arena/internal/domain/match"
	"github.com/clutchpoint/arena/internal/platform/logging"
)

// MatchFeedProvider is the upstream match-data feed. The arena only
// reads from it; match lifecycle stays with the provider.
type MatchFeedProvider interface {
	FetchMatches(ctx context.Context) ([]match.Match, error)
}

type MatchService struct {
	matchRepo match.Repository
	feed      MatchFeedProvider
	logger    *logging.Logger
}

func NewMatchService(matchRepo match.Repository, feed MatchFeedProvider, logger *logging.Logger) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchService{
		matchRepo: matchRepo,
		feed:      feed,
		logger:    logger,
	}
}

func (s *MatchService) ListMatches(ctx context.Context, status match.Status) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListMatches")
	defer span.End()

	var (
		items []match.Match
		err   error
	)
	if status == "" {
		items, err = s.matchRepo.List(ctx)
	} else {
		items, err = s.matchRepo.ListByStatus(ctx, status)
	}
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartTime.Before(items[j].StartTime)
	})

	return items, nil
}

func (s *MatchService) GetMatch(ctx context.Context, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.GetMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrMatchNotFound, matchID)
	}

	return item, nil
}

// SyncFromFeed pulls the provider's current match set and upserts it
// into the local store. Returns the number of matches written.
func (s *MatchService) SyncFromFeed(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.SyncFromFeed")
	defer span.End()

	if s.feed == nil {
		return 0, fmt.Errorf("%w: no match feed configured", ErrDependencyUnavailable)
	}

	items, err := s.feed.FetchMatches(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: fetch matches: %v", ErrDependencyUnavailable, err)
	}

	synced := 0
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		if err := s.matchRepo.Upsert(ctx, item); err != nil {
			s.logger.WarnContext(ctx, "upsert match from feed", "match_id", item.ID, "error", err)
			continue
		}
		synced++
	}

	s.logger.InfoContext(ctx, "match feed synced", "fetched", len(items), "synced", synced)

	return synced, nil
}
