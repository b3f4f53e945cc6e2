package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/clutchpoint/arena/internal/domain/bet"
	"github.com/clutchpoint/arena/internal/domain/match"
	"github.com/clutchpoint/arena/internal/platform/logging"
)

const defaultSettlementWorkers = 8

// SettlementService fans settlement of a finished match's pending bets
// out over a bounded worker pool. Each bet settles independently; one
// failed bet never blocks the rest of the batch.
type SettlementService struct {
	arena      *ArenaService
	matchRepo  match.Repository
	logger     *logging.Logger
	maxWorkers int
}

func NewSettlementService(arena *ArenaService, matchRepo match.Repository, logger *logging.Logger) *SettlementService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SettlementService{
		arena:      arena,
		matchRepo:  matchRepo,
		logger:     logger,
		maxWorkers: defaultSettlementWorkers,
	}
}

// WithMaxWorkers overrides the worker pool size. Intended for wiring
// only, before the service starts serving.
func (s *SettlementService) WithMaxWorkers(n int) *SettlementService {
	if n > 0 {
		s.maxWorkers = n
	}
	return s
}

type SettlementResult struct {
	MatchID      string `json:"match_id"`
	ActualWinner string `json:"actual_winner"`
	ActualScore  string `json:"actual_score"`
	TotalBets    int    `json:"total_bets"`
	SettledWon   int    `json:"settled_won"`
	SettledLost  int    `json:"settled_lost"`
	Failed       int    `json:"failed"`
}

// SettleMatch settles every pending bet on a finished match, deriving
// the result from the match's recorded score. Re-running after a partial
// failure is safe; already settled bets are skipped by the one-shot
// guard.
func (s *SettlementService) SettleMatch(ctx context.Context, matchID string) (SettlementResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettleMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return SettlementResult{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return SettlementResult{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return SettlementResult{}, fmt.Errorf("%w: match=%s", ErrMatchNotFound, matchID)
	}
	if item.Status != match.StatusFinished || item.Score == nil {
		return SettlementResult{}, fmt.Errorf("%w: match=%s is not finished with a score", ErrInvalidInput, matchID)
	}

	actualWinner := item.WinnerName()
	actualScore := item.Score.Line()

	pending, err := s.arena.betRepo.ListPendingByMatch(ctx, matchID)
	if err != nil {
		return SettlementResult{}, fmt.Errorf("list pending bets: %w", err)
	}

	result := SettlementResult{
		MatchID:      matchID,
		ActualWinner: actualWinner,
		ActualScore:  actualScore,
		TotalBets:    len(pending),
	}
	if len(pending) == 0 {
		return result, nil
	}

	workerCount := s.maxWorkers
	if workerCount > len(pending) {
		workerCount = len(pending)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return SettlementResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var won, lost, failed atomic.Int64
	var workers sync.WaitGroup
	for _, pendingBet := range pending {
		pendingBet := pendingBet
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			settled, err := s.arena.SettleBet(ctx, pendingBet.ID, actualWinner, actualScore)
			if err != nil {
				failed.Add(1)
				s.logger.ErrorContext(ctx, "batch settlement failed for bet",
					"bet_id", pendingBet.ID, "match_id", matchID, "error", err)
				return
			}
			if settled.Status == bet.StatusWon {
				won.Add(1)
			} else {
				lost.Add(1)
			}
		}); err != nil {
			workers.Done()
			failed.Add(1)
			s.logger.ErrorContext(ctx, "submit settlement task", "bet_id", pendingBet.ID, "error", err)
		}
	}
	workers.Wait()

	result.SettledWon = int(won.Load())
	result.SettledLost = int(lost.Load())
	result.Failed = int(failed.Load())

	s.logger.InfoContext(ctx, "match settled",
		"match_id", matchID, "total", result.TotalBets,
		"won", result.SettledWon, "lost", result.SettledLost, "failed", result.Failed)

	return result, nil
}
