package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/clutchpoint/arena/internal/domain/match"
	"github.com/clutchpoint/arena/internal/platform/logging"
)

func TestSettlementService_SettleMatch(t *testing.T) {
	t.Parallel()

	f := newArenaFixture(t)
	ctx := context.Background()

	place := func(winner, score string) string {
		t.Helper()
		placed, err := f.service.PlaceBet(ctx, PlaceBetRequest{
			UserID:          "user-rich",
			MatchID:         "m-open",
			Amount:          10,
			PredictedWinner: winner,
			PredictedScore:  score,
		})
		if err != nil {
			t.Fatalf("PlaceBet error: %v", err)
		}
		return placed.ID
	}

	place("FURIA", "")
	place("MIBR", "")
	place("", "2-1")
	place("", "0-2")

	finished, _, err := f.matchRepo.GetByID(ctx, "m-open")
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	finished.Status = match.StatusFinished
	finished.Score = &match.Score{Home: 2, Away: 1}
	if err := f.matchRepo.Upsert(ctx, finished); err != nil {
		t.Fatalf("upsert match: %v", err)
	}

	svc := NewSettlementService(f.service, f.matchRepo, logging.NewNop())
	result, err := svc.SettleMatch(ctx, "m-open")
	if err != nil {
		t.Fatalf("SettleMatch error: %v", err)
	}

	if result.ActualWinner != "FURIA" || result.ActualScore != "2-1" {
		t.Fatalf("unexpected derived result: %+v", result)
	}
	if result.TotalBets != 4 || result.SettledWon != 2 || result.SettledLost != 2 || result.Failed != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	pending, err := f.betRepo.ListPendingByMatch(ctx, "m-open")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("bets left pending after batch: %d", len(pending))
	}

	stats, ok, err := f.statsRepo.GetByUser(ctx, "user-rich")
	if err != nil || !ok {
		t.Fatalf("stats missing: ok=%v err=%v", ok, err)
	}
	if stats.TotalBets != 4 || stats.WonBets != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	// Re-running against an already settled match is a no-op.
	again, err := svc.SettleMatch(ctx, "m-open")
	if err != nil {
		t.Fatalf("second SettleMatch error: %v", err)
	}
	if again.TotalBets != 0 {
		t.Fatalf("expected empty second batch, got %+v", again)
	}
}

func TestSettlementService_SettleMatch_RequiresFinishedMatch(t *testing.T) {
	t.Parallel()

	f := newArenaFixture(t)
	svc := NewSettlementService(f.service, f.matchRepo, logging.NewNop())

	if _, err := svc.SettleMatch(context.Background(), "m-open"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unfinished match, got %v", err)
	}
	if _, err := svc.SettleMatch(context.Background(), "nope"); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
}
