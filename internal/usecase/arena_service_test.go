package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/clutchpoint/arena/internal/domain/bet"
	"github.com/clutchpoint/arena/internal/domain/match"
	"github.com/clutchpoint/arena/internal/domain/odds"
	"github.com/clutchpoint/arena/internal/domain/user"
	"github.com/clutchpoint/arena/internal/infrastructure/repository/memory"
	"github.com/clutchpoint/arena/internal/platform/logging"
)

var fixedNow = time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)

type seqIDGenerator struct {
	n int
}

func (g *seqIDGenerator) NewID(prefix string) (string, error) {
	g.n++
	return fmt.Sprintf("%s_%04d", prefix, g.n), nil
}

type arenaFixture struct {
	service   *ArenaService
	matchRepo *memory.MatchRepository
	betRepo   *memory.BetRepository
	statsRepo *memory.StatsRepository
	userRepo  *memory.UserRepository
}

// newArenaFixture wires the service over memory repositories with a
// fixed clock and a fixed strength table, so every quoted price in the
// tests is exact: FURIA 0.85 vs MIBR 0.75 prices home at 2.45 and away
// at 2.55 with no tournament or game modifier applied.
func newArenaFixture(t *testing.T) *arenaFixture {
	t.Helper()

	matchRepo := memory.NewMatchRepository([]match.Match{
		{
			ID:         "m-open",
			HomeTeam:   match.Team{ID: "t-furia", Name: "FURIA"},
			AwayTeam:   match.Team{ID: "t-mibr", Name: "MIBR"},
			Tournament: match.Tournament{ID: "tour-1", Name: "IEM Katowice", Game: "CS2"},
			StartTime:  fixedNow.Add(2 * time.Hour),
			Status:     match.StatusScheduled,
		},
		{
			ID:         "m-started",
			HomeTeam:   match.Team{ID: "t-furia", Name: "FURIA"},
			AwayTeam:   match.Team{ID: "t-mibr", Name: "MIBR"},
			Tournament: match.Tournament{ID: "tour-1", Name: "IEM Katowice", Game: "CS2"},
			StartTime:  fixedNow.Add(-30 * time.Minute),
			Status:     match.StatusLive,
		},
	})
	betRepo := memory.NewBetRepository()
	statsRepo := memory.NewStatsRepository()
	userRepo := memory.NewUserRepository([]user.User{
		{ID: "user-rich", Username: "rich", Points: 1000},
		{ID: "user-broke", Username: "broke", Points: 50},
	})

	engine := odds.NewEngine(odds.NewTableResolverWith(map[string]float64{
		"FURIA": 0.85,
		"MIBR":  0.75,
	}))

	service := NewArenaService(matchRepo, betRepo, statsRepo, userRepo, engine, &seqIDGenerator{}, logging.NewNop())
	service.now = func() time.Time { return fixedNow }

	return &arenaFixture{
		service:   service,
		matchRepo: matchRepo,
		betRepo:   betRepo,
		statsRepo: statsRepo,
		userRepo:  userRepo,
	}
}

func priceNear(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func (f *arenaFixture) balance(t *testing.T, userID string) int64 {
	t.Helper()
	account, ok, err := f.userRepo.GetByID(context.Background(), userID)
	if err != nil || !ok {
		t.Fatalf("get user %s: ok=%v err=%v", userID, ok, err)
	}
	return account.Points
}

func TestArenaService_PlaceBet_InsufficientPoints(t *testing.T) {
	t.Parallel()

	f := newArenaFixture(t)
	_, err := f.service.PlaceBet(context.Background(), PlaceBetRequest{
		UserID:          "user-broke",
		MatchID:         "m-open",
		Amount:          100,
		PredictedWinner: "FURIA",
	})
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}

	if got := f.balance(t, "user-broke"); got != 50 {
		t.Fatalf("balance mutated on rejected bet: %d", got)
	}
	bets, err := f.betRepo.ListByUser(context.Background(), "user-broke")
	if err != nil {
		t.Fatalf("list bets: %v", err)
	}
	if len(bets) != 0 {
		t.Fatalf("bet persisted despite rejection: %+v", bets)
	}
}

func TestArenaService_PlaceBet_MatchNotFound(t *testing.T) {
	t.Parallel()

	f := newArenaFixture(t)
	_, err := f.service.PlaceBet(context.Background(), PlaceBetRequest{
		UserID:          "user-rich",
		MatchID:         "m-missing",
		Amount:          10,
		PredictedWinner: "FURIA",
	})
	if !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
}

func TestArenaService_PlaceBet_BettingClosedAtKickoff(t *testing.T) {
	t.Parallel()

	f := newArenaFixture(t)
	_, err := f.service.PlaceBet(context.Background(), PlaceBetRequest{
		UserID:          "user-rich",
		MatchID:         "m-started",
		Amount:          10,
		PredictedWinner: "FURIA",
	})
	if !errors.Is(err, ErrBettingClosed) {
		t.Fatalf("expected ErrBettingClosed, got %v", err)
	}
}

func TestArenaService_PlaceBet_LocksQuoteAndDebitsStake(t *testing.T) {
	t.Parallel()

	f := newArenaFixture(t)
	placed, err := f.service.PlaceBet(context.Background(), PlaceBetRequest{
		UserID:          "user-rich",
		MatchID:         "m-open",
		Amount:          10,
		PredictedWinner: "FURIA",
	})
	if err != nil {
		t.Fatalf("PlaceBet error: %v", err)
	}

	if placed.Status != bet.StatusPending {
		t.Fatalf("expected PENDING, got %s", placed.Status)
	}
	if !priceNear(placed.Odds, 2.45) {
		t.Fatalf("expected locked home price 2.45, got %v", placed.Odds)
	}
	if placed.PotentialWinnings != 24 {
		t.Fatalf("expected floor(10*2.45)=24, got %d", placed.PotentialWinnings)
	}
	if got := f.balance(t, "user-rich"); got != 990 {
		t.Fatalf("expected stake debited to 990, got %d", got)
	}

	stored, ok, err := f.betRepo.GetByID(context.Background(), placed.ID)
	if err != nil || !ok {
		t.Fatalf("stored bet missing: ok=%v err=%v", ok, err)
	}
	if stored != placed {
		t.Fatalf("stored bet differs: %+v vs %+v", stored, placed)
	}
}

func TestArenaService_PlaceBet_UnknownScoreLineUsesFallbackPrice(t *testing.T) {
	t.Parallel()

	f := newArenaFixture(t)
	placed, err := f.service.PlaceBet(context.Background(), PlaceBetRequest{
		UserID:         "user-rich",
		MatchID:        "m-open",
		Amount:         10,
		PredictedScore: "9-9",
	})
	if err != nil {
		t.Fatalf("PlaceBet error: %v", err)
	}
	if placed.Odds != odds.FallbackScorePrice {
		t.Fatalf("expected fallback price %v, got %v", odds.FallbackScorePrice, placed.Odds)
	}
	if placed.PotentialWinnings != 100 {
		t.Fatalf("expected 100, got %d", placed.PotentialWinnings)
	}
}

func TestArenaService_SettleBet_WinCreditsAndAggregates(t *testing.T) {
	t.Parallel()

	f := newArenaFixture(t)
	placed, err := f.service.PlaceBet(context.Background(), PlaceBetRequest{
		UserID:          "user-rich",
		MatchID:         "m-open",
		Amount:          10,
		PredictedWinner: "FURIA",
	})
	if err != nil {
		t.Fatalf("PlaceBet error: %v", err)
	}

	settled, err := f.service.SettleBet(context.Background(), placed.ID, "FURIA", "2-1")
	if err != nil {
		t.Fatalf("SettleBet error: %v", err)
	}
	if settled.Status != bet.StatusWon {
		t.Fatalf("expected WON, got %s", settled.Status)
	}
	if settled.SettledAt == nil || !settled.SettledAt.Equal(fixedNow) {
		t.Fatalf("expected settled timestamp %v, got %v", fixedNow, settled.SettledAt)
	}

	if got := f.balance(t, "user-rich"); got != 990+placed.PotentialWinnings {
		t.Fatalf("expected winnings credited, balance %d", got)
	}

	stats, ok, err := f.statsRepo.GetByUser(context.Background(), "user-rich")
	if err != nil || !ok {
		t.Fatalf("stats missing: ok=%v err=%v", ok, err)
	}
	if stats.TotalBets != 1 || stats.WonBets != 1 || stats.TotalPointsWon != placed.PotentialWinnings {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Username != "rich" {
		t.Fatalf("expected display name from user record, got %q", stats.Username)
	}
	if !stats.HasBadge("First Win") {
		t.Fatalf("expected First Win on first winning settlement, got %v", stats.Badges)
	}
}

func TestArenaService_SettleBet_ExactScoreIgnoresWinner(t *testing.T) {
	t.Parallel()

	f := newArenaFixture(t)
	placed, err := f.service.PlaceBet(context.Background(), PlaceBetRequest{
		UserID:         "user-rich",
		MatchID:        "m-open",
		Amount:         10,
		PredictedScore: "2-1",
	})
	if err != nil {
		t.Fatalf("PlaceBet error: %v", err)
	}

	// Score is right even though MIBR winning would contradict a
	// home-winner read of the slip.
	settled, err := f.service.SettleBet(context.Background(), placed.ID, "MIBR", "2-1")
	if err != nil {
		t.Fatalf("SettleBet error: %v", err)
	}
	if settled.Status != bet.StatusWon {
		t.Fatalf("exact-score match should win regardless of winner, got %s", settled.Status)
	}
}

func TestArenaService_SettleBet_SecondCallRejected(t *testing.T) {
	t.Parallel()

	f := newArenaFixture(t)
	placed, err := f.service.PlaceBet(context.Background(), PlaceBetRequest{
		UserID:          "user-rich",
		MatchID:         "m-open",
		Amount:          10,
		PredictedWinner: "FURIA",
	})
	if err != nil {
		t.Fatalf("PlaceBet error: %v", err)
	}

	first, err := f.service.SettleBet(context.Background(), placed.ID, "FURIA", "2-0")
	if err != nil {
		t.Fatalf("first settlement error: %v", err)
	}
	balanceAfterFirst := f.balance(t, "user-rich")

	_, err = f.service.SettleBet(context.Background(), placed.ID, "FURIA", "2-0")
	if !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}

	stored, _, err := f.betRepo.GetByID(context.Background(), placed.ID)
	if err != nil {
		t.Fatalf("get bet: %v", err)
	}
	if stored.Status != first.Status {
		t.Fatalf("second settlement mutated the bet: %+v", stored)
	}
	if got := f.balance(t, "user-rich"); got != balanceAfterFirst {
		t.Fatalf("second settlement mutated the balance: %d vs %d", got, balanceAfterFirst)
	}
	stats, _, err := f.statsRepo.GetByUser(context.Background(), "user-rich")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.TotalBets != 1 {
		t.Fatalf("second settlement re-counted the bet: %+v", stats)
	}
}

func TestArenaService_SettleBet_ConcurrentCallsCreditOnce(t *testing.T) {
	t.Parallel()

	f := newArenaFixture(t)
	placed, err := f.service.PlaceBet(context.Background(), PlaceBetRequest{
		UserID:          "user-rich",
		MatchID:         "m-open",
		Amount:          10,
		PredictedWinner: "FURIA",
	})
	if err != nil {
		t.Fatalf("PlaceBet error: %v", err)
	}

	const callers = 32
	start := make(chan struct{})
	results := make(chan error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.service.SettleBet(context.Background(), placed.ID, "FURIA", "2-0")
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	var settled, rejected int
	for err := range results {
		switch {
		case err == nil:
			settled++
		case errors.Is(err, ErrAlreadySettled):
			rejected++
		default:
			t.Fatalf("unexpected settlement error: %v", err)
		}
	}
	if settled != 1 || rejected != callers-1 {
		t.Fatalf("expected exactly one settlement to win, got %d wins and %d rejections", settled, rejected)
	}

	if got := f.balance(t, "user-rich"); got != 990+placed.PotentialWinnings {
		t.Fatalf("winnings credited more than once, balance %d", got)
	}
	stats, ok, err := f.statsRepo.GetByUser(context.Background(), "user-rich")
	if err != nil || !ok {
		t.Fatalf("stats missing: ok=%v err=%v", ok, err)
	}
	if stats.TotalBets != 1 || stats.WonBets != 1 || stats.TotalPointsWon != placed.PotentialWinnings {
		t.Fatalf("settlement counted more than once: %+v", stats)
	}
}

func TestArenaService_ConcurrentSettleAndRefundResolveOnce(t *testing.T) {
	t.Parallel()

	f := newArenaFixture(t)
	placed, err := f.service.PlaceBet(context.Background(), PlaceBetRequest{
		UserID:          "user-rich",
		MatchID:         "m-open",
		Amount:          10,
		PredictedWinner: "FURIA",
	})
	if err != nil {
		t.Fatalf("PlaceBet error: %v", err)
	}

	start := make(chan struct{})
	results := make(chan error, 2)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		_, err := f.service.SettleBet(context.Background(), placed.ID, "FURIA", "2-0")
		results <- err
	}()
	go func() {
		defer wg.Done()
		<-start
		_, err := f.service.RefundBet(context.Background(), placed.ID)
		results <- err
	}()
	close(start)
	wg.Wait()
	close(results)

	var resolved int
	for err := range results {
		switch {
		case err == nil:
			resolved++
		case errors.Is(err, ErrAlreadySettled):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if resolved != 1 {
		t.Fatalf("expected exactly one of settle/refund to win, got %d", resolved)
	}

	stored, ok, err := f.betRepo.GetByID(context.Background(), placed.ID)
	if err != nil || !ok {
		t.Fatalf("get bet: ok=%v err=%v", ok, err)
	}
	var wantBalance int64
	switch stored.Status {
	case bet.StatusWon:
		wantBalance = 990 + placed.PotentialWinnings
	case bet.StatusRefunded:
		wantBalance = 1000
	default:
		t.Fatalf("expected WON or REFUNDED, got %s", stored.Status)
	}
	if got := f.balance(t, "user-rich"); got != wantBalance {
		t.Fatalf("expected balance %d for %s outcome, got %d", wantBalance, stored.Status, got)
	}
}

func TestArenaService_SettleBet_LossAggregatesWithoutCredit(t *testing.T) {
	t.Parallel()

	f := newArenaFixture(t)
	placed, err := f.service.PlaceBet(context.Background(), PlaceBetRequest{
		UserID:          "user-rich",
		MatchID:         "m-open",
		Amount:          10,
		PredictedWinner: "FURIA",
	})
	if err != nil {
		t.Fatalf("PlaceBet error: %v", err)
	}

	settled, err := f.service.SettleBet(context.Background(), placed.ID, "MIBR", "1-2")
	if err != nil {
		t.Fatalf("SettleBet error: %v", err)
	}
	if settled.Status != bet.StatusLost {
		t.Fatalf("expected LOST, got %s", settled.Status)
	}
	if got := f.balance(t, "user-rich"); got != 990 {
		t.Fatalf("losing bet must not credit, balance %d", got)
	}

	stats, ok, err := f.statsRepo.GetByUser(context.Background(), "user-rich")
	if err != nil || !ok {
		t.Fatalf("stats missing: ok=%v err=%v", ok, err)
	}
	if stats.TotalBets != 1 || stats.WonBets != 0 || stats.Accuracy != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(stats.Badges) != 0 {
		t.Fatalf("losing first bet must not grant badges: %v", stats.Badges)
	}
}

func TestArenaService_RefundBet_ReturnsStake(t *testing.T) {
	t.Parallel()

	f := newArenaFixture(t)
	placed, err := f.service.PlaceBet(context.Background(), PlaceBetRequest{
		UserID:          "user-rich",
		MatchID:         "m-open",
		Amount:          40,
		PredictedWinner: "FURIA",
	})
	if err != nil {
		t.Fatalf("PlaceBet error: %v", err)
	}

	refunded, err := f.service.RefundBet(context.Background(), placed.ID)
	if err != nil {
		t.Fatalf("RefundBet error: %v", err)
	}
	if refunded.Status != bet.StatusRefunded {
		t.Fatalf("expected REFUNDED, got %s", refunded.Status)
	}
	if got := f.balance(t, "user-rich"); got != 1000 {
		t.Fatalf("expected full stake returned, balance %d", got)
	}

	if _, err := f.service.SettleBet(context.Background(), placed.ID, "FURIA", "2-0"); !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("refunded bet must not settle, got %v", err)
	}
}

func TestArenaService_QuoteOdds(t *testing.T) {
	t.Parallel()

	f := newArenaFixture(t)
	quoted, err := f.service.QuoteOdds(context.Background(), "m-open")
	if err != nil {
		t.Fatalf("QuoteOdds error: %v", err)
	}
	if !priceNear(quoted.HomeWin, 2.45) || !priceNear(quoted.AwayWin, 2.55) {
		t.Fatalf("unexpected win prices: %+v", quoted)
	}

	if _, err := f.service.QuoteOdds(context.Background(), "nope"); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
}
