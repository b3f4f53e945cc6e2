package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/clutchpoint/arena/internal/domain/arenastats"
	"github.com/clutchpoint/arena/internal/domain/bet"
	"github.com/clutchpoint/arena/internal/domain/match"
	"github.com/clutchpoint/arena/internal/domain/odds"
	"github.com/clutchpoint/arena/internal/domain/user"
	"github.com/clutchpoint/arena/internal/platform/id"
	"github.com/clutchpoint/arena/internal/platform/logging"
)

// ArenaService is the wagering core: quoting, placement, settlement and
// the stats recomputation that settlement triggers.
type ArenaService struct {
	matchRepo match.Repository
	betRepo   bet.Repository
	statsRepo arenastats.Repository
	userRepo  user.Repository
	engine    *odds.Engine
	ids       id.Generator
	logger    *logging.Logger
	now       func() time.Time
}

func NewArenaService(
	matchRepo match.Repository,
	betRepo bet.Repository,
	statsRepo arenastats.Repository,
	userRepo user.Repository,
	engine *odds.Engine,
	ids id.Generator,
	logger *logging.Logger,
) *ArenaService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ArenaService{
		matchRepo: matchRepo,
		betRepo:   betRepo,
		statsRepo: statsRepo,
		userRepo:  userRepo,
		engine:    engine,
		ids:       ids,
		logger:    logger,
		now:       time.Now,
	}
}

// QuoteOdds computes the current prices for a match. Quotes are never
// cached; a bet placed later is re-priced against the match as fetched
// at placement time.
func (s *ArenaService) QuoteOdds(ctx context.Context, matchID string) (odds.BetOdds, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ArenaService.QuoteOdds")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return odds.BetOdds{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return odds.BetOdds{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return odds.BetOdds{}, fmt.Errorf("%w: match=%s", ErrMatchNotFound, matchID)
	}

	return s.engine.Calculate(item), nil
}

type PlaceBetRequest struct {
	UserID          string
	MatchID         string
	Amount          int64
	PredictedWinner string
	PredictedScore  string
}

// PlaceBet checks funds, match existence and kickoff time, in that
// order, then locks the current price and debits the stake. The bet is
// persisted before the debit; a debit failure leaves the bet on record
// and is surfaced to the caller.
func (s *ArenaService) PlaceBet(ctx context.Context, req PlaceBetRequest) (bet.Bet, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ArenaService.PlaceBet")
	defer span.End()

	req.UserID = strings.TrimSpace(req.UserID)
	req.MatchID = strings.TrimSpace(req.MatchID)
	req.PredictedWinner = strings.TrimSpace(req.PredictedWinner)
	req.PredictedScore = strings.TrimSpace(req.PredictedScore)

	if req.UserID == "" {
		return bet.Bet{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if req.MatchID == "" {
		return bet.Bet{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if req.Amount <= 0 {
		return bet.Bet{}, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if req.PredictedWinner == "" && req.PredictedScore == "" {
		return bet.Bet{}, fmt.Errorf("%w: a predicted winner or score is required", ErrInvalidInput)
	}

	account, exists, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return bet.Bet{}, fmt.Errorf("get user: %w", err)
	}
	if !exists {
		return bet.Bet{}, fmt.Errorf("%w: user=%s", ErrNotFound, req.UserID)
	}
	if req.Amount > account.Points {
		return bet.Bet{}, fmt.Errorf("%w: balance=%d stake=%d", ErrInsufficientPoints, account.Points, req.Amount)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, req.MatchID)
	if err != nil {
		return bet.Bet{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return bet.Bet{}, fmt.Errorf("%w: match=%s", ErrMatchNotFound, req.MatchID)
	}

	now := s.now().UTC()
	if !item.StartTime.After(now) {
		return bet.Bet{}, fmt.Errorf("%w: match=%s started at %s", ErrBettingClosed, item.ID, item.StartTime.Format(time.RFC3339))
	}

	quoted := s.engine.Calculate(item)
	price := selectPrice(quoted, item, req.PredictedWinner, req.PredictedScore)

	betID, err := s.ids.NewID("bet")
	if err != nil {
		return bet.Bet{}, fmt.Errorf("generate bet id: %w", err)
	}

	placed := bet.Bet{
		ID:                betID,
		UserID:            req.UserID,
		MatchID:           req.MatchID,
		Amount:            req.Amount,
		PredictedWinner:   req.PredictedWinner,
		PredictedScore:    req.PredictedScore,
		Odds:              price,
		PotentialWinnings: int64(math.Floor(float64(req.Amount) * price)),
		Status:            bet.StatusPending,
		CreatedAt:         now,
	}

	if err := s.betRepo.Create(ctx, placed); err != nil {
		return bet.Bet{}, fmt.Errorf("create bet: %w", err)
	}

	if _, err := s.userRepo.AdjustPoints(ctx, req.UserID, -req.Amount); err != nil {
		s.logger.ErrorContext(ctx, "bet persisted but stake debit failed",
			"bet_id", placed.ID, "user_id", req.UserID, "amount", req.Amount, "error", err)
		return bet.Bet{}, fmt.Errorf("debit stake: %w", err)
	}

	s.logger.InfoContext(ctx, "bet placed",
		"bet_id", placed.ID, "user_id", placed.UserID, "match_id", placed.MatchID,
		"amount", placed.Amount, "odds", placed.Odds)

	return placed, nil
}

// selectPrice picks the single price the bet rides on. Exact-score bets
// take the table price, defaulting to the fixed fallback for lines the
// table does not carry. Winner bets fall through to the draw price when
// the predicted name matches neither team.
func selectPrice(quoted odds.BetOdds, item match.Match, predictedWinner, predictedScore string) float64 {
	if predictedScore != "" {
		if price, ok := quoted.ExactScores[predictedScore]; ok {
			return price
		}
		return odds.FallbackScorePrice
	}
	switch predictedWinner {
	case item.HomeTeam.Name:
		return quoted.HomeWin
	case item.AwayTeam.Name:
		return quoted.AwayWin
	default:
		return quoted.Draw
	}
}

// SettleBet resolves a pending bet against the final result. Settlement
// is one-shot; a bet that already left PENDING is rejected untouched.
func (s *ArenaService) SettleBet(ctx context.Context, betID, actualWinner, actualScore string) (bet.Bet, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ArenaService.SettleBet")
	defer span.End()

	betID = strings.TrimSpace(betID)
	if betID == "" {
		return bet.Bet{}, fmt.Errorf("%w: bet id is required", ErrInvalidInput)
	}

	item, exists, err := s.betRepo.GetByID(ctx, betID)
	if err != nil {
		return bet.Bet{}, fmt.Errorf("get bet: %w", err)
	}
	if !exists {
		return bet.Bet{}, fmt.Errorf("%w: bet=%s", ErrBetNotFound, betID)
	}
	if item.Settled() {
		return bet.Bet{}, fmt.Errorf("%w: bet=%s status=%s", ErrAlreadySettled, item.ID, item.Status)
	}

	won := item.Wins(actualWinner, actualScore)

	now := s.now().UTC()
	item.SettledAt = &now
	if won {
		item.Status = bet.StatusWon
	} else {
		item.Status = bet.StatusLost
	}

	transitioned, err := s.betRepo.UpdateFromPending(ctx, item)
	if err != nil {
		return bet.Bet{}, fmt.Errorf("update bet: %w", err)
	}
	if !transitioned {
		return bet.Bet{}, fmt.Errorf("%w: bet=%s", ErrAlreadySettled, item.ID)
	}

	var pointsWon int64
	if won {
		pointsWon = item.PotentialWinnings
		if _, err := s.userRepo.AdjustPoints(ctx, item.UserID, pointsWon); err != nil {
			s.logger.ErrorContext(ctx, "bet settled but winnings credit failed",
				"bet_id", item.ID, "user_id", item.UserID, "winnings", pointsWon, "error", err)
			return bet.Bet{}, fmt.Errorf("credit winnings: %w", err)
		}
	}

	if err := s.updateArenaStats(ctx, item.UserID, won, pointsWon); err != nil {
		return bet.Bet{}, fmt.Errorf("update arena stats: %w", err)
	}

	s.logger.InfoContext(ctx, "bet settled",
		"bet_id", item.ID, "user_id", item.UserID, "status", item.Status, "points_won", pointsWon)

	return item, nil
}

// RefundBet is the administrative escape hatch for voided matches. It
// returns the stake and parks the bet in REFUNDED; settled bets cannot
// be refunded.
func (s *ArenaService) RefundBet(ctx context.Context, betID string) (bet.Bet, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ArenaService.RefundBet")
	defer span.End()

	betID = strings.TrimSpace(betID)
	if betID == "" {
		return bet.Bet{}, fmt.Errorf("%w: bet id is required", ErrInvalidInput)
	}

	item, exists, err := s.betRepo.GetByID(ctx, betID)
	if err != nil {
		return bet.Bet{}, fmt.Errorf("get bet: %w", err)
	}
	if !exists {
		return bet.Bet{}, fmt.Errorf("%w: bet=%s", ErrBetNotFound, betID)
	}
	if item.Settled() {
		return bet.Bet{}, fmt.Errorf("%w: bet=%s status=%s", ErrAlreadySettled, item.ID, item.Status)
	}

	now := s.now().UTC()
	item.Status = bet.StatusRefunded
	item.SettledAt = &now

	transitioned, err := s.betRepo.UpdateFromPending(ctx, item)
	if err != nil {
		return bet.Bet{}, fmt.Errorf("update bet: %w", err)
	}
	if !transitioned {
		return bet.Bet{}, fmt.Errorf("%w: bet=%s", ErrAlreadySettled, item.ID)
	}

	if _, err := s.userRepo.AdjustPoints(ctx, item.UserID, item.Amount); err != nil {
		s.logger.ErrorContext(ctx, "bet refunded but stake return failed",
			"bet_id", item.ID, "user_id", item.UserID, "amount", item.Amount, "error", err)
		return bet.Bet{}, fmt.Errorf("return stake: %w", err)
	}

	s.logger.InfoContext(ctx, "bet refunded", "bet_id", item.ID, "user_id", item.UserID)

	return item, nil
}

func (s *ArenaService) ListUserBets(ctx context.Context, userID string) ([]bet.Bet, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ArenaService.ListUserBets")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	items, err := s.betRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bets by user: %w", err)
	}

	return items, nil
}

// updateArenaStats folds one settlement into the user's aggregate
// record. Only settlement calls this; it is not an API surface.
func (s *ArenaService) updateArenaStats(ctx context.Context, userID string, won bool, pointsWon int64) error {
	current, exists, err := s.statsRepo.GetByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("get arena stats: %w", err)
	}

	now := s.now().UTC()
	var next arenastats.Stats
	if !exists {
		username := userID
		if account, found, err := s.userRepo.GetByID(ctx, userID); err == nil && found {
			username = account.Username
		}
		next = arenastats.NewFromFirstSettlement(userID, username, won, pointsWon, now)
	} else {
		next = arenastats.ApplySettlement(current, won, pointsWon, now)
	}

	if err := s.statsRepo.Upsert(ctx, next); err != nil {
		return fmt.Errorf("upsert arena stats: %w", err)
	}

	return nil
}
