package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clutchpoint/arena/internal/domain/bet"
)

type BetRepository struct {
	db *sqlx.DB
}

func NewBetRepository(db *sqlx.DB) *BetRepository {
	return &BetRepository{db: db}
}

type betTableModel struct {
	PublicID          string         `db:"public_id"`
	UserID            string         `db:"user_id"`
	MatchID           string         `db:"match_public_id"`
	Amount            int64          `db:"amount"`
	PredictedWinner   sql.NullString `db:"predicted_winner"`
	PredictedScore    sql.NullString `db:"predicted_score"`
	Odds              float64        `db:"odds"`
	PotentialWinnings int64          `db:"potential_winnings"`
	Status            string         `db:"status"`
	CreatedAt         time.Time      `db:"created_at"`
	SettledAt         sql.NullTime   `db:"settled_at"`
}

const betColumns = `
public_id, user_id, match_public_id, amount, predicted_winner, predicted_score,
odds, potential_winnings, status, created_at, settled_at`

func (r *BetRepository) Create(ctx context.Context, item bet.Bet) error {
	const query = `
INSERT INTO bets (
    public_id, user_id, match_public_id, amount, predicted_winner, predicted_score,
    odds, potential_winnings, status, created_at
) VALUES (
    :public_id, :user_id, :match_public_id, :amount, :predicted_winner, :predicted_score,
    :odds, :potential_winnings, :status, :created_at
)`

	if _, err := r.db.NamedExecContext(ctx, query, betToArgs(item)); err != nil {
		return fmt.Errorf("insert bet: %w", err)
	}

	return nil
}

func (r *BetRepository) GetByID(ctx context.Context, betID string) (bet.Bet, bool, error) {
	query := `
SELECT ` + betColumns + `
FROM bets
WHERE public_id = $1`

	var row betTableModel
	if err := r.db.GetContext(ctx, &row, query, betID); err != nil {
		if isNotFound(err) {
			return bet.Bet{}, false, nil
		}
		return bet.Bet{}, false, fmt.Errorf("get bet: %w", err)
	}

	return mapBetRow(row), true, nil
}

func (r *BetRepository) ListByUser(ctx context.Context, userID string) ([]bet.Bet, error) {
	query := `
SELECT ` + betColumns + `
FROM bets
WHERE user_id = $1
ORDER BY created_at DESC, public_id`

	var rows []betTableModel
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("select bets by user: %w", err)
	}

	return mapBetRows(rows), nil
}

func (r *BetRepository) ListPendingByMatch(ctx context.Context, matchID string) ([]bet.Bet, error) {
	query := `
SELECT ` + betColumns + `
FROM bets
WHERE match_public_id = $1
  AND status = $2
ORDER BY created_at, public_id`

	var rows []betTableModel
	if err := r.db.SelectContext(ctx, &rows, query, matchID, string(bet.StatusPending)); err != nil {
		return nil, fmt.Errorf("select pending bets by match: %w", err)
	}

	return mapBetRows(rows), nil
}

// UpdateFromPending guards the one-shot transition in SQL; the WHERE
// clause loses cleanly when a concurrent settlement already moved the
// bet out of PENDING.
func (r *BetRepository) UpdateFromPending(ctx context.Context, item bet.Bet) (bool, error) {
	const query = `
UPDATE bets
SET status = :status,
    settled_at = :settled_at,
    updated_at = NOW()
WHERE public_id = :public_id
  AND status = :pending_status`

	args := betToArgs(item)
	args["pending_status"] = string(bet.StatusPending)

	res, err := r.db.NamedExecContext(ctx, query, args)
	if err != nil {
		return false, fmt.Errorf("update bet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update bet rows affected: %w", err)
	}

	return affected > 0, nil
}

func betToArgs(item bet.Bet) map[string]any {
	var settledAt sql.NullTime
	if item.SettledAt != nil {
		settledAt = sql.NullTime{Time: *item.SettledAt, Valid: true}
	}

	return map[string]any{
		"public_id":          item.ID,
		"user_id":            item.UserID,
		"match_public_id":    item.MatchID,
		"amount":             item.Amount,
		"predicted_winner":   nullString(item.PredictedWinner),
		"predicted_score":    nullString(item.PredictedScore),
		"odds":               item.Odds,
		"potential_winnings": item.PotentialWinnings,
		"status":             string(item.Status),
		"created_at":         item.CreatedAt,
		"settled_at":         settledAt,
	}
}

func mapBetRows(rows []betTableModel) []bet.Bet {
	out := make([]bet.Bet, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapBetRow(row))
	}
	return out
}

func mapBetRow(row betTableModel) bet.Bet {
	item := bet.Bet{
		ID:                row.PublicID,
		UserID:            row.UserID,
		MatchID:           row.MatchID,
		Amount:            row.Amount,
		PredictedWinner:   row.PredictedWinner.String,
		PredictedScore:    row.PredictedScore.String,
		Odds:              row.Odds,
		PotentialWinnings: row.PotentialWinnings,
		Status:            bet.Status(row.Status),
		CreatedAt:         row.CreatedAt,
	}
	if row.SettledAt.Valid {
		settledAt := row.SettledAt.Time
		item.SettledAt = &settledAt
	}
	return item
}
