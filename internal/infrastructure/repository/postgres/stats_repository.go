package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/clutchpoint/arena/internal/domain/arenastats"
)

type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

type statsTableModel struct {
	UserID         string         `db:"user_id"`
	Username       string         `db:"username"`
	TotalBets      int            `db:"total_bets"`
	WonBets        int            `db:"won_bets"`
	Accuracy       float64        `db:"accuracy"`
	TotalPointsWon int64          `db:"total_points_won"`
	Badges         pq.StringArray `db:"badges"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

const statsColumns = `
user_id, username, total_bets, won_bets, accuracy, total_points_won, badges, updated_at`

func (r *StatsRepository) GetByUser(ctx context.Context, userID string) (arenastats.Stats, bool, error) {
	query := `
SELECT ` + statsColumns + `
FROM arena_stats
WHERE user_id = $1`

	var row statsTableModel
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if isNotFound(err) {
			return arenastats.Stats{}, false, nil
		}
		return arenastats.Stats{}, false, fmt.Errorf("get arena stats: %w", err)
	}

	return mapStatsRow(row), true, nil
}

func (r *StatsRepository) Upsert(ctx context.Context, item arenastats.Stats) error {
	const query = `
INSERT INTO arena_stats (
    user_id, username, total_bets, won_bets, accuracy, total_points_won, badges, updated_at
) VALUES (
    :user_id, :username, :total_bets, :won_bets, :accuracy, :total_points_won, :badges, :updated_at
)
ON CONFLICT (user_id)
DO UPDATE SET
    username = EXCLUDED.username,
    total_bets = EXCLUDED.total_bets,
    won_bets = EXCLUDED.won_bets,
    accuracy = EXCLUDED.accuracy,
    total_points_won = EXCLUDED.total_points_won,
    badges = EXCLUDED.badges,
    updated_at = EXCLUDED.updated_at`

	args := map[string]any{
		"user_id":          item.UserID,
		"username":         item.Username,
		"total_bets":       item.TotalBets,
		"won_bets":         item.WonBets,
		"accuracy":         item.Accuracy,
		"total_points_won": item.TotalPointsWon,
		"badges":           pq.StringArray(item.Badges),
		"updated_at":       item.UpdatedAt,
	}
	if _, err := r.db.NamedExecContext(ctx, query, args); err != nil {
		return fmt.Errorf("upsert arena stats: %w", err)
	}

	return nil
}

func (r *StatsRepository) List(ctx context.Context) ([]arenastats.Stats, error) {
	query := `
SELECT ` + statsColumns + `
FROM arena_stats
ORDER BY user_id`

	var rows []statsTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("select arena stats: %w", err)
	}

	out := make([]arenastats.Stats, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapStatsRow(row))
	}
	return out, nil
}

func (r *StatsRepository) Delete(ctx context.Context, userID string) error {
	const query = `DELETE FROM arena_stats WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("delete arena stats: %w", err)
	}
	return nil
}

func mapStatsRow(row statsTableModel) arenastats.Stats {
	return arenastats.Stats{
		UserID:         row.UserID,
		Username:       row.Username,
		TotalBets:      row.TotalBets,
		WonBets:        row.WonBets,
		Accuracy:       row.Accuracy,
		TotalPointsWon: row.TotalPointsWon,
		Badges:         []string(row.Badges),
		UpdatedAt:      row.UpdatedAt,
	}
}
