package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/clutchpoint/arena/internal/domain/match"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

type matchTableModel struct {
	PublicID       string         `db:"public_id"`
	HomeTeamID     string         `db:"home_team_id"`
	HomeTeamName   string         `db:"home_team_name"`
	HomeTeamLogo   sql.NullString `db:"home_team_logo_url"`
	AwayTeamID     string         `db:"away_team_id"`
	AwayTeamName   string         `db:"away_team_name"`
	AwayTeamLogo   sql.NullString `db:"away_team_logo_url"`
	TournamentID   string         `db:"tournament_id"`
	TournamentName string         `db:"tournament_name"`
	Game           string         `db:"game"`
	StartTime      time.Time      `db:"start_time"`
	Status         string         `db:"status"`
	HomeScore      sql.NullInt64  `db:"home_score"`
	AwayScore      sql.NullInt64  `db:"away_score"`
	Streams        []byte         `db:"streams"`
}

const matchColumns = `
public_id, home_team_id, home_team_name, home_team_logo_url,
away_team_id, away_team_name, away_team_logo_url,
tournament_id, tournament_name, game, start_time, status,
home_score, away_score, streams`

func (r *MatchRepository) List(ctx context.Context) ([]match.Match, error) {
	query := `
SELECT ` + matchColumns + `
FROM matches
WHERE deleted_at IS NULL
ORDER BY start_time, public_id`

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}

	return mapMatchRows(rows)
}

func (r *MatchRepository) ListByStatus(ctx context.Context, status match.Status) ([]match.Match, error) {
	query := `
SELECT ` + matchColumns + `
FROM matches
WHERE status = $1
  AND deleted_at IS NULL
ORDER BY start_time, public_id`

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, string(status)); err != nil {
		return nil, fmt.Errorf("select matches by status: %w", err)
	}

	return mapMatchRows(rows)
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query := `
SELECT ` + matchColumns + `
FROM matches
WHERE public_id = $1
  AND deleted_at IS NULL`

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, matchID); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}

	item, err := mapMatchRow(row)
	if err != nil {
		return match.Match{}, false, err
	}
	return item, true, nil
}

func (r *MatchRepository) Upsert(ctx context.Context, item match.Match) error {
	streams, err := sonic.Marshal(item.Streams)
	if err != nil {
		return fmt.Errorf("encode match streams: %w", err)
	}

	const query = `
INSERT INTO matches (
    public_id, home_team_id, home_team_name, home_team_logo_url,
    away_team_id, away_team_name, away_team_logo_url,
    tournament_id, tournament_name, game, start_time, status,
    home_score, away_score, streams
) VALUES (
    :public_id, :home_team_id, :home_team_name, :home_team_logo_url,
    :away_team_id, :away_team_name, :away_team_logo_url,
    :tournament_id, :tournament_name, :game, :start_time, :status,
    :home_score, :away_score, :streams
)
ON CONFLICT (public_id)
DO UPDATE SET
    home_team_id = EXCLUDED.home_team_id,
    home_team_name = EXCLUDED.home_team_name,
    home_team_logo_url = EXCLUDED.home_team_logo_url,
    away_team_id = EXCLUDED.away_team_id,
    away_team_name = EXCLUDED.away_team_name,
    away_team_logo_url = EXCLUDED.away_team_logo_url,
    tournament_id = EXCLUDED.tournament_id,
    tournament_name = EXCLUDED.tournament_name,
    game = EXCLUDED.game,
    start_time = EXCLUDED.start_time,
    status = EXCLUDED.status,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    streams = EXCLUDED.streams,
    updated_at = NOW(),
    deleted_at = NULL`

	args := map[string]any{
		"public_id":          item.ID,
		"home_team_id":       item.HomeTeam.ID,
		"home_team_name":     item.HomeTeam.Name,
		"home_team_logo_url": nullString(item.HomeTeam.LogoURL),
		"away_team_id":       item.AwayTeam.ID,
		"away_team_name":     item.AwayTeam.Name,
		"away_team_logo_url": nullString(item.AwayTeam.LogoURL),
		"tournament_id":      item.Tournament.ID,
		"tournament_name":    item.Tournament.Name,
		"game":               item.Tournament.Game,
		"start_time":         item.StartTime,
		"status":             string(item.Status),
		"home_score":         nullScoreHome(item.Score),
		"away_score":         nullScoreAway(item.Score),
		"streams":            streams,
	}
	if _, err := r.db.NamedExecContext(ctx, query, args); err != nil {
		return fmt.Errorf("upsert match: %w", err)
	}

	return nil
}

func mapMatchRows(rows []matchTableModel) ([]match.Match, error) {
	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		item, err := mapMatchRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func mapMatchRow(row matchTableModel) (match.Match, error) {
	item := match.Match{
		ID: row.PublicID,
		HomeTeam: match.Team{
			ID:      row.HomeTeamID,
			Name:    row.HomeTeamName,
			LogoURL: row.HomeTeamLogo.String,
		},
		AwayTeam: match.Team{
			ID:      row.AwayTeamID,
			Name:    row.AwayTeamName,
			LogoURL: row.AwayTeamLogo.String,
		},
		Tournament: match.Tournament{
			ID:   row.TournamentID,
			Name: row.TournamentName,
			Game: row.Game,
		},
		StartTime: row.StartTime,
		Status:    match.Status(row.Status),
	}

	if row.HomeScore.Valid && row.AwayScore.Valid {
		item.Score = &match.Score{
			Home: int(row.HomeScore.Int64),
			Away: int(row.AwayScore.Int64),
		}
	}

	if len(row.Streams) > 0 {
		if err := sonic.Unmarshal(row.Streams, &item.Streams); err != nil {
			return match.Match{}, fmt.Errorf("decode match streams for %s: %w", row.PublicID, err)
		}
	}

	return item, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullScoreHome(score *match.Score) sql.NullInt64 {
	if score == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(score.Home), Valid: true}
}

func nullScoreAway(score *match.Score) sql.NullInt64 {
	if score == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(score.Away), Valid: true}
}
