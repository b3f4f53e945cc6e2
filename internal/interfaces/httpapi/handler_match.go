package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/clutchpoint/arena/internal/domain/match"
	"github.com/clutchpoint/arena/internal/domain/odds"
)

type teamDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
}

type scoreDTO struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type streamDTO struct {
	Platform string `json:"platform,omitempty"`
	URL      string `json:"url"`
}

type matchDTO struct {
	ID             string      `json:"id"`
	HomeTeam       teamDTO     `json:"home_team"`
	AwayTeam       teamDTO     `json:"away_team"`
	TournamentID   string      `json:"tournament_id"`
	TournamentName string      `json:"tournament_name"`
	Game           string      `json:"game"`
	StartTime      time.Time   `json:"start_time"`
	Status         string      `json:"status"`
	Score          *scoreDTO   `json:"score,omitempty"`
	Streams        []streamDTO `json:"streams,omitempty"`
}

type oddsDTO struct {
	HomeWin     float64            `json:"home_win"`
	AwayWin     float64            `json:"away_win"`
	Draw        float64            `json:"draw"`
	ExactScores map[string]float64 `json:"exact_scores"`
}

func matchToDTO(item match.Match) matchDTO {
	dto := matchDTO{
		ID:             item.ID,
		HomeTeam:       teamDTO{ID: item.HomeTeam.ID, Name: item.HomeTeam.Name, LogoURL: item.HomeTeam.LogoURL},
		AwayTeam:       teamDTO{ID: item.AwayTeam.ID, Name: item.AwayTeam.Name, LogoURL: item.AwayTeam.LogoURL},
		TournamentID:   item.Tournament.ID,
		TournamentName: item.Tournament.Name,
		Game:           item.Tournament.Game,
		StartTime:      item.StartTime,
		Status:         string(item.Status),
	}
	if item.Score != nil {
		dto.Score = &scoreDTO{Home: item.Score.Home, Away: item.Score.Away}
	}
	for _, stream := range item.Streams {
		dto.Streams = append(dto.Streams, streamDTO{Platform: stream.Platform, URL: stream.URL})
	}
	return dto
}

func oddsToDTO(quoted odds.BetOdds) oddsDTO {
	return oddsDTO{
		HomeWin:     quoted.HomeWin,
		AwayWin:     quoted.AwayWin,
		Draw:        quoted.Draw,
		ExactScores: quoted.ExactScores,
	}
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	status := match.Status(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))

	items, err := h.matchService.ListMatches(ctx, status)
	if err != nil {
		h.logger.ErrorContext(ctx, "list matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	dtos := make([]matchDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, matchToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, dtos)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	item, err := h.matchService.GetMatch(ctx, r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) GetMatchOdds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchOdds")
	defer span.End()

	quoted, err := h.arenaService.QuoteOdds(ctx, r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, oddsToDTO(quoted))
}

func (h *Handler) RunMatchSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunMatchSyncJob")
	defer span.End()

	synced, err := h.matchService.SyncFromFeed(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "match sync job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"synced": synced})
}
