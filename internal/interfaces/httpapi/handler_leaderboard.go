package httpapi

import (
	"fmt"
	"net/http"

	"github.com/clutchpoint/arena/internal/domain/arenastats"
	"github.com/clutchpoint/arena/internal/usecase"
)

type leaderboardEntryDTO struct {
	Rank           int      `json:"rank"`
	UserID         string   `json:"user_id"`
	Username       string   `json:"username"`
	TotalBets      int      `json:"total_bets"`
	WonBets        int      `json:"won_bets"`
	Accuracy       float64  `json:"accuracy"`
	TotalPointsWon int64    `json:"total_points_won"`
	Badges         []string `json:"badges,omitempty"`
}

func leaderboardToDTO(entries []arenastats.Stats) []leaderboardEntryDTO {
	dtos := make([]leaderboardEntryDTO, 0, len(entries))
	for i, entry := range entries {
		dtos = append(dtos, leaderboardEntryDTO{
			Rank:           i + 1,
			UserID:         entry.UserID,
			Username:       entry.Username,
			TotalBets:      entry.TotalBets,
			WonBets:        entry.WonBets,
			Accuracy:       entry.Accuracy,
			TotalPointsWon: entry.TotalPointsWon,
			Badges:         entry.Badges,
		})
	}
	return dtos
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	entries, err := h.leaderboardService.GetLeaderboard(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(entries))
}

func (h *Handler) GetMyRank(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyRank")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	rank, ranked, err := h.leaderboardService.GetUserRank(ctx, principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if !ranked {
		writeError(ctx, w, fmt.Errorf("%w: no settled bets for user=%s", usecase.ErrNotFound, principal.UserID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"user_id": principal.UserID,
		"rank":    rank,
	})
}
