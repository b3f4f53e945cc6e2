package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/clutchpoint/arena/internal/domain/bet"
	"github.com/clutchpoint/arena/internal/usecase"
)

type betDTO struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	MatchID           string     `json:"match_id"`
	Amount            int64      `json:"amount"`
	PredictedWinner   string     `json:"predicted_winner,omitempty"`
	PredictedScore    string     `json:"predicted_score,omitempty"`
	Odds              float64    `json:"odds"`
	PotentialWinnings int64      `json:"potential_winnings"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	SettledAt         *time.Time `json:"settled_at,omitempty"`
}

func betToDTO(item bet.Bet) betDTO {
	return betDTO{
		ID:                item.ID,
		UserID:            item.UserID,
		MatchID:           item.MatchID,
		Amount:            item.Amount,
		PredictedWinner:   item.PredictedWinner,
		PredictedScore:    item.PredictedScore,
		Odds:              item.Odds,
		PotentialWinnings: item.PotentialWinnings,
		Status:            string(item.Status),
		CreatedAt:         item.CreatedAt,
		SettledAt:         item.SettledAt,
	}
}

type placeBetRequest struct {
	MatchID         string `json:"match_id" validate:"required"`
	Amount          int64  `json:"amount" validate:"required,gt=0"`
	PredictedWinner string `json:"predicted_winner" validate:"required_without=PredictedScore"`
	PredictedScore  string `json:"predicted_score" validate:"omitempty,max=7"`
}

func (h *Handler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PlaceBet")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req placeBetRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	placed, err := h.arenaService.PlaceBet(ctx, usecase.PlaceBetRequest{
		UserID:          principal.UserID,
		MatchID:         req.MatchID,
		Amount:          req.Amount,
		PredictedWinner: req.PredictedWinner,
		PredictedScore:  req.PredictedScore,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "place bet failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, betToDTO(placed))
}

func (h *Handler) ListMyBets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyBets")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	items, err := h.arenaService.ListUserBets(ctx, principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	dtos := make([]betDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, betToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, dtos)
}

type settleBetRequest struct {
	ActualWinner string `json:"actual_winner" validate:"required_without=ActualScore"`
	ActualScore  string `json:"actual_score" validate:"omitempty,max=7"`
}

func (h *Handler) SettleBet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SettleBet")
	defer span.End()

	var req settleBetRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	settled, err := h.arenaService.SettleBet(ctx, r.PathValue("betID"), req.ActualWinner, req.ActualScore)
	if err != nil {
		h.logger.WarnContext(ctx, "settle bet failed", "bet_id", r.PathValue("betID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, betToDTO(settled))
}

func (h *Handler) RefundBet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefundBet")
	defer span.End()

	refunded, err := h.arenaService.RefundBet(ctx, r.PathValue("betID"))
	if err != nil {
		h.logger.WarnContext(ctx, "refund bet failed", "bet_id", r.PathValue("betID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, betToDTO(refunded))
}

func (h *Handler) SettleMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SettleMatch")
	defer span.End()

	result, err := h.settlementService.SettleMatch(ctx, r.PathValue("matchID"))
	if err != nil {
		h.logger.WarnContext(ctx, "settle match failed", "match_id", r.PathValue("matchID"), "error", err)
		writeError(ctx, w, err)
		return
	}

	h.leaderboardService.InvalidateCache(ctx)

	writeSuccess(ctx, w, http.StatusOK, result)
}
