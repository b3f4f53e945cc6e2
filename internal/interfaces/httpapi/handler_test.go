package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/clutchpoint/arena/internal/domain/match"
	"github.com/clutchpoint/arena/internal/domain/odds"
	"github.com/clutchpoint/arena/internal/domain/user"
	"github.com/clutchpoint/arena/internal/infrastructure/account"
	"github.com/clutchpoint/arena/internal/infrastructure/repository/memory"
	"github.com/clutchpoint/arena/internal/platform/id"
	"github.com/clutchpoint/arena/internal/platform/logging"
	"github.com/clutchpoint/arena/internal/usecase"
)

const testJobToken = "job-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	now := time.Now().UTC()
	matchRepo := memory.NewMatchRepository([]match.Match{
		{
			ID:         "m-1",
			HomeTeam:   match.Team{ID: "t-1", Name: "FURIA"},
			AwayTeam:   match.Team{ID: "t-2", Name: "MIBR"},
			Tournament: match.Tournament{ID: "tour-1", Name: "IEM Katowice", Game: "CS2"},
			StartTime:  now.Add(2 * time.Hour),
			Status:     match.StatusScheduled,
		},
	})
	betRepo := memory.NewBetRepository()
	statsRepo := memory.NewStatsRepository()
	userRepo := memory.NewUserRepository([]user.User{
		{ID: "user-ana", Username: "ana", Points: 100},
	})

	engine := odds.NewEngine(odds.NewTableResolver())
	arenaService := usecase.NewArenaService(matchRepo, betRepo, statsRepo, userRepo, engine, id.NewRandomGenerator(), logging.NewNop())
	matchService := usecase.NewMatchService(matchRepo, nil, logging.NewNop())
	settlementService := usecase.NewSettlementService(arenaService, matchRepo, logging.NewNop())
	leaderboardService := usecase.NewLeaderboardService(statsRepo, userRepo, logging.NewNop())

	handler := NewHandler(arenaService, matchService, settlementService, leaderboardService, logging.NewNop())
	verifier := account.NewStaticVerifier(userRepo, map[string]string{"ana-token": "user-ana"}, false)

	return NewRouter(handler, verifier, logging.NewNop(), nil, testJobToken)
}

func doRequest(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) googleResponseEnvelope {
	t.Helper()
	var envelope googleResponseEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return envelope
}

func TestRouter_Healthz(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestRouter(t), http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_GetMatchOdds(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/matches/m-1/odds", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/matches/nope/odds", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown match, got %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Status != "NOT_FOUND" {
		t.Fatalf("unexpected error body: %+v", envelope.Error)
	}
}

func TestRouter_PlaceBetRequiresAuth(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	body := `{"match_id":"m-1","amount":10,"predicted_winner":"FURIA"}`

	rec := doRequest(t, router, http.MethodPost, "/v1/bets", "", body)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/bets", "wrong-token", body)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/bets", "ana-token", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_PlaceBetInsufficientPoints(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	body := `{"match_id":"m-1","amount":500,"predicted_winner":"FURIA"}`

	rec := doRequest(t, router, http.MethodPost, "/v1/bets", "ana-token", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Errors[0].Reason != "insufficientPoints" {
		t.Fatalf("unexpected error body: %+v", envelope.Error)
	}
}

func TestRouter_PlaceBetRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	body := `{"match_id":"m-1","amount":10,"predicted_winner":"FURIA","bogus":true}`

	rec := doRequest(t, router, http.MethodPost, "/v1/bets", "ana-token", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestRouter_InternalRoutesRequireJobToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/internal/jobs/sync-matches", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without job token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/bets/nope/settle", strings.NewReader(`{"actual_winner":"FURIA"}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown bet, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_SettleTwiceConflicts(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/bets", "ana-token", `{"match_id":"m-1","amount":10,"predicted_winner":"FURIA"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("place bet failed: %d %s", rec.Code, rec.Body.String())
	}
	var placed struct {
		Data betDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &placed); err != nil {
		t.Fatalf("decode placed bet: %v", err)
	}

	settlePath := "/v1/internal/bets/" + placed.Data.ID + "/settle"
	settleBody := `{"actual_winner":"FURIA"}`

	for i, wantStatus := range []int{http.StatusOK, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, settlePath, strings.NewReader(settleBody))
		req.Header.Set("X-Internal-Job-Token", testJobToken)
		res := httptest.NewRecorder()
		router.ServeHTTP(res, req)
		if res.Code != wantStatus {
			t.Fatalf("settle call %d: expected %d, got %d: %s", i+1, wantStatus, res.Code, res.Body.String())
		}
	}
}
