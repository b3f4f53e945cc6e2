package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("GET /v1/matches/{matchID}/odds", handler.GetMatchOdds)
	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/bets", RequireAuth(verifier, http.HandlerFunc(handler.PlaceBet)))
	mux.Handle("GET /v1/bets/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyBets)))
	mux.Handle("GET /v1/leaderboard/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyRank)))
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/bets/{betID}/settle", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.SettleBet)))
	mux.Handle("POST /v1/internal/bets/{betID}/refund", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RefundBet)))
	mux.Handle("POST /v1/internal/matches/{matchID}/settle", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.SettleMatch)))
	mux.Handle("POST /v1/internal/jobs/sync-matches", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunMatchSyncJob)))
}
