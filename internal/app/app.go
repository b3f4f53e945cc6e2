package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/clutchpoint/arena/external/pandascore"
	"github.com/clutchpoint/arena/internal/config"
	"github.com/clutchpoint/arena/internal/domain/arenastats"
	"github.com/clutchpoint/arena/internal/domain/bet"
	"github.com/clutchpoint/arena/internal/domain/match"
	"github.com/clutchpoint/arena/internal/domain/odds"
	"github.com/clutchpoint/arena/internal/domain/user"
	"github.com/clutchpoint/arena/internal/infrastructure/account"
	"github.com/clutchpoint/arena/internal/infrastructure/repository/memory"
	"github.com/clutchpoint/arena/internal/infrastructure/repository/postgres"
	"github.com/clutchpoint/arena/internal/interfaces/httpapi"
	idgen "github.com/clutchpoint/arena/internal/platform/id"
	"github.com/clutchpoint/arena/internal/platform/logging"
	"github.com/clutchpoint/arena/internal/platform/resilience"
	"github.com/clutchpoint/arena/internal/usecase"
)

// NewHTTPServer wires repositories, services and the HTTP router into a
// ready-to-run server. With an empty DB_URL it falls back to seeded
// in-memory repositories, which is the dev and test mode.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		matchRepo match.Repository
		betRepo   bet.Repository
		statsRepo arenastats.Repository
		userRepo  user.Repository
	)

	var onShutdown func()
	if cfg.DBURL == "" {
		logger.Info("database not configured, using in-memory repositories")
		matchRepo = memory.NewMatchRepository(memory.SeedMatches(time.Now().UTC()))
		betRepo = memory.NewBetRepository()
		statsRepo = memory.NewStatsRepository()
		userRepo = memory.NewUserRepository(memory.SeedUsers())
	} else {
		db, err := openDatabase(cfg)
		if err != nil {
			return nil, err
		}
		matchRepo = postgres.NewMatchRepository(db)
		betRepo = postgres.NewBetRepository(db)
		statsRepo = postgres.NewStatsRepository(db)
		userRepo = postgres.NewUserRepository(db)
		onShutdown = func() { _ = db.Close() }
	}

	engine := odds.NewEngine(odds.NewTableResolver())

	arenaSvc := usecase.NewArenaService(
		matchRepo,
		betRepo,
		statsRepo,
		userRepo,
		engine,
		idgen.NewRandomGenerator(),
		logger,
	)

	var feed usecase.MatchFeedProvider
	if cfg.PandaScoreEnabled {
		feed = pandascore.NewClient(pandascore.ClientConfig{
			BaseURL:    cfg.PandaScoreBaseURL,
			Token:      cfg.PandaScoreToken,
			Timeout:    cfg.PandaScoreTimeout,
			MaxRetries: cfg.PandaScoreMaxRetries,
			PageSize:   cfg.PandaScorePageSize,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.PandaScoreCircuitEnabled,
				FailureThreshold: cfg.PandaScoreCircuitFailureCount,
				OpenTimeout:      cfg.PandaScoreCircuitOpenTimeout,
				ProbeLimit:       cfg.PandaScoreCircuitProbeLimit,
			},
		})
	}

	matchSvc := usecase.NewMatchService(matchRepo, feed, logger)
	settlementSvc := usecase.NewSettlementService(arenaSvc, matchRepo, logger).
		WithMaxWorkers(cfg.SettlementWorkers)
	leaderboardSvc := usecase.NewLeaderboardService(statsRepo, userRepo, logger).
		WithCacheTTL(cfg.LeaderboardCacheTTL)

	verifier := account.NewStaticVerifier(userRepo, cfg.AuthStaticTokens, cfg.AuthAllowUserIDTokens)

	handler := httpapi.NewHandler(arenaSvc, matchSvc, settlementSvc, leaderboardSvc, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if onShutdown != nil {
		server.RegisterOnShutdown(onShutdown)
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
