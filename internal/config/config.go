package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/clutchpoint/arena/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                        string
	ServiceName                   string
	ServiceVersion                string
	HTTPAddr                      string
	DBURL                         string
	DBDisablePreparedBinary       bool
	CORSAllowedOrigins            []string
	ReadTimeout                   time.Duration
	WriteTimeout                  time.Duration
	LeaderboardCacheTTL           time.Duration
	SettlementWorkers             int
	InternalJobToken              string
	AuthStaticTokens              map[string]string
	AuthAllowUserIDTokens         bool
	PprofEnabled                  bool
	PprofAddr                     string
	UptraceEnabled                bool
	UptraceDSN                    string
	PyroscopeEnabled              bool
	PyroscopeServerAddress        string
	PyroscopeAppName              string
	PyroscopeAuthToken            string
	PyroscopeUploadRate           time.Duration
	PandaScoreEnabled             bool
	PandaScoreBaseURL             string
	PandaScoreToken               string
	PandaScoreTimeout             time.Duration
	PandaScoreMaxRetries          int
	PandaScorePageSize            int
	PandaScoreCircuitEnabled      bool
	PandaScoreCircuitFailureCount int
	PandaScoreCircuitOpenTimeout  time.Duration
	PandaScoreCircuitProbeLimit   int
	LogLevel                      logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	pandaScoreEnabled, err := strconv.ParseBool(getEnv("PANDASCORE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PANDASCORE_ENABLED: %w", err)
	}
	pandaScoreTimeout, err := time.ParseDuration(getEnv("PANDASCORE_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PANDASCORE_TIMEOUT: %w", err)
	}
	if pandaScoreTimeout <= 0 {
		return Config{}, fmt.Errorf("PANDASCORE_TIMEOUT must be > 0")
	}
	pandaScoreMaxRetries, err := getEnvAsInt("PANDASCORE_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse PANDASCORE_MAX_RETRIES: %w", err)
	}
	if pandaScoreMaxRetries < 0 {
		return Config{}, fmt.Errorf("PANDASCORE_MAX_RETRIES must be >= 0")
	}
	pandaScorePageSize, err := getEnvAsInt("PANDASCORE_PAGE_SIZE", 50)
	if err != nil {
		return Config{}, fmt.Errorf("parse PANDASCORE_PAGE_SIZE: %w", err)
	}
	if pandaScorePageSize < 1 || pandaScorePageSize > 100 {
		return Config{}, fmt.Errorf("PANDASCORE_PAGE_SIZE must be between 1 and 100")
	}
	pandaScoreCircuitEnabled, err := strconv.ParseBool(getEnv("PANDASCORE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PANDASCORE_CIRCUIT_ENABLED: %w", err)
	}
	pandaScoreCircuitFailureCount, err := getEnvAsInt("PANDASCORE_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse PANDASCORE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if pandaScoreCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("PANDASCORE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	pandaScoreCircuitOpenTimeout, err := time.ParseDuration(getEnv("PANDASCORE_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PANDASCORE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if pandaScoreCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("PANDASCORE_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	pandaScoreCircuitProbeLimit, err := getEnvAsInt("PANDASCORE_CIRCUIT_PROBE_LIMIT", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse PANDASCORE_CIRCUIT_PROBE_LIMIT: %w", err)
	}
	if pandaScoreCircuitProbeLimit < 1 {
		return Config{}, fmt.Errorf("PANDASCORE_CIRCUIT_PROBE_LIMIT must be >= 1")
	}
	pandaScoreBaseURL := strings.TrimSpace(getEnv("PANDASCORE_BASE_URL", "https://api.pandascore.co"))
	pandaScoreToken := strings.TrimSpace(getEnv("PANDASCORE_TOKEN", ""))
	if pandaScoreEnabled && pandaScoreToken == "" {
		return Config{}, fmt.Errorf("PANDASCORE_TOKEN is required when PANDASCORE_ENABLED=true")
	}

	leaderboardCacheTTL, err := time.ParseDuration(getEnv("LEADERBOARD_CACHE_TTL", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LEADERBOARD_CACHE_TTL: %w", err)
	}
	if leaderboardCacheTTL <= 0 {
		return Config{}, fmt.Errorf("LEADERBOARD_CACHE_TTL must be > 0")
	}

	settlementWorkers, err := getEnvAsInt("SETTLEMENT_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse SETTLEMENT_WORKERS: %w", err)
	}
	if settlementWorkers < 1 {
		return Config{}, fmt.Errorf("SETTLEMENT_WORKERS must be >= 1")
	}

	authStaticTokens, err := parseTokenMap(getEnv("AUTH_STATIC_TOKENS", ""))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUTH_STATIC_TOKENS: %w", err)
	}
	authAllowUserIDTokens, err := strconv.ParseBool(getEnv("AUTH_ALLOW_USER_ID_TOKENS", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUTH_ALLOW_USER_ID_TOKENS: %w", err)
	}
	if appEnv == EnvProd && authAllowUserIDTokens {
		return Config{}, fmt.Errorf("AUTH_ALLOW_USER_ID_TOKENS is not allowed when APP_ENV=prod")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cfg := Config{
		AppEnv:                        appEnv,
		ServiceName:                   getEnv("APP_SERVICE_NAME", "arena-api"),
		ServiceVersion:                getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                      getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:                         getEnv("DB_URL", ""),
		DBDisablePreparedBinary:       dbDisablePreparedBinary,
		CORSAllowedOrigins:            splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:                   readTimeout,
		WriteTimeout:                  writeTimeout,
		LeaderboardCacheTTL:           leaderboardCacheTTL,
		SettlementWorkers:             settlementWorkers,
		InternalJobToken:              strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		AuthStaticTokens:              authStaticTokens,
		AuthAllowUserIDTokens:         authAllowUserIDTokens,
		PprofEnabled:                  pprofEnabled,
		PprofAddr:                     pprofAddr,
		UptraceEnabled:                uptraceEnabled,
		UptraceDSN:                    uptraceDSN,
		PyroscopeEnabled:              pyroscopeEnabled,
		PyroscopeServerAddress:        pyroscopeServerAddress,
		PyroscopeAuthToken:            strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:           pyroscopeUploadRate,
		PandaScoreEnabled:             pandaScoreEnabled,
		PandaScoreBaseURL:             pandaScoreBaseURL,
		PandaScoreToken:               pandaScoreToken,
		PandaScoreTimeout:             pandaScoreTimeout,
		PandaScoreMaxRetries:          pandaScoreMaxRetries,
		PandaScorePageSize:            pandaScorePageSize,
		PandaScoreCircuitEnabled:      pandaScoreCircuitEnabled,
		PandaScoreCircuitFailureCount: pandaScoreCircuitFailureCount,
		PandaScoreCircuitOpenTimeout:  pandaScoreCircuitOpenTimeout,
		PandaScoreCircuitProbeLimit:   pandaScoreCircuitProbeLimit,
		LogLevel:                      parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if appEnv == EnvProd && cfg.InternalJobToken == "" {
		return Config{}, fmt.Errorf("INTERNAL_JOB_TOKEN is required when APP_ENV=prod")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

// parseTokenMap parses "token:user_id" pairs separated by commas.
func parseTokenMap(raw string) (map[string]string, error) {
	out := make(map[string]string)
	parts := strings.Split(raw, ",")
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}

		token, userID, found := strings.Cut(item, ":")
		if !found {
			return nil, fmt.Errorf("invalid map item %q, expected token:user_id", item)
		}

		token = strings.TrimSpace(token)
		userID = strings.TrimSpace(userID)
		if token == "" || userID == "" {
			return nil, fmt.Errorf("empty token or user id in item %q", item)
		}

		out[token] = userID
	}
	return out, nil
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
