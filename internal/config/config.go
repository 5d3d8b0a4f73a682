package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/puntodeoro/internal/platform/logging"
)

// Config stores runtime configuration for the bot.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	LogLevel       logging.Level

	DBURL                   string
	DBDisablePreparedBinary bool
	DBOpTimeout             time.Duration

	TelegramEnabled     bool
	TelegramToken       string
	TelegramBaseURL     string
	TelegramTimeout     time.Duration
	TelegramPollTimeout time.Duration
	TelegramSendRPS     float64
	TelegramMaxHandlers int

	PadelAPIBaseURL               string
	PadelAPIKey                   string
	PadelAPITimeout               time.Duration
	PadelAPIMaxRetries            int
	PadelAPIRPS                   float64
	PadelAPICircuitEnabled        bool
	PadelAPICircuitFailureCount   int
	PadelAPICircuitOpenTimeout    time.Duration
	PadelAPICircuitHalfOpenMaxReq int

	CacheTournamentsTTL time.Duration
	CacheMatchesTTL     time.Duration
	CacheResultsTTL     time.Duration

	AlertEnabled          bool
	AlertInterval         time.Duration
	AlertStartupDelay     time.Duration
	AlertTickTimeout      time.Duration
	AlertStaleAfter       time.Duration
	AlertWorkers          int
	AlertFetchConcurrency int

	NotificationRetention time.Duration
	PruneInterval         time.Duration
	FreeFavoritesLimit    int
	CalendarLimit         int

	InternalJobToken string
	MetricsEnabled   bool

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled     bool
	UptraceDSN         string
	UptraceLogsEnabled bool

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

// MemoryStore reports whether the ledger and favorites live in process memory.
func (c Config) MemoryStore() bool {
	return strings.TrimSpace(c.DBURL) == ""
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "puntodeoro-bot"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:       resolveHTTPAddr(),
		LogLevel:       parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		DBURL:          strings.TrimSpace(getEnv("DB_URL", "")),
	}

	if cfg.ReadTimeout, err = getEnvAsDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = getEnvAsDuration("APP_WRITE_TIMEOUT", "15s"); err != nil {
		return Config{}, err
	}

	if cfg.DBDisablePreparedBinary, err = getEnvAsBool("DB_DISABLE_PREPARED_BINARY_RESULT", true); err != nil {
		return Config{}, err
	}
	if cfg.DBOpTimeout, err = getEnvAsDuration("DB_OP_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.DBOpTimeout <= 0 {
		return Config{}, fmt.Errorf("DB_OP_TIMEOUT must be > 0")
	}

	if err := loadTelegram(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadPadelAPI(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadCache(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadAlerts(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	cfg.InternalJobToken = strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", ""))
	if appEnv == EnvProd && cfg.InternalJobToken == "" {
		return Config{}, fmt.Errorf("INTERNAL_JOB_TOKEN is required when APP_ENV=prod")
	}
	if cfg.MetricsEnabled, err = getEnvAsBool("METRICS_ENABLED", true); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func resolveHTTPAddr() string {
	if addr := strings.TrimSpace(os.Getenv("APP_HTTP_ADDR")); addr != "" {
		return addr
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		return ":" + port
	}
	return ":8080"
}

func loadTelegram(cfg *Config) error {
	var err error
	if cfg.TelegramEnabled, err = getEnvAsBool("TELEGRAM_ENABLED", true); err != nil {
		return err
	}
	cfg.TelegramToken = strings.TrimSpace(getEnv("TELEGRAM_TOKEN", ""))
	if cfg.TelegramEnabled && cfg.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required when TELEGRAM_ENABLED=true")
	}
	cfg.TelegramBaseURL = strings.TrimSpace(getEnv("TELEGRAM_BASE_URL", "https://api.telegram.org"))

	if cfg.TelegramTimeout, err = getEnvAsDuration("TELEGRAM_TIMEOUT", "10s"); err != nil {
		return err
	}
	if cfg.TelegramTimeout <= 0 {
		return fmt.Errorf("TELEGRAM_TIMEOUT must be > 0")
	}
	if cfg.TelegramPollTimeout, err = getEnvAsDuration("TELEGRAM_POLL_TIMEOUT", "30s"); err != nil {
		return err
	}
	if cfg.TelegramPollTimeout < time.Second {
		return fmt.Errorf("TELEGRAM_POLL_TIMEOUT must be >= 1s")
	}
	if cfg.TelegramSendRPS, err = getEnvAsFloat("TELEGRAM_SEND_RPS", 25); err != nil {
		return err
	}
	if cfg.TelegramSendRPS <= 0 {
		return fmt.Errorf("TELEGRAM_SEND_RPS must be > 0")
	}
	if cfg.TelegramMaxHandlers, err = getEnvAsInt("TELEGRAM_MAX_HANDLERS", 8); err != nil {
		return fmt.Errorf("parse TELEGRAM_MAX_HANDLERS: %w", err)
	}
	if cfg.TelegramMaxHandlers < 1 {
		return fmt.Errorf("TELEGRAM_MAX_HANDLERS must be >= 1")
	}
	return nil
}

func loadPadelAPI(cfg *Config) error {
	var err error
	cfg.PadelAPIBaseURL = strings.TrimSpace(getEnv("PADEL_API_BASE_URL", "https://fantasy-padel-tour-api.onrender.com/api"))
	cfg.PadelAPIKey = strings.TrimSpace(getEnv("PADEL_API_KEY", ""))
	if cfg.PadelAPIKey == "" {
		return fmt.Errorf("PADEL_API_KEY is required")
	}

	if cfg.PadelAPITimeout, err = getEnvAsDuration("PADEL_API_TIMEOUT", "12s"); err != nil {
		return err
	}
	if cfg.PadelAPITimeout <= 0 {
		return fmt.Errorf("PADEL_API_TIMEOUT must be > 0")
	}
	if cfg.PadelAPIMaxRetries, err = getEnvAsInt("PADEL_API_MAX_RETRIES", 1); err != nil {
		return fmt.Errorf("parse PADEL_API_MAX_RETRIES: %w", err)
	}
	if cfg.PadelAPIMaxRetries < 0 {
		return fmt.Errorf("PADEL_API_MAX_RETRIES must be >= 0")
	}
	if cfg.PadelAPIRPS, err = getEnvAsFloat("PADEL_API_RPS", 2); err != nil {
		return err
	}
	if cfg.PadelAPIRPS <= 0 {
		return fmt.Errorf("PADEL_API_RPS must be > 0")
	}

	if cfg.PadelAPICircuitEnabled, err = getEnvAsBool("PADEL_API_CIRCUIT_ENABLED", true); err != nil {
		return err
	}
	if cfg.PadelAPICircuitFailureCount, err = getEnvAsInt("PADEL_API_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return fmt.Errorf("parse PADEL_API_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.PadelAPICircuitFailureCount < 1 {
		return fmt.Errorf("PADEL_API_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.PadelAPICircuitOpenTimeout, err = getEnvAsDuration("PADEL_API_CIRCUIT_OPEN_TIMEOUT", "30s"); err != nil {
		return err
	}
	if cfg.PadelAPICircuitOpenTimeout <= 0 {
		return fmt.Errorf("PADEL_API_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	if cfg.PadelAPICircuitHalfOpenMaxReq, err = getEnvAsInt("PADEL_API_CIRCUIT_HALF_OPEN_MAX_REQ", 2); err != nil {
		return fmt.Errorf("parse PADEL_API_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.PadelAPICircuitHalfOpenMaxReq < 1 {
		return fmt.Errorf("PADEL_API_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	return nil
}

func loadCache(cfg *Config) error {
	var err error
	if cfg.CacheTournamentsTTL, err = getEnvAsDuration("CACHE_TOURNAMENTS_TTL", "60m"); err != nil {
		return err
	}
	if cfg.CacheMatchesTTL, err = getEnvAsDuration("CACHE_MATCHES_TTL", "2m"); err != nil {
		return err
	}
	if cfg.CacheResultsTTL, err = getEnvAsDuration("CACHE_RESULTS_TTL", "10m"); err != nil {
		return err
	}
	if cfg.CacheTournamentsTTL <= 0 || cfg.CacheMatchesTTL <= 0 || cfg.CacheResultsTTL <= 0 {
		return fmt.Errorf("CACHE_*_TTL must be > 0")
	}
	return nil
}

func loadAlerts(cfg *Config) error {
	var err error
	if cfg.AlertEnabled, err = getEnvAsBool("ALERT_ENABLED", true); err != nil {
		return err
	}
	if cfg.AlertInterval, err = getEnvAsDuration("ALERT_INTERVAL", "60s"); err != nil {
		return err
	}
	if cfg.AlertInterval <= 0 {
		return fmt.Errorf("ALERT_INTERVAL must be > 0")
	}
	if cfg.AlertStartupDelay, err = getEnvAsDuration("ALERT_STARTUP_DELAY", "10s"); err != nil {
		return err
	}
	if cfg.AlertStartupDelay < 0 {
		return fmt.Errorf("ALERT_STARTUP_DELAY must be >= 0")
	}
	if cfg.AlertTickTimeout, err = getEnvAsDuration("ALERT_TICK_TIMEOUT", "50s"); err != nil {
		return err
	}
	if cfg.AlertTickTimeout <= 0 {
		return fmt.Errorf("ALERT_TICK_TIMEOUT must be > 0")
	}
	if cfg.AlertStaleAfter, err = getEnvAsDuration("ALERT_STALE_AFTER", "24h"); err != nil {
		return err
	}
	if cfg.AlertStaleAfter <= 0 {
		return fmt.Errorf("ALERT_STALE_AFTER must be > 0")
	}
	if cfg.AlertWorkers, err = getEnvAsInt("ALERT_WORKERS", 8); err != nil {
		return fmt.Errorf("parse ALERT_WORKERS: %w", err)
	}
	if cfg.AlertWorkers < 1 {
		return fmt.Errorf("ALERT_WORKERS must be >= 1")
	}
	if cfg.AlertFetchConcurrency, err = getEnvAsInt("ALERT_FETCH_CONCURRENCY", 4); err != nil {
		return fmt.Errorf("parse ALERT_FETCH_CONCURRENCY: %w", err)
	}
	if cfg.AlertFetchConcurrency < 1 {
		return fmt.Errorf("ALERT_FETCH_CONCURRENCY must be >= 1")
	}

	if cfg.NotificationRetention, err = getEnvAsDuration("NOTIFICATION_RETENTION", "720h"); err != nil {
		return err
	}
	if cfg.NotificationRetention < cfg.AlertStaleAfter {
		return fmt.Errorf("NOTIFICATION_RETENTION must be >= ALERT_STALE_AFTER")
	}
	if cfg.PruneInterval, err = getEnvAsDuration("PRUNE_INTERVAL", "24h"); err != nil {
		return err
	}
	if cfg.PruneInterval <= 0 {
		return fmt.Errorf("PRUNE_INTERVAL must be > 0")
	}
	if cfg.FreeFavoritesLimit, err = getEnvAsInt("FREE_FAVORITES_LIMIT", 3); err != nil {
		return fmt.Errorf("parse FREE_FAVORITES_LIMIT: %w", err)
	}
	if cfg.FreeFavoritesLimit < 1 {
		return fmt.Errorf("FREE_FAVORITES_LIMIT must be >= 1")
	}
	if cfg.CalendarLimit, err = getEnvAsInt("CALENDAR_LIMIT", 10); err != nil {
		return fmt.Errorf("parse CALENDAR_LIMIT: %w", err)
	}
	if cfg.CalendarLimit < 1 {
		return fmt.Errorf("CALENDAR_LIMIT must be >= 1")
	}
	return nil
}

func loadObservability(cfg *Config) error {
	var err error
	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false); err != nil {
		return err
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if cfg.UptraceLogsEnabled, err = getEnvAsBool("UPTRACE_LOGS_ENABLED", true); err != nil {
		return err
	}

	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", false); err != nil {
		return err
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false); err != nil {
		return err
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	if cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return err
	}
	if cfg.PyroscopeUploadRate <= 0 {
		return fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}
	return nil
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

func getEnvAsBool(key string, fallback bool) (bool, error) {
	out, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
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
