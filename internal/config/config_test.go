package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/puntodeoro/internal/platform/logging"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("TELEGRAM_ENABLED", "true")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("PADEL_API_KEY", "padel-key")
	t.Setenv("APP_HTTP_ADDR", "")
	t.Setenv("PORT", "")
	t.Setenv("DB_URL", "")
}

func TestLoad_AppEnvValidation(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceName != "puntodeoro-bot" {
		t.Fatalf("unexpected service name: %q", cfg.ServiceName)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected http addr: %q", cfg.HTTPAddr)
	}
	if !cfg.MemoryStore() {
		t.Fatalf("expected memory store when DB_URL is empty")
	}
	if cfg.CacheTournamentsTTL != 60*time.Minute || cfg.CacheMatchesTTL != 2*time.Minute || cfg.CacheResultsTTL != 10*time.Minute {
		t.Fatalf("unexpected cache ttls: %s %s %s", cfg.CacheTournamentsTTL, cfg.CacheMatchesTTL, cfg.CacheResultsTTL)
	}
	if cfg.AlertInterval != time.Minute || cfg.AlertStartupDelay != 10*time.Second || cfg.AlertTickTimeout != 50*time.Second {
		t.Fatalf("unexpected alert schedule: %s %s %s", cfg.AlertInterval, cfg.AlertStartupDelay, cfg.AlertTickTimeout)
	}
	if cfg.AlertStaleAfter != 24*time.Hour {
		t.Fatalf("unexpected stale window: %s", cfg.AlertStaleAfter)
	}
	if cfg.PadelAPITimeout != 12*time.Second || cfg.PadelAPIMaxRetries != 1 {
		t.Fatalf("unexpected padel api defaults: %s retries=%d", cfg.PadelAPITimeout, cfg.PadelAPIMaxRetries)
	}
	if cfg.FreeFavoritesLimit != 3 {
		t.Fatalf("unexpected free favorites limit: %d", cfg.FreeFavoritesLimit)
	}
	if cfg.NotificationRetention != 720*time.Hour {
		t.Fatalf("unexpected retention: %s", cfg.NotificationRetention)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
}

func TestLoad_HTTPAddrFallsBackToPort(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected :9090, got %q", cfg.HTTPAddr)
	}

	t.Setenv("APP_HTTP_ADDR", "127.0.0.1:7000")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:7000" {
		t.Fatalf("expected APP_HTTP_ADDR to win, got %q", cfg.HTTPAddr)
	}
}

func TestLoad_TelegramTokenRequiredWhenEnabled(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when TELEGRAM_ENABLED=true without TELEGRAM_TOKEN")
	}

	t.Setenv("TELEGRAM_ENABLED", "false")
	if _, err := Load(); err != nil {
		t.Fatalf("load config with telegram disabled: %v", err)
	}
}

func TestLoad_PadelAPIKeyRequired(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PADEL_API_KEY", " ")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error without PADEL_API_KEY")
	}
}

func TestLoad_DurationValidation(t *testing.T) {
	cases := map[string]string{
		"ALERT_INTERVAL":                 "0s",
		"ALERT_TICK_TIMEOUT":             "-1s",
		"CACHE_MATCHES_TTL":              "0",
		"DB_OP_TIMEOUT":                  "nope",
		"PADEL_API_CIRCUIT_OPEN_TIMEOUT": "0s",
		"TELEGRAM_POLL_TIMEOUT":          "500ms",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestLoad_RetentionMustCoverStaleWindow(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ALERT_STALE_AFTER", "48h")
	t.Setenv("NOTIFICATION_RETENTION", "24h")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when retention is shorter than the stale window")
	}
}

func TestLoad_InternalJobTokenRequiredInProd(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("INTERNAL_JOB_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error without INTERNAL_JOB_TOKEN in prod")
	}

	t.Setenv("INTERNAL_JOB_TOKEN", "secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.InternalJobToken != "secret" {
		t.Fatalf("unexpected job token: %q", cfg.InternalJobToken)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `foo=bar, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected uptrace dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_SERVICE_NAME", "puntodeoro-bot-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "puntodeoro-bot-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Run("default true", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

func TestParseLogLevel(t *testing.T) {
	if parseLogLevel("WARNING") != logging.LevelWarn {
		t.Fatalf("expected warn level")
	}
	if parseLogLevel("bogus") != logging.LevelInfo {
		t.Fatalf("expected info level for unknown input")
	}
}
