package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/puntodeoro/internal/config"
	"github.com/riskibarqy/puntodeoro/internal/platform/logging"
	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitUptrace_Disabled(t *testing.T) {
	cfg := config.Config{
		UptraceEnabled: false,
		ServiceName:    "puntodeoro-bot",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}
	base := logging.NewNop()

	logger, shutdown, err := InitUptrace(cfg, base)
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if logger != base {
		t.Fatalf("expected the base logger when uptrace is disabled")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown uptrace: %v", err)
	}
}

func TestInitPyroscope_Disabled(t *testing.T) {
	stop, err := InitPyroscope(config.Config{PyroscopeEnabled: false}, logging.NewNop())
	if err != nil {
		t.Fatalf("init pyroscope: %v", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("stop pyroscope: %v", err)
	}
}

func TestPyroscopeConfigTags(t *testing.T) {
	cfg := pyroscopeConfig(config.Config{
		AppEnv:           config.EnvStage,
		ServiceName:      "puntodeoro-bot",
		ServiceVersion:   "1.4.0",
		PyroscopeAppName: "puntodeoro",
	})
	if cfg.ApplicationName != "puntodeoro" {
		t.Fatalf("unexpected application name: %q", cfg.ApplicationName)
	}
	if cfg.Tags["env"] != config.EnvStage || cfg.Tags["version"] != "1.4.0" {
		t.Fatalf("unexpected tags: %+v", cfg.Tags)
	}
}

func TestPprofServer_DisabledIsNil(t *testing.T) {
	srv := StartPprofServer(config.Config{PprofEnabled: false}, logging.NewNop())
	if srv != nil {
		t.Fatalf("expected nil server when pprof is disabled")
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown nil server: %v", err)
	}
}

func TestPprofMuxServesIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	newPprofMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestShouldSkipMirroredLog(t *testing.T) {
	if !shouldSkipMirroredLog("http request", map[string]any{"path": "/healthz"}) {
		t.Fatalf("expected health check log to be skipped")
	}
	if shouldSkipMirroredLog("http request", map[string]any{"path": "/v1/internal/jobs/alerts"}) {
		t.Fatalf("did not expect job log to be skipped")
	}
	if shouldSkipMirroredLog("alert tick finished", map[string]any{"path": "/healthz"}) {
		t.Fatalf("did not expect non-request event to be skipped")
	}
}

func TestBuildOTelLogAttributes_SortedKeys(t *testing.T) {
	attrs := buildOTelLogAttributes(map[string]any{
		"user_id":  int64(42),
		"match_id": "m-1",
		"elapsed":  1500 * time.Millisecond,
	})
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "elapsed" || attrs[0].Value.AsString() != "1.5s" {
		t.Fatalf("unexpected first attribute: %s", attrs[0].Key)
	}
	if attrs[1].Key != "match_id" || attrs[1].Value.AsString() != "m-1" {
		t.Fatalf("unexpected match_id attribute")
	}
	if attrs[2].Key != "user_id" || attrs[2].Value.AsInt64() != 42 {
		t.Fatalf("unexpected user_id attribute")
	}
}

func TestToOTelLogValue_Map(t *testing.T) {
	v := toOTelLogValue(map[string]any{
		"sent":   2,
		"failed": false,
	}, 0)
	if v.Kind() != otellog.KindMap {
		t.Fatalf("expected map value, got %s", v.Kind())
	}
	if len(v.AsMap()) != 2 {
		t.Fatalf("expected 2 map items, got %d", len(v.AsMap()))
	}
}

func TestOTelLogCore_TeeKeepsBaseOutput(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := logging.FromZap(zap.New(core)).Tee(newOTelLogCore("test", zapcore.WarnLevel))

	logger.With("tick", 3).Warn("send failed", "user_id", int64(42))
	logger.Info("below mirror level")

	if logs.Len() != 2 {
		t.Fatalf("expected base core to keep both entries, got %d", logs.Len())
	}
}
