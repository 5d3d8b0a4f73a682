package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerWritesKeyValueFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	logger := FromZap(zap.New(core)).Named("alerts").With("tick", 7)

	logger.Warn("send failed", "user_id", int64(42), "error", errors.New("boom"), "dangling")

	entries := logs.All()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "alerts", entry.LoggerName)
	fields := entry.ContextMap()
	assert.EqualValues(t, 7, fields["tick"])
	assert.EqualValues(t, 42, fields["user_id"])
	assert.Equal(t, "boom", fields["error"])
	assert.Contains(t, fields, "dangling")
}

func TestLoggerContextAddsTraceIDs(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	logger := FromZap(zap.New(core))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "tick done")
	logger.DebugContext(ctx, "filtered out by level")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, traceID.String(), fields["trace_id"])
	assert.Equal(t, spanID.String(), fields["span_id"])
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.Info("noop")
		logger.With("k", "v").Error("still noop")
		_ = logger.Sync()
	})
}

func TestLoggerTeeWritesToBothCores(t *testing.T) {
	t.Parallel()

	baseCore, baseLogs := observer.New(zap.InfoLevel)
	extraCore, extraLogs := observer.New(zap.WarnLevel)
	logger := FromZap(zap.New(baseCore)).Tee(extraCore)

	logger.Info("tick done")
	logger.Warn("send failed", "user_id", int64(7))

	assert.Equal(t, 2, baseLogs.Len())
	require.Equal(t, 1, extraLogs.Len())
	assert.Equal(t, "send failed", extraLogs.All()[0].Message)
}
