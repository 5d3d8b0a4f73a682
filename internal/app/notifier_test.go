package app

import (
	"context"
	"testing"

	"github.com/riskibarqy/puntodeoro/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogNotifierSend(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := newLogNotifier(logging.FromZap(zap.New(core)))

	require.NoError(t, n.Send(context.Background(), 42, "🔴 *EN VIVO*"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "notifier", entries[0].LoggerName)
	assert.EqualValues(t, 42, entries[0].ContextMap()["recipient_id"])
}
