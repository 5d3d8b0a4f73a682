package app

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/puntodeoro/internal/config"
	"github.com/riskibarqy/puntodeoro/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:                config.EnvDev,
		ServiceName:           "puntodeoro-bot",
		HTTPAddr:              "127.0.0.1:0",
		ReadTimeout:           time.Second,
		WriteTimeout:          time.Second,
		DBOpTimeout:           time.Second,
		TelegramEnabled:       false,
		PadelAPIBaseURL:       "http://127.0.0.1:1/api",
		PadelAPIKey:           "key",
		PadelAPITimeout:       time.Second,
		PadelAPIRPS:           1,
		CacheTournamentsTTL:   time.Hour,
		CacheMatchesTTL:       time.Minute,
		CacheResultsTTL:       time.Minute,
		AlertEnabled:          true,
		AlertInterval:         time.Minute,
		AlertStartupDelay:     time.Hour,
		AlertTickTimeout:      time.Second,
		AlertStaleAfter:       24 * time.Hour,
		AlertWorkers:          2,
		AlertFetchConcurrency: 2,
		NotificationRetention: 720 * time.Hour,
		PruneInterval:         time.Hour,
		FreeFavoritesLimit:    3,
		CalendarLimit:         10,
		MetricsEnabled:        true,
	}
}

func TestNew_MemoryStoreWithoutTelegram(t *testing.T) {
	a, err := New(memoryConfig(), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Nil(t, a.db)
	assert.Nil(t, a.poller)
	assert.Nil(t, a.bot)
	assert.NotNil(t, a.server)
}

func TestNew_RejectsEmptyAddr(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPAddr = ""

	_, err := New(cfg, logging.NewNop())
	require.Error(t, err)
}

func TestJobs_AlertToggle(t *testing.T) {
	cfg := memoryConfig()
	a, err := New(cfg, logging.NewNop())
	require.NoError(t, err)

	jobs := a.jobs(nil, nil)
	require.Len(t, jobs, 2)
	assert.Equal(t, "prune_notifications", jobs[0].Name)
	assert.Equal(t, "alerts", jobs[1].Name)
	assert.Equal(t, cfg.AlertTickTimeout, jobs[1].Timeout)
	assert.Equal(t, cfg.AlertStartupDelay, jobs[1].StartupDelay)

	a.cfg.AlertEnabled = false
	jobs = a.jobs(nil, nil)
	require.Len(t, jobs, 1)
	assert.Equal(t, "prune_notifications", jobs[0].Name)
}

func TestRun_StopsOnCancel(t *testing.T) {
	a, err := New(memoryConfig(), logging.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
