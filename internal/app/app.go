package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/puntodeoro/external/padelapi"
	"github.com/riskibarqy/puntodeoro/external/telegram"
	"github.com/riskibarqy/puntodeoro/internal/config"
	"github.com/riskibarqy/puntodeoro/internal/domain/favorite"
	"github.com/riskibarqy/puntodeoro/internal/domain/notification"
	"github.com/riskibarqy/puntodeoro/internal/domain/subscriber"
	"github.com/riskibarqy/puntodeoro/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/puntodeoro/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/puntodeoro/internal/interfaces/chatbot"
	"github.com/riskibarqy/puntodeoro/internal/interfaces/httpapi"
	"github.com/riskibarqy/puntodeoro/internal/interfaces/scheduler"
	"github.com/riskibarqy/puntodeoro/internal/platform/logging"
	"github.com/riskibarqy/puntodeoro/internal/platform/metrics"
	"github.com/riskibarqy/puntodeoro/internal/platform/resilience"
	"github.com/riskibarqy/puntodeoro/internal/usecase"
	"github.com/sourcegraph/conc"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const shutdownTimeout = 10 * time.Second

// App owns every long-running component of the bot.
type App struct {
	cfg       config.Config
	logger    *logging.Logger
	db        *sqlx.DB
	server    *http.Server
	scheduler *scheduler.Scheduler
	poller    *telegram.Poller
	bot       *chatbot.Bot
}

type stores struct {
	favorites   favorite.Repository
	ledger      notification.Ledger
	subscribers subscriber.Repository
}

// New wires the bot. It opens the database when DB_URL is set and falls
// back to process memory otherwise.
func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	a := &App{cfg: cfg, logger: logger}

	m := metrics.New()

	st, err := a.openStores()
	if err != nil {
		return nil, err
	}

	padel := padelapi.NewClient(padelapi.ClientConfig{
		BaseURL:        cfg.PadelAPIBaseURL,
		APIKey:         cfg.PadelAPIKey,
		Timeout:        cfg.PadelAPITimeout,
		MaxRetries:     cfg.PadelAPIMaxRetries,
		RequestsPerSec: cfg.PadelAPIRPS,
		Logger:         logger.Named("padelapi"),
		Recorder:       m,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.PadelAPICircuitEnabled,
			FailureThreshold: cfg.PadelAPICircuitFailureCount,
			OpenTimeout:      cfg.PadelAPICircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.PadelAPICircuitHalfOpenMaxReq,
		},
	})
	watchBreaker(padel.Breaker(), m, logger)

	catalog := usecase.NewCatalogService(padel, usecase.CatalogConfig{
		TournamentsTTL: cfg.CacheTournamentsTTL,
		MatchesTTL:     cfg.CacheMatchesTTL,
		ResultsTTL:     cfg.CacheResultsTTL,
	}, m, logger)

	var notifier usecase.Notifier = newLogNotifier(logger)
	if cfg.TelegramEnabled {
		tg := telegram.NewClient(telegram.ClientConfig{
			BaseURL:    cfg.TelegramBaseURL,
			Token:      cfg.TelegramToken,
			Timeout:    cfg.TelegramTimeout,
			SendPerSec: cfg.TelegramSendRPS,
			Logger:     logger.Named("telegram"),
			Recorder:   m,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          true,
				FailureThreshold: 5,
				OpenTimeout:      30 * time.Second,
				HalfOpenMaxReq:   1,
			},
		})
		watchBreaker(tg.Breaker(), m, logger)
		notifier = tg.Notifier()

		follows := usecase.NewFollowService(usecase.FollowRepositories{
			Favorites:   st.favorites,
			Subscribers: st.subscribers,
		}, padel, cfg.FreeFavoritesLimit, logger)

		a.bot = chatbot.NewBot(chatbot.Dependencies{
			Transport:     tg,
			Catalog:       catalog,
			Follows:       follows,
			Subscriptions: usecase.NewSubscriptionService(st.subscribers, logger),
			Recorder:      m,
			Logger:        logger,
			CalendarLimit: cfg.CalendarLimit,
		})
		a.poller = telegram.NewPoller(tg, telegram.PollerConfig{
			Timeout:     cfg.TelegramPollTimeout,
			MaxHandlers: cfg.TelegramMaxHandlers,
		})
	}

	alerts := usecase.NewAlertService(usecase.AlertRepositories{
		Favorites: st.favorites,
		Ledger:    st.ledger,
	}, catalog, notifier, m, usecase.AlertServiceConfig{
		StaleAfter:       cfg.AlertStaleAfter,
		Workers:          cfg.AlertWorkers,
		FetchConcurrency: cfg.AlertFetchConcurrency,
	}, logger)
	maintenance := usecase.NewMaintenanceService(st.ledger, cfg.NotificationRetention, m, logger)
	subscriptions := usecase.NewSubscriptionService(st.subscribers, logger)

	a.scheduler = scheduler.New(logger, a.jobs(alerts, maintenance)...)

	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metricsHandler = m.Handler()
	}
	handler := httpapi.NewHandler(alerts, maintenance, subscriptions, logger)
	router := httpapi.NewRouter(handler, logger, metricsHandler, cfg.InternalJobToken)

	a.server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if a.server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return a, nil
}

func (a *App) openStores() (stores, error) {
	if a.cfg.MemoryStore() {
		a.logger.Warn("DB_URL empty, using in-memory store", "durable", false)
		return stores{
			favorites:   memory.NewFavoriteRepository(),
			ledger:      memory.NewNotificationLedger(),
			subscribers: memory.NewSubscriberRepository(),
		}, nil
	}

	dsn := normalizeDBURL(a.cfg.DBURL, a.cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return stores{}, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.DBOpTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return stores{}, fmt.Errorf("ping database: %w", err)
	}
	a.db = db

	opts := postgres.Options{OpTimeout: a.cfg.DBOpTimeout}
	return stores{
		favorites:   postgres.NewFavoriteRepository(db, opts),
		ledger:      postgres.NewNotificationLedger(db, opts),
		subscribers: postgres.NewSubscriberRepository(db, opts),
	}, nil
}

func (a *App) jobs(alerts *usecase.AlertService, maintenance *usecase.MaintenanceService) []scheduler.Job {
	jobs := []scheduler.Job{{
		Name:         "prune_notifications",
		StartupDelay: time.Minute,
		Interval:     a.cfg.PruneInterval,
		Timeout:      a.cfg.DBOpTimeout,
		Run: func(ctx context.Context) error {
			_, err := maintenance.PruneNotifications(ctx)
			return err
		},
	}}
	if !a.cfg.AlertEnabled {
		a.logger.Info("alert loop disabled", "reason", "ALERT_ENABLED=false")
		return jobs
	}
	return append(jobs, scheduler.Job{
		Name:         "alerts",
		StartupDelay: a.cfg.AlertStartupDelay,
		Interval:     a.cfg.AlertInterval,
		Timeout:      a.cfg.AlertTickTimeout,
		Run: func(ctx context.Context) error {
			_, err := alerts.RunTick(ctx)
			if errors.Is(err, usecase.ErrTickInProgress) {
				return nil
			}
			return err
		},
	})
}

// Run blocks until ctx is cancelled, then drains every component.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg conc.WaitGroup
	wg.Go(func() { a.scheduler.Run(runCtx) })
	if a.poller != nil {
		wg.Go(func() {
			if err := a.poller.Run(runCtx, a.bot.Handle); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("telegram poller stopped", "error", err)
			}
		})
	} else {
		a.logger.Info("telegram disabled", "reason", "TELEGRAM_ENABLED=false")
	}

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serverErr:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("graceful shutdown failed", "error", err)
	}
	wg.Wait()
	a.logger.Info("bot stopped")

	return runErr
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func watchBreaker(b *resilience.CircuitBreaker, m *metrics.Metrics, logger *logging.Logger) {
	b.OnStateChange(func(name string, from, to resilience.CircuitState) {
		m.SetBreakerOpen(name, to == resilience.CircuitStateOpen)
		logger.Warn("circuit breaker state changed", "breaker", name, "from", string(from), "to", string(to))
	})
}
