package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/puntodeoro/internal/domain/favorite"
	"github.com/riskibarqy/puntodeoro/internal/domain/notification"
	"github.com/riskibarqy/puntodeoro/internal/domain/tournament"
	"github.com/riskibarqy/puntodeoro/internal/platform/logging"
)

const (
	DefaultAlertStaleAfter       = 24 * time.Hour
	DefaultAlertWorkers          = 8
	DefaultAlertFetchConcurrency = 4

	tickOutcomeSuccess  = "success"
	tickOutcomeNoop     = "noop"
	tickOutcomeFailed   = "failed"
	tickOutcomeCanceled = "canceled"

	alertOutcomeSent            = "sent"
	alertOutcomeAlreadyNotified = "already_notified"
	alertOutcomeSendFailed      = "send_failed"
	alertOutcomeLedgerFailed    = "ledger_failed"
)

// AlertRecorder receives tick and per-alert outcomes. *metrics.Metrics satisfies it.
type AlertRecorder interface {
	RecordTick(outcome string, elapsed time.Duration)
	RecordAlert(status, outcome string)
}

// MatchSource is the cached read side the engine polls.
type MatchSource interface {
	Tournaments(ctx context.Context) []tournament.Tournament
	Matches(ctx context.Context, tournamentID int64) []tournament.Match
}

type AlertServiceConfig struct {
	StaleAfter       time.Duration
	Workers          int
	FetchConcurrency int
}

type AlertRepositories struct {
	Favorites favorite.Repository
	Ledger    notification.Ledger
}

// Alert is one message owed to one user about one match state.
type Alert struct {
	UserID      int64
	Status      string
	Tournament  tournament.Tournament
	Match       tournament.Match
	PlayerNames []string
}

func (a Alert) Key() notification.Key {
	return notification.Key{UserID: a.UserID, MatchID: a.Match.ID, Status: a.Status}
}

type PlanResult struct {
	Alerts         []Alert
	MatchesScanned int
	StaleSkipped   int
}

type TickResult struct {
	Favorites       int           `json:"favorites"`
	Tournaments     int           `json:"tournaments"`
	MatchesScanned  int           `json:"matches_scanned"`
	StaleSkipped    int           `json:"stale_skipped"`
	Planned         int           `json:"planned"`
	AlreadyNotified int           `json:"already_notified"`
	Sent            int           `json:"sent"`
	SendFailed      int           `json:"send_failed"`
	LedgerFailed    int           `json:"ledger_failed"`
	Duration        time.Duration `json:"duration"`
}

type AlertService struct {
	favorites favorite.Repository
	ledger    notification.Ledger
	source    MatchSource
	notifier  Notifier
	recorder  AlertRecorder
	cfg       AlertServiceConfig
	logger    *logging.Logger
	now       func() time.Time
	running   atomic.Bool
}

func NewAlertService(repos AlertRepositories, source MatchSource, notifier Notifier, recorder AlertRecorder, cfg AlertServiceConfig, logger *logging.Logger) *AlertService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = DefaultAlertStaleAfter
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultAlertWorkers
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = DefaultAlertFetchConcurrency
	}

	return &AlertService{
		favorites: repos.Favorites,
		ledger:    repos.Ledger,
		source:    source,
		notifier:  notifier,
		recorder:  recorder,
		cfg:       cfg,
		logger:    logger.Named("alerts"),
		now:       time.Now,
	}
}

// RunTick performs one reconciliation pass. Failures of single tournaments,
// sends or ledger writes are counted and logged; only a failure to load
// favorites or a cancelled context ends the tick with an error.
func (s *AlertService) RunTick(ctx context.Context) (TickResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return TickResult{}, ErrTickInProgress
	}
	defer s.running.Store(false)

	ctx, span := startJobSpan(ctx, "usecase.AlertService.RunTick")
	defer span.End()

	started := s.now()
	result, err := s.runTick(ctx)
	result.Duration = s.now().Sub(started)

	outcome := tickOutcomeSuccess
	switch {
	case err != nil && ctx.Err() != nil:
		outcome = tickOutcomeCanceled
	case err != nil:
		outcome = tickOutcomeFailed
	case result.Favorites == 0:
		outcome = tickOutcomeNoop
	}
	if s.recorder != nil {
		s.recorder.RecordTick(outcome, result.Duration)
	}

	span.SetAttributes(
		attribute.String("alerts.outcome", outcome),
		attribute.Int("alerts.planned", result.Planned),
		attribute.Int("alerts.sent", result.Sent),
	)
	if err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "alert tick ended early", "error", err, "outcome", outcome)
		return result, err
	}

	s.logger.InfoContext(ctx, "alert tick done",
		"favorites", result.Favorites,
		"tournaments", result.Tournaments,
		"matches", result.MatchesScanned,
		"planned", result.Planned,
		"sent", result.Sent,
		"already_notified", result.AlreadyNotified,
		"send_failed", result.SendFailed,
		"ledger_failed", result.LedgerFailed,
		"duration", result.Duration,
	)
	return result, nil
}

func (s *AlertService) runTick(ctx context.Context) (TickResult, error) {
	var result TickResult

	favorites, err := s.favorites.ListAll(ctx)
	if err != nil {
		return result, fmt.Errorf("list favorites: %w", err)
	}
	result.Favorites = len(favorites)
	if len(favorites) == 0 {
		return result, nil
	}

	snapshot := s.collectMatches(ctx)
	if err := ctx.Err(); err != nil {
		return result, err
	}
	result.Tournaments = len(snapshot)

	plan := PlanAlerts(favorites, snapshot, s.now(), s.cfg.StaleAfter)
	result.MatchesScanned = plan.MatchesScanned
	result.StaleSkipped = plan.StaleSkipped
	result.Planned = len(plan.Alerts)
	if len(plan.Alerts) == 0 {
		return result, nil
	}

	counts, err := s.dispatch(ctx, plan.Alerts)
	result.AlreadyNotified = int(counts.alreadyNotified.Load())
	result.Sent = int(counts.sent.Load())
	result.SendFailed = int(counts.sendFailed.Load())
	result.LedgerFailed = int(counts.ledgerFailed.Load())
	if err != nil {
		return result, err
	}
	return result, ctx.Err()
}

// collectMatches reads matches of every alertable tournament concurrently.
// A tournament whose matches cannot be fetched contributes an empty list.
func (s *AlertService) collectMatches(ctx context.Context) []TournamentMatches {
	tournaments := s.source.Tournaments(ctx)

	alertable := make([]tournament.Tournament, 0, len(tournaments))
	for _, item := range tournaments {
		if item.Alertable() {
			alertable = append(alertable, item)
		}
	}

	snapshot := make([]TournamentMatches, len(alertable))
	p := pool.New().WithMaxGoroutines(s.cfg.FetchConcurrency)
	for i, item := range alertable {
		p.Go(func() {
			if ctx.Err() != nil {
				snapshot[i] = TournamentMatches{Tournament: item}
				return
			}
			snapshot[i] = TournamentMatches{Tournament: item, Matches: s.source.Matches(ctx, item.ID)}
		})
	}
	p.Wait()
	return snapshot
}

type dispatchCounts struct {
	alreadyNotified atomic.Int64
	sent            atomic.Int64
	sendFailed      atomic.Int64
	ledgerFailed    atomic.Int64
}

func (s *AlertService) dispatch(ctx context.Context, alerts []Alert) (*dispatchCounts, error) {
	counts := &dispatchCounts{}

	workerPool, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		return counts, fmt.Errorf("create alert worker pool: %w", err)
	}
	defer workerPool.Release()

	var wg sync.WaitGroup
	for _, alert := range alerts {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		submitErr := workerPool.Submit(func() {
			defer wg.Done()
			s.deliver(ctx, alert, counts)
		})
		if submitErr != nil {
			wg.Done()
			s.logger.WarnContext(ctx, "submit alert failed", "user_id", alert.UserID, "match_id", alert.Match.ID, "error", submitErr)
			counts.sendFailed.Add(1)
		}
	}
	wg.Wait()
	return counts, nil
}

// deliver checks the ledger, sends, then records. A failed send leaves the
// ledger untouched so the alert is retried on the next tick.
func (s *AlertService) deliver(ctx context.Context, alert Alert, counts *dispatchCounts) {
	key := alert.Key()

	notified, err := s.ledger.WasNotified(ctx, key)
	if err != nil {
		counts.ledgerFailed.Add(1)
		s.record(alert.Status, alertOutcomeLedgerFailed)
		s.logger.WarnContext(ctx, "ledger lookup failed", "key", key.String(), "error", err)
		return
	}
	if notified {
		counts.alreadyNotified.Add(1)
		s.record(alert.Status, alertOutcomeAlreadyNotified)
		return
	}

	if err := s.notifier.Send(ctx, alert.UserID, FormatAlert(alert)); err != nil {
		counts.sendFailed.Add(1)
		s.record(alert.Status, alertOutcomeSendFailed)
		s.logger.WarnContext(ctx, "send alert failed", "key", key.String(), "error", err)
		return
	}

	_, err = s.ledger.MarkNotified(ctx, notification.Record{
		UserID:    alert.UserID,
		MatchID:   alert.Match.ID,
		Status:    alert.Status,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		counts.ledgerFailed.Add(1)
		s.record(alert.Status, alertOutcomeLedgerFailed)
		s.logger.ErrorContext(ctx, "mark notified failed after send", "key", key.String(), "error", err)
		return
	}
	counts.sent.Add(1)
	s.record(alert.Status, alertOutcomeSent)
}

func (s *AlertService) record(status, outcome string) {
	if s.recorder != nil {
		s.recorder.RecordAlert(status, outcome)
	}
}

// PlanAlerts decides which (user, match, status) alerts a snapshot produces.
// It does not consult the ledger. Finished matches played more than
// staleAfter before now are skipped. Several followed players in one match
// collapse into a single alert per user.
func PlanAlerts(favorites []favorite.Favorite, snapshot []TournamentMatches, now time.Time, staleAfter time.Duration) PlanResult {
	var result PlanResult
	if len(favorites) == 0 {
		return result
	}

	byName := make(map[string][]favorite.Favorite, len(favorites))
	for _, f := range favorites {
		name := tournament.NormalizeName(f.PlayerName)
		if name == "" {
			continue
		}
		byName[name] = append(byName[name], f)
	}
	// sorted for a deterministic alert order within a snapshot
	followed := make([]string, 0, len(byName))
	for name := range byName {
		followed = append(followed, name)
	}
	sort.Strings(followed)

	index := make(map[notification.Key]int)
	for _, group := range snapshot {
		for _, m := range group.Matches {
			if !m.Alertable() {
				continue
			}
			result.MatchesScanned++
			if m.Status == tournament.StatusFinished && staleAfter > 0 {
				if playedAt, ok := m.PlayedTime(); ok && now.Sub(playedAt) > staleAfter {
					result.StaleSkipped++
					continue
				}
			}
			if m.TournamentID == 0 {
				m.TournamentID = group.Tournament.ID
			}

			onCourt := tournament.MatchNameSet(m)
			for _, name := range followed {
				if !onCourt.Contains(name) {
					continue
				}
				for _, f := range byName[name] {
					key := notification.Key{UserID: f.UserID, MatchID: m.ID, Status: m.Status}
					if i, ok := index[key]; ok {
						result.Alerts[i].PlayerNames = appendUnique(result.Alerts[i].PlayerNames, f.PlayerName)
						continue
					}
					index[key] = len(result.Alerts)
					result.Alerts = append(result.Alerts, Alert{
						UserID:      f.UserID,
						Status:      m.Status,
						Tournament:  group.Tournament,
						Match:       m,
						PlayerNames: []string{f.PlayerName},
					})
				}
			}
		}
	}
	return result
}

func appendUnique(values []string, v string) []string {
	for _, existing := range values {
		if tournament.NormalizeName(existing) == tournament.NormalizeName(v) {
			return values
		}
	}
	return append(values, v)
}
