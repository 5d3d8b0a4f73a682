package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/riskibarqy/puntodeoro/internal/domain/tournament"
	"github.com/riskibarqy/puntodeoro/internal/platform/cache"
	"github.com/riskibarqy/puntodeoro/internal/platform/logging"
)

const (
	tournamentsCacheKey = "tournaments:all"
	resultsCacheKey     = "results:last"
	rankingsTopN        = 10
)

type CatalogConfig struct {
	TournamentsTTL time.Duration
	MatchesTTL     time.Duration
	ResultsTTL     time.Duration
}

func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		TournamentsTTL: 60 * time.Minute,
		MatchesTTL:     2 * time.Minute,
		ResultsTTL:     10 * time.Minute,
	}
}

// TournamentMatches pairs a tournament with the matches fetched for it.
type TournamentMatches struct {
	Tournament tournament.Tournament
	Matches    []tournament.Match
}

// CatalogService is the read side over the sports API. It owns the TTL caches
// shared by the alert loop and the chat handlers.
type CatalogService struct {
	provider    SportsProvider
	cfg         CatalogConfig
	tournaments *cache.TTLCache[[]tournament.Tournament]
	matches     *cache.TTLCache[[]tournament.Match]
	results     *cache.TTLCache[TournamentMatches]
	logger      *logging.Logger
}

func NewCatalogService(provider SportsProvider, cfg CatalogConfig, recorder cache.Recorder, logger *logging.Logger) *CatalogService {
	if logger == nil {
		logger = logging.Default()
	}
	defaults := DefaultCatalogConfig()
	if cfg.TournamentsTTL <= 0 {
		cfg.TournamentsTTL = defaults.TournamentsTTL
	}
	if cfg.MatchesTTL <= 0 {
		cfg.MatchesTTL = defaults.MatchesTTL
	}
	if cfg.ResultsTTL <= 0 {
		cfg.ResultsTTL = defaults.ResultsTTL
	}

	return &CatalogService{
		provider: provider,
		cfg:      cfg,
		tournaments: cache.NewTTLCache("tournaments",
			cache.WithLogger[[]tournament.Tournament](logger),
			cache.WithRecorder[[]tournament.Tournament](recorder)),
		matches: cache.NewTTLCache("matches",
			cache.WithLogger[[]tournament.Match](logger),
			cache.WithRecorder[[]tournament.Match](recorder)),
		results: cache.NewTTLCache("results",
			cache.WithLogger[TournamentMatches](logger),
			cache.WithRecorder[TournamentMatches](recorder)),
		logger: logger,
	}
}

// Tournaments never fails; on upstream trouble it serves stale or empty data.
func (s *CatalogService) Tournaments(ctx context.Context) []tournament.Tournament {
	return s.tournaments.GetOrRefresh(ctx, tournamentsCacheKey, s.cfg.TournamentsTTL, s.provider.ListTournaments)
}

// Matches never fails; see Tournaments.
func (s *CatalogService) Matches(ctx context.Context, tournamentID int64) []tournament.Match {
	return s.matches.GetOrRefresh(ctx, matchesCacheKey(tournamentID), s.cfg.MatchesTTL, s.refreshMatches(tournamentID))
}

// LoadTournaments reports the upstream error when nothing cached can be served.
func (s *CatalogService) LoadTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	return s.tournaments.Load(ctx, tournamentsCacheKey, s.cfg.TournamentsTTL, s.provider.ListTournaments)
}

func (s *CatalogService) LoadMatches(ctx context.Context, tournamentID int64) ([]tournament.Match, error) {
	return s.matches.Load(ctx, matchesCacheKey(tournamentID), s.cfg.MatchesTTL, s.refreshMatches(tournamentID))
}

// LiveMatches lists live matches grouped by live tournament. A tournament
// whose matches cannot be loaded is left out.
func (s *CatalogService) LiveMatches(ctx context.Context) ([]TournamentMatches, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.LiveMatches")
	defer span.End()

	tournaments, err := s.LoadTournaments(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]TournamentMatches, 0)
	for _, item := range tournaments {
		if item.Status != tournament.StatusLive {
			continue
		}
		matches, err := s.LoadMatches(ctx, item.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "skip live tournament", "tournament_id", item.ID, "error", err)
			continue
		}
		live := make([]tournament.Match, 0, len(matches))
		for _, m := range matches {
			if m.Status == tournament.StatusLive {
				live = append(live, m)
			}
		}
		if len(live) > 0 {
			out = append(out, TournamentMatches{Tournament: item, Matches: live})
		}
	}
	return out, nil
}

// Calendar returns upcoming tournaments ordered by start date.
func (s *CatalogService) Calendar(ctx context.Context, limit int) ([]tournament.Tournament, error) {
	tournaments, err := s.LoadTournaments(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]tournament.Tournament, 0)
	for _, item := range tournaments {
		if item.Upcoming() {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return dateKey(out[i].StartDate).Before(dateKey(out[j].StartDate))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// LastResults returns the finished matches of the most recently ended tournament.
func (s *CatalogService) LastResults(ctx context.Context) (TournamentMatches, error) {
	return s.results.Load(ctx, resultsCacheKey, s.cfg.ResultsTTL, s.refreshLastResults)
}

// Rankings returns the top ten of one gender, in upstream order. Not cached.
func (s *CatalogService) Rankings(ctx context.Context, gender string) ([]tournament.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.Rankings")
	defer span.End()

	players, err := s.provider.ListRankings(ctx, gender)
	if err != nil {
		return nil, fmt.Errorf("list %s rankings: %w", gender, err)
	}
	if len(players) > rankingsTopN {
		players = players[:rankingsTopN]
	}
	return players, nil
}

func (s *CatalogService) refreshMatches(tournamentID int64) cache.RefreshFunc[[]tournament.Match] {
	return func(ctx context.Context) ([]tournament.Match, error) {
		return s.provider.ListMatches(ctx, tournamentID)
	}
}

func (s *CatalogService) refreshLastResults(ctx context.Context) (TournamentMatches, error) {
	tournaments, err := s.LoadTournaments(ctx)
	if err != nil {
		return TournamentMatches{}, err
	}

	var (
		latest tournament.Tournament
		found  bool
	)
	for _, item := range tournaments {
		if item.Status != tournament.StatusFinished {
			continue
		}
		if !found || endedAfter(item, latest) {
			latest, found = item, true
		}
	}
	if !found {
		return TournamentMatches{}, nil
	}

	matches, err := s.LoadMatches(ctx, latest.ID)
	if err != nil {
		return TournamentMatches{}, err
	}
	finished := make([]tournament.Match, 0, len(matches))
	for _, m := range matches {
		if m.Status == tournament.StatusFinished {
			finished = append(finished, m)
		}
	}
	// final first, then semifinals and so on
	sort.SliceStable(finished, func(i, j int) bool {
		return roundOrder(finished[i].Round) < roundOrder(finished[j].Round)
	})
	return TournamentMatches{Tournament: latest, Matches: finished}, nil
}

func matchesCacheKey(tournamentID int64) string {
	return "matches:" + strconv.FormatInt(tournamentID, 10)
}

// dateKey sorts unparseable dates last.
func dateKey(raw string) time.Time {
	if t, ok := tournament.ParseTime(raw); ok {
		return t
	}
	return time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
}

func endedAfter(a, b tournament.Tournament) bool {
	ta, okA := tournament.ParseTime(firstNonEmpty(a.EndDate, a.StartDate))
	tb, okB := tournament.ParseTime(firstNonEmpty(b.EndDate, b.StartDate))
	switch {
	case okA && okB && !ta.Equal(tb):
		return ta.After(tb)
	case okA != okB:
		return okA
	default:
		return a.ID > b.ID
	}
}

func roundOrder(round int) int {
	if round <= 0 {
		return 1 << 30
	}
	return round
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
