package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/puntodeoro/internal/domain/tournament"
	usecasemock "github.com/riskibarqy/puntodeoro/internal/mocks/usecase"
)

func TestCatalogService_TournamentsAreCachedWithinTTL(t *testing.T) {
	t.Parallel()

	provider := usecasemock.NewSportsProvider(t)
	provider.On("ListTournaments", mock.Anything).
		Return([]tournament.Tournament{{ID: 1, Status: tournament.StatusLive}}, nil).
		Once()

	service := NewCatalogService(provider, CatalogConfig{}, nil, nil)

	first := service.Tournaments(context.Background())
	second := service.Tournaments(context.Background())
	assert.Len(t, first, 1)
	assert.Equal(t, first, second)
}

func TestCatalogService_MatchesFailureServesEmpty(t *testing.T) {
	t.Parallel()

	provider := usecasemock.NewSportsProvider(t)
	provider.On("ListMatches", mock.Anything, int64(9)).Return(nil, ErrUpstreamUnreachable).Once()

	service := NewCatalogService(provider, CatalogConfig{}, nil, nil)
	assert.Empty(t, service.Matches(context.Background(), 9))
}

func TestCatalogService_LoadTournamentsReportsRateLimit(t *testing.T) {
	t.Parallel()

	provider := usecasemock.NewSportsProvider(t)
	provider.On("ListTournaments", mock.Anything).Return(nil, ErrUpstreamRateLimited).Once()

	service := NewCatalogService(provider, CatalogConfig{}, nil, nil)
	_, err := service.LoadTournaments(context.Background())
	require.ErrorIs(t, err, ErrUpstreamRateLimited)
}

func TestCatalogService_LiveMatches(t *testing.T) {
	t.Parallel()

	provider := usecasemock.NewSportsProvider(t)
	provider.On("ListTournaments", mock.Anything).Return([]tournament.Tournament{
		{ID: 1, Name: "Live One", Status: tournament.StatusLive},
		{ID: 2, Name: "Done", Status: tournament.StatusFinished},
		{ID: 3, Name: "Broken", Status: tournament.StatusLive},
	}, nil).Once()
	provider.On("ListMatches", mock.Anything, int64(1)).Return([]tournament.Match{
		{ID: 10, Status: tournament.StatusLive},
		{ID: 11, Status: tournament.StatusFinished},
	}, nil).Once()
	provider.On("ListMatches", mock.Anything, int64(3)).Return(nil, ErrUpstreamProtocol).Once()

	service := NewCatalogService(provider, CatalogConfig{}, nil, nil)
	groups, err := service.LiveMatches(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Live One", groups[0].Tournament.Name)
	require.Len(t, groups[0].Matches, 1)
	assert.Equal(t, int64(10), groups[0].Matches[0].ID)
}

func TestCatalogService_CalendarSortsUpcomingByStartDate(t *testing.T) {
	t.Parallel()

	provider := usecasemock.NewSportsProvider(t)
	provider.On("ListTournaments", mock.Anything).Return([]tournament.Tournament{
		{ID: 1, Status: tournament.StatusScheduled, StartDate: "2026-07-01"},
		{ID: 2, Status: tournament.StatusLive, StartDate: "2026-05-01"},
		{ID: 3, Status: tournament.StatusUpcoming, StartDate: "2026-06-01"},
		{ID: 4, Status: tournament.StatusCreated},
		{ID: 5, Status: tournament.StatusUpcoming, StartDate: "2026-06-15T10:00:00Z"},
	}, nil).Once()

	service := NewCatalogService(provider, CatalogConfig{}, nil, nil)
	items, err := service.Calendar(context.Background(), 3)
	require.NoError(t, err)

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []int64{3, 5, 1}, ids)
}

func TestCatalogService_LastResultsPicksLatestFinishedTournament(t *testing.T) {
	t.Parallel()

	provider := usecasemock.NewSportsProvider(t)
	provider.On("ListTournaments", mock.Anything).Return([]tournament.Tournament{
		{ID: 1, Name: "Older", Status: tournament.StatusFinished, EndDate: "2026-03-01"},
		{ID: 2, Name: "Newer", Status: tournament.StatusFinished, EndDate: "2026-04-20"},
		{ID: 3, Name: "Running", Status: tournament.StatusLive, EndDate: "2026-05-20"},
	}, nil).Once()
	provider.On("ListMatches", mock.Anything, int64(2)).Return([]tournament.Match{
		{ID: 20, Status: tournament.StatusFinished, Round: 2},
		{ID: 21, Status: tournament.StatusFinished, Round: 1},
		{ID: 22, Status: tournament.StatusScheduled, Round: 1},
	}, nil).Once()

	service := NewCatalogService(provider, CatalogConfig{}, nil, nil)
	results, err := service.LastResults(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Newer", results.Tournament.Name)
	require.Len(t, results.Matches, 2)
	assert.Equal(t, int64(21), results.Matches[0].ID, "final comes first")

	again, err := service.LastResults(context.Background())
	require.NoError(t, err)
	assert.Equal(t, results, again)
}

func TestCatalogService_RankingsTopTen(t *testing.T) {
	t.Parallel()

	players := make([]tournament.Player, 15)
	for i := range players {
		players[i] = tournament.Player{ID: int64(i + 1), Ranking: i + 1}
	}
	provider := usecasemock.NewSportsProvider(t)
	provider.On("ListRankings", mock.Anything, tournament.GenderMale).Return(players, nil).Once()

	service := NewCatalogService(provider, CatalogConfig{}, nil, nil)
	got, err := service.Rankings(context.Background(), tournament.GenderMale)
	require.NoError(t, err)
	assert.Len(t, got, 10)
	assert.Equal(t, int64(1), got[0].ID)
}
