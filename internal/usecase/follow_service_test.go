package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/puntodeoro/internal/domain/favorite"
	"github.com/riskibarqy/puntodeoro/internal/domain/subscriber"
	"github.com/riskibarqy/puntodeoro/internal/domain/tournament"
	"github.com/riskibarqy/puntodeoro/internal/infrastructure/repository/memory"
	usecasemock "github.com/riskibarqy/puntodeoro/internal/mocks/usecase"
)

func TestFollowService_SearchPlayersValidatesQuery(t *testing.T) {
	t.Parallel()

	provider := usecasemock.NewSportsProvider(t)
	service := NewFollowService(FollowRepositories{
		Favorites:   memory.NewFavoriteRepository(),
		Subscribers: memory.NewSubscriberRepository(),
	}, provider, 0, nil)

	_, err := service.SearchPlayers(context.Background(), " a ")
	require.ErrorIs(t, err, ErrInvalidInput)

	provider.On("FindPlayers", mock.Anything, "Ana Ruiz").
		Return([]tournament.Player{{ID: 11, Name: "Ana Ruiz"}}, nil).
		Once()
	players, err := service.SearchPlayers(context.Background(), "  Ana   Ruiz ")
	require.NoError(t, err)
	assert.Len(t, players, 1)
}

func TestFollowService_FollowEnforcesFreeLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	favorites := memory.NewFavoriteRepository(
		favorite.Favorite{UserID: 42, PlayerID: 1, PlayerName: "Uno"},
		favorite.Favorite{UserID: 42, PlayerID: 2, PlayerName: "Dos"},
	)
	subscribers := memory.NewSubscriberRepository()
	provider := usecasemock.NewSportsProvider(t)
	provider.On("GetPlayer", mock.Anything, int64(3)).Return(tournament.Player{ID: 3, Name: "Tres"}, nil)
	provider.On("GetPlayer", mock.Anything, int64(4)).Return(tournament.Player{ID: 4, Name: "Cuatro"}, nil)

	service := NewFollowService(FollowRepositories{Favorites: favorites, Subscribers: subscribers}, provider, 3, nil)

	result, player, err := service.Follow(ctx, 42, 3)
	require.NoError(t, err)
	assert.Equal(t, FollowFollowed, result)
	assert.Equal(t, "Tres", player.Name)

	result, _, err = service.Follow(ctx, 42, 3)
	require.NoError(t, err)
	assert.Equal(t, FollowAlreadyFollowing, result)

	result, _, err = service.Follow(ctx, 42, 4)
	require.NoError(t, err)
	assert.Equal(t, FollowLimitReached, result)

	require.NoError(t, subscribers.Upsert(ctx, subscriber.Subscriber{UserID: 42, Status: subscriber.StatusActive, Plan: "premium"}))
	result, _, err = service.Follow(ctx, 42, 4)
	require.NoError(t, err)
	assert.Equal(t, FollowFollowed, result)

	count, err := favorites.CountByUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestFollowService_FollowPropagatesUpstreamErrors(t *testing.T) {
	t.Parallel()

	provider := usecasemock.NewSportsProvider(t)
	provider.On("GetPlayer", mock.Anything, int64(5)).Return(tournament.Player{}, ErrUpstreamRateLimited).Once()

	service := NewFollowService(FollowRepositories{
		Favorites:   memory.NewFavoriteRepository(),
		Subscribers: memory.NewSubscriberRepository(),
	}, provider, 3, nil)

	_, _, err := service.Follow(context.Background(), 42, 5)
	require.ErrorIs(t, err, ErrUpstreamRateLimited)
}

func TestFollowService_Unfollow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	favorites := memory.NewFavoriteRepository(favorite.Favorite{UserID: 42, PlayerID: 1, PlayerName: "Uno"})
	service := NewFollowService(FollowRepositories{
		Favorites:   favorites,
		Subscribers: memory.NewSubscriberRepository(),
	}, usecasemock.NewSportsProvider(t), 3, nil)

	removed, err := service.Unfollow(ctx, 42, 1)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = service.Unfollow(ctx, 42, 1)
	require.NoError(t, err)
	assert.False(t, removed)

	items, err := service.ListFollowed(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, items)
}
