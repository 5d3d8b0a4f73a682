package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/puntodeoro/internal/domain/favorite"
	"github.com/riskibarqy/puntodeoro/internal/domain/subscriber"
	"github.com/riskibarqy/puntodeoro/internal/domain/tournament"
	"github.com/riskibarqy/puntodeoro/internal/platform/logging"
)

const DefaultFreeFavoritesLimit = 3

type FollowResult int

const (
	FollowFollowed FollowResult = iota + 1
	FollowAlreadyFollowing
	FollowLimitReached
)

func (r FollowResult) String() string {
	switch r {
	case FollowFollowed:
		return "followed"
	case FollowAlreadyFollowing:
		return "already_following"
	case FollowLimitReached:
		return "limit_reached"
	default:
		return "unknown"
	}
}

type FollowRepositories struct {
	Favorites   favorite.Repository
	Subscribers subscriber.Repository
}

type playerSearchInput struct {
	Query string `validate:"required,min=2,max=64"`
}

// FollowService manages the players a user follows.
type FollowService struct {
	favorites   favorite.Repository
	subscribers subscriber.Repository
	provider    SportsProvider
	freeLimit   int
	validator   *validator.Validate
	logger      *logging.Logger
	now         func() time.Time
}

func NewFollowService(repos FollowRepositories, provider SportsProvider, freeLimit int, logger *logging.Logger) *FollowService {
	if logger == nil {
		logger = logging.Default()
	}
	if freeLimit <= 0 {
		freeLimit = DefaultFreeFavoritesLimit
	}
	return &FollowService{
		favorites:   repos.Favorites,
		subscribers: repos.Subscribers,
		provider:    provider,
		freeLimit:   freeLimit,
		validator:   validator.New(),
		logger:      logger,
		now:         time.Now,
	}
}

func (s *FollowService) FreeLimit() int {
	return s.freeLimit
}

func (s *FollowService) SearchPlayers(ctx context.Context, query string) ([]tournament.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FollowService.SearchPlayers")
	defer span.End()

	input := playerSearchInput{Query: strings.Join(strings.Fields(query), " ")}
	if err := s.validator.StructCtx(ctx, input); err != nil {
		return nil, fmt.Errorf("%w: player name must have between 2 and 64 characters", ErrInvalidInput)
	}

	players, err := s.provider.FindPlayers(ctx, input.Query)
	if err != nil {
		return nil, fmt.Errorf("find players %q: %w", input.Query, err)
	}
	return players, nil
}

// Follow adds playerID to the user's favorites. Users without an active
// subscription may follow at most freeLimit players.
func (s *FollowService) Follow(ctx context.Context, userID, playerID int64) (FollowResult, tournament.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FollowService.Follow")
	defer span.End()

	if userID == 0 || playerID <= 0 {
		return 0, tournament.Player{}, fmt.Errorf("%w: user id and player id are required", ErrInvalidInput)
	}

	player, err := s.provider.GetPlayer(ctx, playerID)
	if err != nil {
		return 0, tournament.Player{}, fmt.Errorf("get player id=%d: %w", playerID, err)
	}
	if strings.TrimSpace(player.Name) == "" {
		return 0, player, fmt.Errorf("%w: player id=%d has no name", ErrNotFound, playerID)
	}

	followed, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return 0, player, fmt.Errorf("list favorites user=%d: %w", userID, err)
	}
	for _, f := range followed {
		if f.PlayerID == playerID {
			return FollowAlreadyFollowing, player, nil
		}
	}

	if len(followed) >= s.freeLimit {
		premium, err := s.subscribers.IsActive(ctx, userID)
		if err != nil {
			return 0, player, fmt.Errorf("check subscription user=%d: %w", userID, err)
		}
		if !premium {
			return FollowLimitReached, player, nil
		}
	}

	result, err := s.favorites.Add(ctx, favorite.Favorite{
		UserID:     userID,
		PlayerID:   playerID,
		PlayerName: strings.TrimSpace(player.Name),
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		return 0, player, fmt.Errorf("add favorite user=%d player=%d: %w", userID, playerID, err)
	}
	if result == favorite.AddAlreadyExists {
		return FollowAlreadyFollowing, player, nil
	}

	s.logger.InfoContext(ctx, "player followed", "user_id", userID, "player_id", playerID)
	return FollowFollowed, player, nil
}

// Unfollow reports false when the user was not following playerID.
func (s *FollowService) Unfollow(ctx context.Context, userID, playerID int64) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FollowService.Unfollow")
	defer span.End()

	result, err := s.favorites.Remove(ctx, userID, playerID)
	if err != nil {
		return false, fmt.Errorf("remove favorite user=%d player=%d: %w", userID, playerID, err)
	}
	return result == favorite.RemoveDeleted, nil
}

func (s *FollowService) ListFollowed(ctx context.Context, userID int64) ([]favorite.Favorite, error) {
	items, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites user=%d: %w", userID, err)
	}
	return items, nil
}
