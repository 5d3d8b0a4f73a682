package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/puntodeoro/internal/domain/favorite"
)

type favoriteKey struct {
	userID   int64
	playerID int64
}

type FavoriteRepository struct {
	mu    sync.RWMutex
	items map[favoriteKey]favorite.Favorite
	now   func() time.Time
}

func NewFavoriteRepository(seed ...favorite.Favorite) *FavoriteRepository {
	r := &FavoriteRepository{
		items: make(map[favoriteKey]favorite.Favorite, len(seed)),
		now:   time.Now,
	}
	for _, fav := range seed {
		_, _ = r.Add(context.Background(), fav)
	}
	return r
}

func (r *FavoriteRepository) ListAll(_ context.Context) ([]favorite.Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]favorite.Favorite, 0, len(r.items))
	for _, fav := range r.items {
		out = append(out, fav)
	}
	sortFavorites(out)
	return out, nil
}

func (r *FavoriteRepository) ListByUser(_ context.Context, userID int64) ([]favorite.Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]favorite.Favorite, 0)
	for key, fav := range r.items {
		if key.userID == userID {
			out = append(out, fav)
		}
	}
	sortFavorites(out)
	return out, nil
}

func (r *FavoriteRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	items, err := r.ListByUser(ctx, userID)
	return len(items), err
}

func (r *FavoriteRepository) Add(_ context.Context, fav favorite.Favorite) (favorite.AddResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := favoriteKey{userID: fav.UserID, playerID: fav.PlayerID}
	if _, exists := r.items[key]; exists {
		return favorite.AddAlreadyExists, nil
	}
	if fav.CreatedAt.IsZero() {
		fav.CreatedAt = r.now()
	}
	r.items[key] = fav
	return favorite.AddInserted, nil
}

func (r *FavoriteRepository) Remove(_ context.Context, userID, playerID int64) (favorite.RemoveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := favoriteKey{userID: userID, playerID: playerID}
	if _, exists := r.items[key]; !exists {
		return favorite.RemoveNotFound, nil
	}
	delete(r.items, key)
	return favorite.RemoveDeleted, nil
}

func sortFavorites(items []favorite.Favorite) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].UserID != items[j].UserID {
			return items[i].UserID < items[j].UserID
		}
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].PlayerID < items[j].PlayerID
	})
}
