package favorite

import "context"

type Repository interface {
	ListAll(ctx context.Context) ([]Favorite, error)
	ListByUser(ctx context.Context, userID int64) ([]Favorite, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	Add(ctx context.Context, fav Favorite) (AddResult, error)
	Remove(ctx context.Context, userID, playerID int64) (RemoveResult, error)
}
