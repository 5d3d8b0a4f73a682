package subscriber

import "context"

type Repository interface {
	Get(ctx context.Context, userID int64) (Subscriber, bool, error)
	IsActive(ctx context.Context, userID int64) (bool, error)
	Upsert(ctx context.Context, sub Subscriber) error
}
