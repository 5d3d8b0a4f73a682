package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/puntodeoro/internal/domain/subscriber"
)

type SubscriberRepository struct {
	mu    sync.RWMutex
	items map[int64]subscriber.Subscriber
	now   func() time.Time
}

func NewSubscriberRepository() *SubscriberRepository {
	return &SubscriberRepository{
		items: make(map[int64]subscriber.Subscriber),
		now:   time.Now,
	}
}

func (r *SubscriberRepository) Get(_ context.Context, userID int64) (subscriber.Subscriber, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.items[userID]
	return sub, ok, nil
}

func (r *SubscriberRepository) IsActive(ctx context.Context, userID int64) (bool, error) {
	sub, ok, err := r.Get(ctx, userID)
	return ok && sub.Active(), err
}

func (r *SubscriberRepository) Upsert(_ context.Context, sub subscriber.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub.UpdatedAt = r.now()
	r.items[sub.UserID] = sub
	return nil
}
