package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/puntodeoro/internal/domain/subscriber"
	"github.com/riskibarqy/puntodeoro/internal/platform/logging"
)

const DefaultSubscriptionPlan = "premium"

type SubscriptionService struct {
	subscribers subscriber.Repository
	logger      *logging.Logger
	now         func() time.Time
}

func NewSubscriptionService(subscribers subscriber.Repository, logger *logging.Logger) *SubscriptionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SubscriptionService{
		subscribers: subscribers,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *SubscriptionService) IsPremium(ctx context.Context, userID int64) (bool, error) {
	active, err := s.subscribers.IsActive(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("check subscription user=%d: %w", userID, err)
	}
	return active, nil
}

// Subscribe activates plan for userID, keeping the original subscription date
// when the user was already active.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID int64, plan string) (subscriber.Subscriber, error) {
	return s.SetStatus(ctx, userID, subscriber.StatusActive, plan)
}

// SetStatus upserts the subscriber row, e.g. from a billing webhook.
func (s *SubscriptionService) SetStatus(ctx context.Context, userID int64, status subscriber.Status, plan string) (subscriber.Subscriber, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubscriptionService.SetStatus")
	defer span.End()

	if userID == 0 {
		return subscriber.Subscriber{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if !status.Valid() {
		return subscriber.Subscriber{}, fmt.Errorf("%w: unknown subscription status %q", ErrInvalidInput, status)
	}
	plan = strings.TrimSpace(plan)
	if plan == "" {
		plan = DefaultSubscriptionPlan
	}

	now := s.now().UTC()
	current, found, err := s.subscribers.Get(ctx, userID)
	if err != nil {
		return subscriber.Subscriber{}, fmt.Errorf("get subscriber user=%d: %w", userID, err)
	}

	sub := subscriber.Subscriber{
		UserID:       userID,
		Status:       status,
		Plan:         plan,
		SubscribedAt: now,
		UpdatedAt:    now,
	}
	if found && current.Active() && status == subscriber.StatusActive {
		sub.SubscribedAt = current.SubscribedAt
	}
	if err := s.subscribers.Upsert(ctx, sub); err != nil {
		return subscriber.Subscriber{}, fmt.Errorf("upsert subscriber user=%d: %w", userID, err)
	}

	s.logger.InfoContext(ctx, "subscription updated", "user_id", userID, "status", string(status), "plan", plan)
	return sub, nil
}

// Status returns the stored subscriber; found is false for users who never subscribed.
func (s *SubscriptionService) Status(ctx context.Context, userID int64) (subscriber.Subscriber, bool, error) {
	sub, found, err := s.subscribers.Get(ctx, userID)
	if err != nil {
		return subscriber.Subscriber{}, false, fmt.Errorf("get subscriber user=%d: %w", userID, err)
	}
	return sub, found, nil
}
