package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/puntodeoro/internal/domain/subscriber"
	qb "github.com/riskibarqy/puntodeoro/internal/platform/querybuilder"
)

const subscribersTable = "subscribers"

type SubscriberRepository struct {
	db   *sqlx.DB
	opts Options
}

func NewSubscriberRepository(db *sqlx.DB, opts Options) *SubscriberRepository {
	return &SubscriberRepository{db: db, opts: opts}
}

func (r *SubscriberRepository) Get(ctx context.Context, userID int64) (subscriber.Subscriber, bool, error) {
	query, args, err := qb.Select(qb.Columns(subscriberTableModel{})...).
		From(subscribersTable).
		Where(qb.Eq("user_id", userID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return subscriber.Subscriber{}, false, fmt.Errorf("build get subscriber query: %w", err)
	}

	var row subscriberTableModel
	err = runStatement(ctx, r.opts, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &row, query, args...)
	})
	if isNotFound(err) {
		return subscriber.Subscriber{}, false, nil
	}
	if err != nil {
		return subscriber.Subscriber{}, false, persistenceError("get subscriber", err)
	}

	return subscriber.Subscriber{
		UserID:       row.UserID,
		Status:       subscriber.Status(row.Status),
		Plan:         row.Plan,
		SubscribedAt: row.SubscribedAt,
		UpdatedAt:    row.UpdatedAt,
	}, true, nil
}

func (r *SubscriberRepository) IsActive(ctx context.Context, userID int64) (bool, error) {
	query, args, err := isActiveSubscriberQuery(userID)
	if err != nil {
		return false, fmt.Errorf("build is subscriber query: %w", err)
	}

	var active bool
	err = runStatement(ctx, r.opts, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &active, query, args...)
	})
	if err != nil {
		return false, persistenceError("is subscriber", err)
	}
	return active, nil
}

func (r *SubscriberRepository) Upsert(ctx context.Context, sub subscriber.Subscriber) error {
	query, args, err := upsertSubscriberQuery(sub)
	if err != nil {
		return fmt.Errorf("build upsert subscriber query: %w", err)
	}

	err = runStatement(ctx, r.opts, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return persistenceError("upsert subscriber", err)
	}
	return nil
}

func isActiveSubscriberQuery(userID int64) (string, []any, error) {
	inner, args, err := qb.Select("1").
		From(subscribersTable).
		Where(qb.Eq("user_id", userID), qb.Eq("status", string(subscriber.StatusActive))).
		Limit(1).
		ToSQL()
	if err != nil {
		return "", nil, err
	}
	return "SELECT EXISTS (" + inner + ")", args, nil
}

func upsertSubscriberQuery(sub subscriber.Subscriber) (string, []any, error) {
	return qb.InsertModel(subscribersTable, subscriberInsertModel{
		UserID:       sub.UserID,
		Status:       string(sub.Status),
		Plan:         strings.TrimSpace(sub.Plan),
		SubscribedAt: sub.SubscribedAt.UTC(),
	}, `ON CONFLICT (user_id)
DO UPDATE SET
    status = EXCLUDED.status,
    plan = EXCLUDED.plan,
    subscribed_at = EXCLUDED.subscribed_at,
    updated_at = NOW()`)
}
