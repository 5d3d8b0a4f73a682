package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/puntodeoro/internal/domain/notification"
	qb "github.com/riskibarqy/puntodeoro/internal/platform/querybuilder"
)

const notifiedTable = "notified"

// NotificationLedger stores delivered alerts in the notified table.
type NotificationLedger struct {
	db   *sqlx.DB
	opts Options
	now  func() time.Time
}

func NewNotificationLedger(db *sqlx.DB, opts Options) *NotificationLedger {
	return &NotificationLedger{db: db, opts: opts, now: time.Now}
}

func (r *NotificationLedger) WasNotified(ctx context.Context, key notification.Key) (bool, error) {
	query, args, err := wasNotifiedQuery(key)
	if err != nil {
		return false, fmt.Errorf("build was notified query: %w", err)
	}

	var exists bool
	err = runStatement(ctx, r.opts, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &exists, query, args...)
	})
	if err != nil {
		return false, persistenceError("was notified", err)
	}
	return exists, nil
}

func (r *NotificationLedger) MarkNotified(ctx context.Context, record notification.Record) (notification.MarkResult, error) {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.now()
	}
	query, args, err := markNotifiedQuery(record)
	if err != nil {
		return 0, fmt.Errorf("build mark notified query: %w", err)
	}

	var affected int64
	err = runStatement(ctx, r.opts, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, persistenceError("mark notified", err)
	}
	if affected == 0 {
		return notification.MarkAlreadyExists, nil
	}
	return notification.MarkInserted, nil
}

func (r *NotificationLedger) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := qb.DeleteFrom(notifiedTable).Where(qb.Lt("created_at", cutoff.UTC())).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build prune notified query: %w", err)
	}

	var affected int64
	err = runStatement(ctx, r.opts, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, persistenceError("prune notified", err)
	}
	return affected, nil
}

func wasNotifiedQuery(key notification.Key) (string, []any, error) {
	inner, args, err := qb.Select("1").
		From(notifiedTable).
		Where(
			qb.Eq("user_id", key.UserID),
			qb.Eq("match_id", key.MatchID),
			qb.Eq("status", key.Status),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return "", nil, err
	}
	return "SELECT EXISTS (" + inner + ")", args, nil
}

func markNotifiedQuery(record notification.Record) (string, []any, error) {
	return qb.InsertModel(notifiedTable, notifiedInsertModel{
		UserID:    record.UserID,
		MatchID:   record.MatchID,
		Status:    record.Status,
		CreatedAt: record.CreatedAt.UTC(),
	}, "ON CONFLICT (user_id, match_id, status) DO NOTHING")
}
