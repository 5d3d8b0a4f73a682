package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/puntodeoro/internal/domain/notification"
)

type NotificationLedger struct {
	mu      sync.RWMutex
	records map[notification.Key]notification.Record
	now     func() time.Time
}

func NewNotificationLedger() *NotificationLedger {
	return &NotificationLedger{
		records: make(map[notification.Key]notification.Record),
		now:     time.Now,
	}
}

func (l *NotificationLedger) WasNotified(_ context.Context, key notification.Key) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.records[key]
	return ok, nil
}

func (l *NotificationLedger) MarkNotified(_ context.Context, record notification.Record) (notification.MarkResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := record.Key()
	if _, ok := l.records[key]; ok {
		return notification.MarkAlreadyExists, nil
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = l.now()
	}
	l.records[key] = record
	return notification.MarkInserted, nil
}

func (l *NotificationLedger) PruneBefore(_ context.Context, cutoff time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var removed int64
	for key, record := range l.records {
		if record.CreatedAt.Before(cutoff) {
			delete(l.records, key)
			removed++
		}
	}
	return removed, nil
}

// Records returns a snapshot of the ledger.
func (l *NotificationLedger) Records() []notification.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]notification.Record, 0, len(l.records))
	for _, record := range l.records {
		out = append(out, record)
	}
	return out
}
