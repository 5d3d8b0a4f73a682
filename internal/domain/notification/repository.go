package notification

import (
	"context"
	"time"
)

// Ledger is the append-only record of delivered alerts.
type Ledger interface {
	WasNotified(ctx context.Context, key Key) (bool, error)
	MarkNotified(ctx context.Context, record Record) (MarkResult, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
