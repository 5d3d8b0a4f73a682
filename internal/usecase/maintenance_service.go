package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/puntodeoro/internal/domain/notification"
	"github.com/riskibarqy/puntodeoro/internal/platform/logging"
)

// PruneRecorder is satisfied by *metrics.Metrics.
type PruneRecorder interface {
	RecordPruned(rows int64)
}

type MaintenanceService struct {
	ledger    notification.Ledger
	retention time.Duration
	recorder  PruneRecorder
	logger    *logging.Logger
	now       func() time.Time
}

func NewMaintenanceService(ledger notification.Ledger, retention time.Duration, recorder PruneRecorder, logger *logging.Logger) *MaintenanceService {
	if logger == nil {
		logger = logging.Default()
	}
	if retention <= 0 {
		retention = notification.DefaultRetention
	}
	return &MaintenanceService{
		ledger:    ledger,
		retention: retention,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
	}
}

// PruneNotifications drops ledger rows older than the retention window.
func (s *MaintenanceService) PruneNotifications(ctx context.Context) (int64, error) {
	ctx, span := startJobSpan(ctx, "usecase.MaintenanceService.PruneNotifications")
	defer span.End()

	cutoff := s.now().UTC().Add(-s.retention)
	deleted, err := s.ledger.PruneBefore(ctx, cutoff)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("prune notifications before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	if s.recorder != nil {
		s.recorder.RecordPruned(deleted)
	}
	s.logger.InfoContext(ctx, "notification ledger pruned", "deleted", deleted, "cutoff", cutoff)
	return deleted, nil
}
