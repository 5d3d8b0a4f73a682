package app

import (
	"context"

	"github.com/riskibarqy/puntodeoro/internal/platform/logging"
)

// logNotifier stands in for the chat transport when Telegram is disabled, so
// ticks still run end to end and fill the ledger.
type logNotifier struct {
	logger *logging.Logger
}

func newLogNotifier(logger *logging.Logger) *logNotifier {
	return &logNotifier{logger: logger.Named("notifier")}
}

func (n *logNotifier) Send(ctx context.Context, recipientID int64, text string) error {
	n.logger.InfoContext(ctx, "alert delivered to log", "recipient_id", recipientID, "text", text)
	return nil
}
