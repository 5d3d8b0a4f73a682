package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/puntodeoro/internal/usecase"
)

type alertTickDTO struct {
	Favorites       int   `json:"favorites"`
	Tournaments     int   `json:"tournaments"`
	MatchesScanned  int   `json:"matches_scanned"`
	StaleSkipped    int   `json:"stale_skipped"`
	Planned         int   `json:"planned"`
	AlreadyNotified int   `json:"already_notified"`
	Sent            int   `json:"sent"`
	SendFailed      int   `json:"send_failed"`
	LedgerFailed    int   `json:"ledger_failed"`
	DurationMs      int64 `json:"duration_ms"`
}

func (h *Handler) RunAlertsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunAlertsJob")
	defer span.End()

	if h.alerts == nil {
		writeError(ctx, w, fmt.Errorf("%w: alert service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.alerts.RunTick(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run alerts job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, alertTickDTO{
		Favorites:       result.Favorites,
		Tournaments:     result.Tournaments,
		MatchesScanned:  result.MatchesScanned,
		StaleSkipped:    result.StaleSkipped,
		Planned:         result.Planned,
		AlreadyNotified: result.AlreadyNotified,
		Sent:            result.Sent,
		SendFailed:      result.SendFailed,
		LedgerFailed:    result.LedgerFailed,
		DurationMs:      result.Duration.Milliseconds(),
	})
}

func (h *Handler) RunPruneNotificationsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunPruneNotificationsJob")
	defer span.End()

	if h.maintenance == nil {
		writeError(ctx, w, fmt.Errorf("%w: maintenance service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	deleted, err := h.maintenance.PruneNotifications(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run prune notifications job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int64{"deleted": deleted})
}
