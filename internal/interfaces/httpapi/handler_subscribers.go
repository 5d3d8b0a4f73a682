package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/puntodeoro/internal/domain/subscriber"
	"github.com/riskibarqy/puntodeoro/internal/usecase"
)

type upsertSubscriberRequest struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Status string `json:"status" validate:"required,oneof=active cancelled expired"`
	Plan   string `json:"plan" validate:"omitempty,max=64"`
}

type subscriberDTO struct {
	UserID       int64     `json:"user_id"`
	Status       string    `json:"status"`
	Plan         string    `json:"plan"`
	SubscribedAt time.Time `json:"subscribed_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (h *Handler) UpsertSubscriber(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertSubscriber")
	defer span.End()

	if h.subscriptions == nil {
		writeError(ctx, w, fmt.Errorf("%w: subscription service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req upsertSubscriberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	sub, err := h.subscriptions.SetStatus(ctx, req.UserID, subscriber.Status(req.Status), req.Plan)
	if err != nil {
		h.logger.ErrorContext(ctx, "upsert subscriber failed", "user_id", req.UserID, "status", req.Status, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, subscriberDTO{
		UserID:       sub.UserID,
		Status:       string(sub.Status),
		Plan:         sub.Plan,
		SubscribedAt: sub.SubscribedAt,
		UpdatedAt:    sub.UpdatedAt,
	})
}
