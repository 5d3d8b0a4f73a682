package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/riskibarqy/puntodeoro/internal/domain/subscriber"
	"github.com/riskibarqy/puntodeoro/internal/platform/logging"
	"github.com/riskibarqy/puntodeoro/internal/usecase"
)

// AlertRunner runs one reconciliation tick on demand.
type AlertRunner interface {
	RunTick(ctx context.Context) (usecase.TickResult, error)
}

type NotificationPruner interface {
	PruneNotifications(ctx context.Context) (int64, error)
}

type SubscriptionWriter interface {
	SetStatus(ctx context.Context, userID int64, status subscriber.Status, plan string) (subscriber.Subscriber, error)
}

type Handler struct {
	alerts        AlertRunner
	maintenance   NotificationPruner
	subscriptions SubscriptionWriter
	logger        *logging.Logger
	validator     *validator.Validate
}

func NewHandler(alerts AlertRunner, maintenance NotificationPruner, subscriptions SubscriptionWriter, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		alerts:        alerts,
		maintenance:   maintenance,
		subscriptions: subscriptions,
		logger:        logger,
		validator:     validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON decodes an optional body; an empty body leaves target untouched.
func decodeJSON(r *http.Request, target any) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}
