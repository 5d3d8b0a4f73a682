package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metricsHandler http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/alerts", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunAlertsJob)))
	mux.Handle("POST /v1/internal/jobs/prune-notifications", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunPruneNotificationsJob)))
	mux.Handle("POST /v1/internal/subscribers", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.UpsertSubscriber)))
}
