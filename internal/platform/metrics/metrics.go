// Package metrics exposes the bot's Prometheus collectors. All recorders are
// safe on a nil *Metrics so components can run without a registry in tests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "puntodeoro"

type Metrics struct {
	registry *prometheus.Registry

	CacheLookups     *prometheus.CounterVec
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	BreakerState     *prometheus.GaugeVec

	AlertTicks        *prometheus.CounterVec
	AlertTickDuration prometheus.Histogram
	AlertsDispatched  *prometheus.CounterVec
	LedgerPruned      prometheus.Counter

	ChatEvents *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "TTL cache lookups by cache and result (hit, miss, stale, refresh_error).",
			},
			[]string{"cache", "result"},
		),
		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Requests to external APIs by client, endpoint and outcome.",
			},
			[]string{"client", "endpoint", "outcome"},
		),
		UpstreamLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Latency of external API requests.",
				Buckets:   prometheus.ExponentialBuckets(0.025, 2, 10),
			},
			[]string{"client", "endpoint"},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_open",
				Help:      "1 while the named circuit breaker is not closed.",
			},
			[]string{"breaker"},
		),
		AlertTicks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alert_ticks_total",
				Help:      "Reconciliation ticks by outcome.",
			},
			[]string{"outcome"},
		),
		AlertTickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "alert_tick_duration_seconds",
				Help:      "Wall time of one reconciliation tick.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
			},
		),
		AlertsDispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_total",
				Help:      "Planned alerts by status and outcome (sent, already_notified, send_failed, ledger_failed).",
			},
			[]string{"status", "outcome"},
		),
		LedgerPruned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_pruned_rows_total",
				Help:      "Notification ledger rows removed by retention.",
			},
		),
		ChatEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_events_total",
				Help:      "Chat events handled by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.CacheLookups,
		m.UpstreamRequests,
		m.UpstreamLatency,
		m.BreakerState,
		m.AlertTicks,
		m.AlertTickDuration,
		m.AlertsDispatched,
		m.LedgerPruned,
		m.ChatEvents,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RecordCacheLookup(cache, result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(cache, result).Inc()
}

func (m *Metrics) RecordUpstream(client, endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(client, endpoint, outcome).Inc()
	m.UpstreamLatency.WithLabelValues(client, endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) SetBreakerOpen(name string, open bool) {
	if m == nil {
		return
	}
	value := 0.0
	if open {
		value = 1
	}
	m.BreakerState.WithLabelValues(name).Set(value)
}

func (m *Metrics) RecordTick(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.AlertTicks.WithLabelValues(outcome).Inc()
	m.AlertTickDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) RecordAlert(status, outcome string) {
	if m == nil {
		return
	}
	m.AlertsDispatched.WithLabelValues(status, outcome).Inc()
}

func (m *Metrics) RecordPruned(rows int64) {
	if m == nil || rows <= 0 {
		return
	}
	m.LedgerPruned.Add(float64(rows))
}

func (m *Metrics) RecordChatEvent(kind, outcome string) {
	if m == nil {
		return
	}
	m.ChatEvents.WithLabelValues(kind, outcome).Inc()
}
