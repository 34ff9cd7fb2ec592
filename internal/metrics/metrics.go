// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "trademind"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	GateChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guardian_gate_checks_total",
		Help:      "Trade Guardian step advance attempts by step and outcome.",
	}, []string{"step", "passed"})

	TradesOpened = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trades_opened_total",
		Help:      "Trades opened.",
	})

	GuardianCommits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guardian_commits_total",
		Help:      "Approved assessments committed to the journal, by outcome.",
	}, []string{"outcome"})

	TradesClosed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trades_closed_total",
		Help:      "Trades closed.",
	})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Fetch cache lookups by entity and result (fresh, stale, miss, error).",
	}, []string{"entity", "result"})

	LiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_calendar_connections",
		Help:      "Open live calendar websockets.",
	})

	StaleLoads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "live_calendar_stale_loads_total",
		Help:      "Calendar loads discarded because a newer request superseded them.",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "journal_events_published_total",
		Help:      "Journal events published by type and outcome.",
	}, []string{"event_type", "outcome"})
)

// ObserveGate records one gate evaluation
func ObserveGate(step int, passed bool) {
	GateChecks.WithLabelValues(strconv.Itoa(step), strconv.FormatBool(passed)).Inc()
}

// ObserveRequest records one served HTTP request
func ObserveRequest(route, method string, code int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	HTTPDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
