// Package metrics registers the Prometheus collectors of the kanban tracker.
//
// All metrics are registered against the default Prometheus registry and are
// served on GET /metrics when METRICS_ENABLED is true.
//
// HTTP metrics are labelled by the Fiber route template (c.Route().Path, e.g.
// /api/cards/:id) rather than the raw URL so card ids do not create series.
// Organization names are never used as label values.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics, labelled by method, route template and status code.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kanban_http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kanban_http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
)

// Domain metrics.
//
// CardOperationsTotal has labels {operation, result}; operation is one of
// list, add, update, delete, items and result is one of ok, invalid,
// not_found, unauthorized, error.
//
// AuthEventsTotal has labels {event, result}; event is one of login, logout,
// register.
var (
	CardOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kanban_card_operations_total",
			Help: "Total number of card operations, by operation and result.",
		},
		[]string{"operation", "result"},
	)

	AuthEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kanban_auth_events_total",
			Help: "Total number of authentication events, by event and result.",
		},
		[]string{"event", "result"},
	)
)

// Result label values.
const (
	ResultOK           = "ok"
	ResultInvalid      = "invalid"
	ResultNotFound     = "not_found"
	ResultUnauthorized = "unauthorized"
	ResultError        = "error"
	ResultDuplicate    = "duplicate"
)

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// CardOperation increments the card operation counter.
func CardOperation(operation, result string) {
	CardOperationsTotal.WithLabelValues(operation, result).Inc()
}

// AuthEvent increments the authentication event counter.
func AuthEvent(event, result string) {
	AuthEventsTotal.WithLabelValues(event, result).Inc()
}
