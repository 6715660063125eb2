package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindsync_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mindsync_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	moodEntriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mindsync_mood_entries_total",
		Help: "Count of mood check-ins recorded",
	})

	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindsync_exports_total",
		Help: "Count of data exports by format and result",
	}, []string{"format", "result"})

	authFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindsync_auth_failures_total",
		Help: "Count of failed authentication attempts by reason",
	}, []string{"reason"})

	auditWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindsync_audit_writes_total",
		Help: "Count of audit log writes by result",
	}, []string{"result"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveMoodEntry increments the mood check-in counter
func ObserveMoodEntry() {
	moodEntriesTotal.Inc()
}

// ObserveExport records an export attempt with a result label
func ObserveExport(format, result string) {
	exportsTotal.WithLabelValues(format, result).Inc()
}

// ObserveAuthFailure records a failed authentication attempt
func ObserveAuthFailure(reason string) {
	authFailuresTotal.WithLabelValues(reason).Inc()
}

// ObserveAuditWrite records an audit log write result
func ObserveAuditWrite(result string) {
	auditWritesTotal.WithLabelValues(result).Inc()
}
