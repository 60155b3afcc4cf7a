// Package observability provides metrics and tracing for the application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ripple_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// MediaUploads counts media host uploads by outcome.
	MediaUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_media_uploads_total",
		Help: "Total number of media host uploads by outcome",
	}, []string{"outcome"})

	// SessionsIssued counts session pairs issued by flow (signup, login, refresh).
	SessionsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_sessions_issued_total",
		Help: "Total number of session token pairs issued by flow",
	}, []string{"flow"})
)

// ObserveQuery records the latency of a database query since start.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
