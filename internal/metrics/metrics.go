package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StageEmbedding   = "embedding"
	StageVectorQuery = "vector_query"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "similarity_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "similarity_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "similarity_upstream_request_duration_seconds",
			Help:    "Embedding provider and vector index call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
		[]string{"stage", "status"},
	)

	MatchesReturned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "similarity_matches_returned_total",
			Help: "Matches returned to callers after score filtering",
		},
	)

	MatchesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "similarity_matches_dropped_total",
			Help: "Matches discarded for scoring below min_score (top_k truncation not counted)",
		},
	)
)

// ObserveUpstream records one external call for stage.
func ObserveUpstream(stage string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	UpstreamRequestDuration.WithLabelValues(stage, status).Observe(time.Since(start).Seconds())
}
