package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamtube_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streamtube_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Session Metrics
	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamtube_registrations_total",
			Help: "Total number of registration attempts",
		},
		[]string{"outcome"},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamtube_logins_total",
			Help: "Total number of login attempts",
		},
		[]string{"outcome"},
	)

	TokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamtube_token_refreshes_total",
			Help: "Total number of refresh-token exchanges",
		},
		[]string{"outcome"},
	)

	// Upload Metrics
	MediaUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamtube_media_uploads_total",
			Help: "Total number of media uploads",
		},
		[]string{"kind", "outcome"},
	)

	MediaUploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "streamtube_media_upload_size_bytes",
			Help:    "Size of uploaded media files in bytes",
			Buckets: prometheus.ExponentialBuckets(64*1024, 2, 10), // 64KB to 32MB
		},
	)
)

// Outcome labels shared by the session counters.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
