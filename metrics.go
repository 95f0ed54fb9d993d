package i8n

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	translationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "i8n_translations_total",
			Help: "Total number of translation lookups by result source",
		},
		[]string{"source"},
	)

	fallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "i8n_fallbacks_total",
			Help: "Total number of lookups answered with the original sentence",
		},
		[]string{"kind"},
	)

	backendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "i8n_backend_requests_total",
			Help: "Total number of translation backend requests",
		},
		[]string{"backend", "status"},
	)

	backendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "i8n_backend_request_duration_seconds",
			Help:    "Duration of translation backend requests in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"backend", "status"},
	)
)

// recordBackendRequest records a backend call outcome.
func recordBackendRequest(kind BackendKind, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	backendRequestsTotal.WithLabelValues(kind.String(), status).Inc()
	backendRequestDuration.WithLabelValues(kind.String(), status).Observe(duration.Seconds())
}
