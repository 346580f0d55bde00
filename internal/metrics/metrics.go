package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InvocationsTotal counts finished shortcut invocations by outcome status.
	InvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortcutd_invocations_total",
			Help: "Total number of shortcut invocations by outcome status",
		},
		[]string{"status"},
	)

	// InvocationDuration tracks shortcut wall-clock run time in seconds.
	InvocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shortcutd_invocation_duration_seconds",
			Help:    "Shortcut execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300},
		},
		[]string{"status"},
	)

	// InvocationsInFlight tracks the number of currently running shortcuts.
	InvocationsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shortcutd_invocations_in_flight",
			Help: "Number of shortcut invocations currently in flight",
		},
	)

	// OutputTruncations counts captured streams that exceeded the output cap.
	OutputTruncations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shortcutd_output_truncations_total",
			Help: "Total number of captured output streams that were truncated",
		},
	)

	// HTTPRequests counts total HTTP requests.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortcutd_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPDuration tracks HTTP request duration.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shortcutd_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
)
