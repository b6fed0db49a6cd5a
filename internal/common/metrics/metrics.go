// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SeatClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seat_claims_total",
			Help: "Total number of seat claim attempts by outcome",
		},
		[]string{"outcome"},
	)

	StatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "application_status_transitions_total",
			Help: "Total number of application status transitions",
		},
		[]string{"from", "to"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "operation_duration_seconds",
			Help: "Duration of core operations in seconds",
		},
		[]string{"operation"},
	)

	OperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "operation_errors_total",
			Help: "Total number of failed operations by error code",
		},
		[]string{"operation", "error_code"},
	)

	ProgramCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "program_cache_requests_total",
			Help: "Program lookup cache requests by result",
		},
		[]string{"result"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"route", "method", "status"},
	)
)
