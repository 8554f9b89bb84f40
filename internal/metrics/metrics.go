package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cafe_frontdesk_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cafe_frontdesk_http_request_duration_seconds",
			Help:    "Duration of HTTP requests served",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	backendCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cafe_frontdesk_backend_calls_total",
			Help: "Calls made to the cafe backend API",
		},
		[]string{"operation", "outcome"},
	)

	backendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cafe_frontdesk_backend_call_duration_seconds",
			Help:    "Latency of cafe backend API calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	workflowEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cafe_frontdesk_workflow_events_total",
			Help: "Order workflow outcomes (submitted, failed, transitions)",
		},
		[]string{"workflow", "event"},
	)
)

// UnmatchedPath labels requests no route matched, so scans of random URLs
// share one series.
const UnmatchedPath = "unmatched"

// Middleware records request counts and latency for every echo route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			path := c.Path()
			if path == "" {
				path = UnmatchedPath
			}
			status := strconv.Itoa(c.Response().Status)
			httpRequestsTotal.WithLabelValues(c.Request().Method, path, status).Inc()
			httpRequestDuration.WithLabelValues(c.Request().Method, path, status).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// ObserveBackendCall records one backend API call.
func ObserveBackendCall(operation string, started time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	backendCalls.WithLabelValues(operation, outcome).Inc()
	backendDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// RecordWorkflowEvent counts a workflow outcome.
func RecordWorkflowEvent(workflow, event string) {
	workflowEvents.WithLabelValues(workflow, event).Inc()
}
