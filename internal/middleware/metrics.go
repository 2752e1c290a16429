package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	problemSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "problem_submissions_total",
			Help: "Total number of complaint submissions",
		},
		[]string{"category", "priority"},
	)

	problemStatusChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "problem_status_changes_total",
			Help: "Total number of complaint status transitions",
		},
		[]string{"from", "to"},
	)

	analyzerCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_calls_total",
			Help: "Total number of image analyzer calls",
		},
		[]string{"status"},
	)

	analyzerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analyzer_duration_seconds",
			Help:    "Image analyzer call duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)
)

// MetricsMiddleware collects Prometheus metrics for every HTTP request.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		httpRequestsInFlight.Inc()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		c.Next()

		httpRequestsInFlight.Dec()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}

// RecordSubmission counts a complaint submission by category and priority.
func RecordSubmission(category, priority string) {
	problemSubmissionsTotal.WithLabelValues(category, priority).Inc()
}

// RecordStatusChange counts a complaint status transition.
func RecordStatusChange(from, to string) {
	problemStatusChangesTotal.WithLabelValues(from, to).Inc()
}

// RecordAnalyzerCall records an image analyzer round-trip.
func RecordAnalyzerCall(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	analyzerCallsTotal.WithLabelValues(status).Inc()
	analyzerDuration.Observe(duration.Seconds())
}
