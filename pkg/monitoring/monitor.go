package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// TutorRequests counts model provider calls by call site and outcome.
	TutorRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutor_provider_requests_total",
			Help: "Model provider calls made by the tutoring pipeline",
		},
		[]string{"call", "outcome"},
	)

	TutorProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tutor_provider_duration_seconds",
			Help:    "Latency of model provider calls",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"call"},
	)

	PIIRedactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutor_pii_redactions_total",
			Help: "PII substitutions applied to outgoing student messages",
		},
		[]string{"category"},
	)

	SummaryFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tutor_summary_fallbacks_total",
			Help: "Session summaries that fell back to default values",
		},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			TutorRequests,
			TutorProviderLatency,
			PIIRedactions,
			SummaryFallbacks,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
