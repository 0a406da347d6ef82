package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "backoffice",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	requestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "backoffice",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "HTTP requests currently being served.",
		},
	)
)

// Metrics records request count, latency and in-flight requests per route.
func Metrics() gin.HandlerFunc {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestDuration, requestTotal, requestsInFlight)
	})

	return func(c *gin.Context) {
		start := time.Now()
		requestsInFlight.Inc()
		defer requestsInFlight.Dec()

		c.Next()

		// Unmatched routes share one label so random paths cannot blow up cardinality.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		}

		requestDuration.With(labels).Observe(time.Since(start).Seconds())
		requestTotal.With(labels).Inc()
	}
}
