// internal/metrics/metrics.go
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "petart_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "petart_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	SettingsSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "petart_settings_saves_total",
			Help: "Settings save attempts by outcome.",
		},
		[]string{"outcome"},
	)

	GenerationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "petart_generations_created_total",
			Help: "Generation requests accepted from the storefront.",
		},
	)

	ShopifyAPICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "petart_shopify_api_calls_total",
			Help: "Admin API calls by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
)

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
