package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records request counts and latencies on reg.
func Metrics(reg prometheus.Registerer) fiber.Handler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	reg.MustRegister(requestCounter, requestLatency)

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		route := routePath(c)
		// Label values outlive the request; fasthttp reuses the method buffer.
		method := utils.CopyString(c.Method())
		status := strconv.Itoa(responseStatus(c, err))

		requestCounter.WithLabelValues(method, route, status).Inc()
		requestLatency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())

		return err
	}
}
