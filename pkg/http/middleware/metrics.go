package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"route", "method", "status"},
	)

	regOnce sync.Once
)

// Metrics records per-route request counters and latency. Uses the Echo
// route template as the label to keep cardinality bounded.
func Metrics() echo.MiddlewareFunc {
	regOnce.Do(func() {
		prometheus.MustRegister(httpRequestsTotal, httpRequestDuration)
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}
			status := strconv.Itoa(c.Response().Status)
			method := c.Request().Method

			httpRequestsTotal.WithLabelValues(route, method, status).Inc()
			httpRequestDuration.WithLabelValues(route, method, status).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
