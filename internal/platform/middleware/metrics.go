package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/safetynet/alerts/internal/platform/apierror"
	"github.com/safetynet/alerts/internal/platform/metrics"
)

// Metrics counts requests and observes latency per route template, so
// /person/1 and /person/2 share a series.
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = apierror.NewBody(err).Status
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method

			m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
