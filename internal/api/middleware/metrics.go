// Package middleware provides Echo middleware for free-games-notifier.
package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/donaldgifford/free-games-notifier/internal/metrics"
)

// unmatchedRoute labels requests that hit no registered route so arbitrary
// URLs cannot grow the label set.
const unmatchedRoute = "unmatched"

// probeGauges maps probe paths to their up/down gauge. Probe and scrape
// paths are kept out of the request histogram and counter.
var probeGauges = map[string]prometheus.Gauge{
	"/healthz": metrics.HealthzUp,
	"/readyz":  metrics.ReadyzUp,
}

func isOperationalPath(path string) bool {
	if path == "/metrics" {
		return true
	}
	_, ok := probeGauges[path]
	return ok
}

// Metrics returns Echo middleware that records request duration and status
// per route template.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := routeLabel(c)

			if isOperationalPath(route) {
				err := next(c)
				if gauge, ok := probeGauges[route]; ok {
					gauge.Set(boolToFloat(isSuccess(c.Response().Status)))
				}
				return err
			}

			start := time.Now()
			err := next(c)
			elapsed := time.Since(start).Seconds()

			labels := []string{
				c.Request().Method,
				route,
				strconv.Itoa(c.Response().Status),
			}
			metrics.HTTPRequestDuration.WithLabelValues(labels...).Observe(elapsed)
			metrics.HTTPRequestsTotal.WithLabelValues(labels...).Inc()

			return err
		}
	}
}

// routeLabel returns the matched route template, the raw path for probes
// served outside the router, or unmatchedRoute.
func routeLabel(c echo.Context) string {
	if p := c.Path(); p != "" && p != "/*" {
		return p
	}
	if raw := c.Request().URL.Path; isOperationalPath(raw) {
		return raw
	}
	return unmatchedRoute
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
