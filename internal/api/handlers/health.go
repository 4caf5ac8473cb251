// Package handlers implements HTTP handlers for the free-games-notifier API.
package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// LivenessMessage is the static body returned by the liveness probe.
const LivenessMessage = "free-games-notifier is running"

// Pinger reports whether the identifier store is usable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(s Pinger) *HealthHandler {
	return &HealthHandler{store: s}
}

// Healthz returns 200 if the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, LivenessMessage)
}

// Readyz returns 200 if the state directory is usable, 503 otherwise.
func (h *HealthHandler) Readyz(c echo.Context) error {
	if err := h.store.Ping(c.Request().Context()); err != nil {
		return c.JSON(
			http.StatusServiceUnavailable,
			StatusResponse{Status: "unavailable"},
		)
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}
