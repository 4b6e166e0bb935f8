// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version     string
	backendMode string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, backendMode string) HealthHandler {
	return &HealthHandlerImpl{
		version:     version,
		backendMode: backendMode,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"version":     h.version,
		"backendMode": h.backendMode,
	})
}
