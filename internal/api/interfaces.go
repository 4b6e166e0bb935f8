// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/suricata-ml/dashboard/internal/dashboard"
)

// DashboardHandler serves the page and the upload panel actions
type DashboardHandler interface {
	HandlePage(c echo.Context) error
	HandleSelectFile(c echo.Context) error
	HandleClearFile(c echo.Context) error
	HandleAnalyze(c echo.Context) error
	HandleReset(c echo.Context) error
}

// ResultHandler exposes the view state and the analysis result
type ResultHandler interface {
	HandleState(c echo.Context) error
	HandleResult(c echo.Context) error
	HandleResultMsgpack(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// SessionManager defines the interface for session management
// This allows mocking in tests
type SessionManager interface {
	Get(id string) (*dashboard.Controller, bool)
	GetOrCreate(id string) (*dashboard.Controller, bool)
}
