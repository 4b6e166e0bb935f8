// routes.go - Route registration helpers
// This file provides a clean way to register all routes
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suricata-ml/dashboard/internal/palette"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Sessions    SessionManager
	Palette     *palette.Palette
	Location    *time.Location
	BackendMode string
	Version     string
	Metrics     http.Handler
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Dashboard DashboardHandler
	Result    ResultHandler
	Metrics   http.Handler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.BackendMode),
		Dashboard: NewDashboardHandler(deps.Sessions, deps.Palette, deps.Location, deps.BackendMode, deps.Version),
		Result:    NewResultHandler(deps.Sessions),
		Metrics:   deps.Metrics,
	}
}

// RegisterRoutes registers all routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Dashboard page and upload panel
	e.GET("/", handlers.Dashboard.HandlePage)
	e.POST("/files", handlers.Dashboard.HandleSelectFile)
	e.POST("/files/clear", handlers.Dashboard.HandleClearFile)
	e.POST("/analyze", handlers.Dashboard.HandleAnalyze)
	e.POST("/reset", handlers.Dashboard.HandleReset)

	apiGroup := e.Group("/api")
	apiGroup.GET("/health", handlers.Health.HandleHealth)
	apiGroup.GET("/state", handlers.Result.HandleState)
	apiGroup.GET("/result", handlers.Result.HandleResult)
	apiGroup.GET("/result/msgpack", handlers.Result.HandleResultMsgpack)

	if handlers.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(handlers.Metrics))
	}
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
}
