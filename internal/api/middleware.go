// middleware.go - Request throttling for panel actions
package api

import (
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimit throttles POST requests per client IP. Page loads, state polling
// and static assets are never limited. Rates below one per second still allow
// a burst of one request.
func RateLimit(perSecond float64) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:  rate.Limit(perSecond),
		Burst: max(1, int(math.Ceil(perSecond))),
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().Method != http.MethodPost
		},
		Store: store,
	})
}
