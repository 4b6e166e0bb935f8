// session_cookie.go - Visitor session resolution
package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/suricata-ml/dashboard/internal/dashboard"
)

// SessionCookieName is the cookie carrying the visitor's session ID.
const SessionCookieName = "dashboard_session"

func sessionID(c echo.Context) string {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// resolveController returns the visitor's controller, starting a session and
// setting the cookie when none exists yet.
func resolveController(c echo.Context, sessions SessionManager) *dashboard.Controller {
	ctrl, created := sessions.GetOrCreate(sessionID(c))
	if created {
		c.SetCookie(&http.Cookie{
			Name:     SessionCookieName,
			Value:    ctrl.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return ctrl
}

func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
