// handlers_dashboard.go - Dashboard page and upload panel handlers
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suricata-ml/dashboard/internal/dashboard"
	"github.com/suricata-ml/dashboard/internal/palette"
	"github.com/suricata-ml/dashboard/internal/results"
	"github.com/suricata-ml/dashboard/internal/web"
)

// PageData is passed to the dashboard template.
type PageData struct {
	Snapshot    dashboard.Snapshot
	Summary     *results.Summary
	FileSize    string
	BackendMode string
	Version     string
}

// DashboardHandlerImpl implements the DashboardHandler interface
type DashboardHandlerImpl struct {
	sessions    SessionManager
	palette     *palette.Palette
	location    *time.Location
	backendMode string
	version     string
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(sessions SessionManager, pal *palette.Palette, loc *time.Location, backendMode, version string) DashboardHandler {
	if pal == nil {
		pal = palette.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &DashboardHandlerImpl{
		sessions:    sessions,
		palette:     pal,
		location:    loc,
		backendMode: backendMode,
		version:     version,
	}
}

// HandlePage renders the dashboard in upload or results mode
func (h *DashboardHandlerImpl) HandlePage(c echo.Context) error {
	ctrl := resolveController(c, h.sessions)
	snap := ctrl.Snapshot()

	data := PageData{
		Snapshot:    snap,
		BackendMode: h.backendMode,
		Version:     h.version,
	}
	if snap.File != nil {
		data.FileSize = results.FormatSize(snap.File)
	}
	if snap.Result != nil {
		data.Summary = results.Build(snap.Result, h.palette, h.location)
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Render(http.StatusOK, web.DashboardTemplate, data)
}

// HandleSelectFile accepts a multipart "file" field from the picker or a drop
func (h *DashboardHandlerImpl) HandleSelectFile(c echo.Context) error {
	ctrl := resolveController(c, h.sessions)

	var (
		name    string
		content io.Reader = strings.NewReader("")
	)

	fh, err := c.FormFile("file")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			return NewBadRequestError("failed to read uploaded file", err)
		}
		defer f.Close()
		name = fh.Filename
		content = f
	case errors.Is(err, http.ErrMissingFile):
		// An empty drop is offered with no name and is rejected like any other.
	default:
		return NewBadRequestError("expected multipart form with a 'file' field", err)
	}

	src := dashboard.ParseSource(c.FormValue("source"))
	if err := ctrl.Select(name, content, src); err != nil {
		return h.fail(c, ctrl, err)
	}
	return h.respond(c, ctrl)
}

// HandleClearFile removes the selected file
func (h *DashboardHandlerImpl) HandleClearFile(c echo.Context) error {
	ctrl := resolveController(c, h.sessions)
	if err := ctrl.ClearSelection(); err != nil {
		return h.fail(c, ctrl, err)
	}
	return h.respond(c, ctrl)
}

// HandleAnalyze submits the selected file and waits for the backend.
// The backend call outlives a disconnecting client.
func (h *DashboardHandlerImpl) HandleAnalyze(c echo.Context) error {
	ctrl := resolveController(c, h.sessions)
	ctrl.Submit(context.WithoutCancel(c.Request().Context()))
	return h.respond(c, ctrl)
}

// HandleReset returns the dashboard to upload mode
func (h *DashboardHandlerImpl) HandleReset(c echo.Context) error {
	ctrl := resolveController(c, h.sessions)
	if err := ctrl.Reset(); err != nil {
		return h.fail(c, ctrl, err)
	}
	return h.respond(c, ctrl)
}

// respond sends the view snapshot to API clients and redirects form posts
// back to the page.
func (h *DashboardHandlerImpl) respond(c echo.Context, ctrl *dashboard.Controller) error {
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, ctrl.Snapshot())
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *DashboardHandlerImpl) fail(c echo.Context, ctrl *dashboard.Controller, err error) error {
	if errors.Is(err, dashboard.ErrBusy) || errors.Is(err, dashboard.ErrNotInUploadMode) || errors.Is(err, dashboard.ErrClosed) {
		if !wantsJSON(c) {
			return c.Redirect(http.StatusSeeOther, "/")
		}
		return NewConflictError(err.Error())
	}
	return NewInternalError("failed to update dashboard", err)
}
