// handlers_result.go - View state and result export handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suricata-ml/dashboard/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// ResultHandlerImpl implements the ResultHandler interface
type ResultHandlerImpl struct {
	sessions SessionManager
}

// NewResultHandler creates a new result handler
func NewResultHandler(sessions SessionManager) ResultHandler {
	return &ResultHandlerImpl{sessions: sessions}
}

// HandleState returns the JSON snapshot of the visitor's dashboard
func (h *ResultHandlerImpl) HandleState(c echo.Context) error {
	ctrl := resolveController(c, h.sessions)
	return c.JSON(http.StatusOK, ctrl.Snapshot())
}

// HandleResult returns the current analysis result as JSON
func (h *ResultHandlerImpl) HandleResult(c echo.Context) error {
	result, err := h.currentResult(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// HandleResultMsgpack returns the current analysis result as MessagePack
func (h *ResultHandlerImpl) HandleResultMsgpack(c echo.Context) error {
	result, err := h.currentResult(c)
	if err != nil {
		return err
	}

	data, err := msgpack.Marshal(result)
	if err != nil {
		return NewInternalError("failed to encode result", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="analysis.msgpack"`)
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// currentResult looks up the visitor's result without starting a session.
func (h *ResultHandlerImpl) currentResult(c echo.Context) (*models.AnalysisResult, error) {
	id := sessionID(c)
	ctrl, ok := h.sessions.Get(id)
	if !ok {
		return nil, NewNotFoundError("session", id)
	}

	result := ctrl.Snapshot().Result
	if result == nil {
		return nil, NewNotFoundError("result", id)
	}
	return result, nil
}
