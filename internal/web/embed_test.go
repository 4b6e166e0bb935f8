package web

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageSnapshot struct {
	State      string
	File       *struct{ Name string }
	Error      string
	Processing bool
	CanSubmit  bool
}

type pageData struct {
	Snapshot pageSnapshot
	FileSize string
	Summary  interface{}
}

func TestRenderer_UploadMode(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	data := pageData{
		Snapshot: pageSnapshot{
			State:     "fileSelected",
			File:      &struct{ Name string }{Name: "eve.json"},
			CanSubmit: true,
		},
		FileSize: "1.46 KB",
	}
	require.NoError(t, r.Render(&buf, DashboardTemplate, data, nil))

	html := buf.String()
	assert.Contains(t, html, "Upload EVE JSON Log File")
	assert.Contains(t, html, "eve.json")
	assert.Contains(t, html, "1.46 KB")
	assert.Contains(t, html, "Run Analysis")
	assert.NotContains(t, html, "Analyze Another File")
}

func TestRenderer_ProcessingDisablesSubmit(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	data := pageData{
		Snapshot: pageSnapshot{
			State:      "submitting",
			File:       &struct{ Name string }{Name: "eve.json"},
			Processing: true,
		},
	}
	require.NoError(t, r.Render(&buf, DashboardTemplate, data, nil))

	html := buf.String()
	assert.Contains(t, html, "Processing...")
	assert.Contains(t, html, "disabled")
	assert.NotContains(t, html, "Remove file")
}

func TestRenderer_ShowsError(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	data := pageData{
		Snapshot: pageSnapshot{State: "showingError", Error: "bad format"},
	}
	require.NoError(t, r.Render(&buf, DashboardTemplate, data, nil))
	assert.Contains(t, buf.String(), "bad format")
}

func TestRegisterStaticRoutes(t *testing.T) {
	e := echo.New()
	require.NoError(t, RegisterStaticRoutes(e))

	tests := []struct {
		path string
		code int
	}{
		{"/static/dashboard.css", http.StatusOK},
		{"/static/dashboard.js", http.StatusOK},
		{"/static/missing.js", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
