package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestHTTPAnalyzer_Success(t *testing.T) {
	var gotName, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		file, header, err := r.FormFile(FormField)
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotName, gotBody = header.Filename, string(data)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SampleResult())
	}))
	defer srv.Close()

	a := NewHTTPAnalyzer(srv.URL, 0)
	result, err := a.Analyze(context.Background(), "eve.json", strings.NewReader(`{"alert":{}}`))
	require.NoError(t, err)

	assert.Equal(t, "eve.json", gotName)
	assert.Equal(t, `{"alert":{}}`, gotBody)
	assert.Equal(t, 156, result.TotalProcessed)
	assert.Equal(t, 28, result.ClassCounts["DoS"])
	require.Len(t, result.RecentEntries, 5)
	assert.Equal(t, "203.0.113.42", result.RecentEntries[1].SrcIP)
}

func TestHTTPAnalyzer_PropagatesTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prev)

	var traceparent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("Traceparent")
		io.Copy(io.Discard, r.Body)
		json.NewEncoder(w).Encode(SampleResult())
	}))
	defer srv.Close()

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "submit")
	defer span.End()

	_, err := NewHTTPAnalyzer(srv.URL, 0).Analyze(ctx, "eve.json", strings.NewReader("{}"))
	require.NoError(t, err)
	assert.Contains(t, traceparent, span.SpanContext().TraceID().String())
}

func TestHTTPAnalyzer_Failures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{name: "error field", status: http.StatusBadRequest, body: `{"error":"bad format"}`, wantMessage: "bad format"},
		{name: "server error with message", status: http.StatusInternalServerError, body: `{"error":"model not loaded"}`, wantMessage: "model not loaded"},
		{name: "empty body", status: http.StatusInternalServerError, body: "", wantMessage: ""},
		{name: "non-json body", status: http.StatusBadGateway, body: "<html>bad gateway</html>", wantMessage: ""},
		{name: "json without error field", status: http.StatusBadRequest, body: `{"detail":"nope"}`, wantMessage: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewHTTPAnalyzer(srv.URL, 0).Analyze(context.Background(), "eve.json", strings.NewReader("{}"))
			require.Error(t, err)

			var backendErr *BackendError
			require.True(t, errors.As(err, &backendErr), "expected BackendError, got %T", err)
			assert.Equal(t, tt.status, backendErr.Status)
			assert.Equal(t, tt.wantMessage, backendErr.Message)
		})
	}
}

func TestHTTPAnalyzer_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPAnalyzer(url, time.Second).Analyze(context.Background(), "eve.json", strings.NewReader("{}"))
	require.Error(t, err)

	var backendErr *BackendError
	assert.False(t, errors.As(err, &backendErr))
}

func TestHTTPAnalyzer_MalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "not json")
	}))
	defer srv.Close()

	_, err := NewHTTPAnalyzer(srv.URL, 0).Analyze(context.Background(), "eve.json", strings.NewReader("{}"))
	assert.Error(t, err)
}

func TestSimulatedAnalyzer(t *testing.T) {
	a := NewSimulatedAnalyzer(10 * time.Millisecond)
	assert.Equal(t, "simulated", a.Name())

	result, err := a.Analyze(context.Background(), "eve.json", strings.NewReader("{}"))
	require.NoError(t, err)
	assert.Equal(t, 156, result.TotalProcessed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewSimulatedAnalyzer(time.Hour).Analyze(ctx, "eve.json", strings.NewReader("{}"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackendError_Error(t *testing.T) {
	assert.Equal(t, "backend returned status 500", (&BackendError{Status: 500}).Error())
	assert.Equal(t, "backend returned status 400: bad format", (&BackendError{Status: 400, Message: "bad format"}).Error())
}
