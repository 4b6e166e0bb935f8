package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/suricata-ml/dashboard/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// FormField is the multipart field the backend reads the log from.
const FormField = "file"

// maxErrorBody caps how much of a failure response is read.
const maxErrorBody = 1 << 20

// HTTPAnalyzer posts files to the ML backend as multipart/form-data.
type HTTPAnalyzer struct {
	url    string
	client *http.Client
}

// NewHTTPAnalyzer creates an analyzer for the given endpoint.
// A zero timeout leaves the request unbounded.
func NewHTTPAnalyzer(url string, timeout time.Duration) *HTTPAnalyzer {
	return &HTTPAnalyzer{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Name identifies the backend mode.
func (a *HTTPAnalyzer) Name() string {
	return "http"
}

// Analyze streams content to the backend and decodes its summary.
func (a *HTTPAnalyzer) Analyze(ctx context.Context, name string, content io.Reader) (*models.AnalysisResult, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile(FormField, name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("building backend request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := a.client.Do(req)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("calling backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeBackendError(resp)
	}

	var result models.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding backend response: %w", err)
	}
	if result.ClassCounts == nil {
		result.ClassCounts = make(map[string]int)
	}

	return &result, nil
}

func decodeBackendError(resp *http.Response) error {
	backendErr := &BackendError{Status: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return backendErr
	}

	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		backendErr.Message = payload.Error
	}
	return backendErr
}
