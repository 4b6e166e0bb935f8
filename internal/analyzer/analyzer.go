// Package analyzer talks to the external ML backend that classifies eve.json logs.
package analyzer

import (
	"context"
	"fmt"
	"io"

	"github.com/suricata-ml/dashboard/internal/models"
)

// Analyzer submits one log file and returns the backend's classification summary.
type Analyzer interface {
	Analyze(ctx context.Context, name string, content io.Reader) (*models.AnalysisResult, error)
	Name() string
}

// BackendError is returned when the backend answers with a non-2xx status.
// Message holds the backend's "error" field and may be empty.
type BackendError struct {
	Status  int
	Message string
}

// Error implements the error interface
func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}
