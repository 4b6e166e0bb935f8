package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/suricata-ml/dashboard/internal/analyzer"
	"github.com/suricata-ml/dashboard/internal/models"
)

// FakeAnalyzer records calls and answers with a canned result or error.
type FakeAnalyzer struct {
	Result *models.AnalysisResult
	Err    error

	// Gate, when non-nil, blocks Analyze until it is closed.
	Gate chan struct{}
	// Started receives one value per call once the content has been read.
	Started chan struct{}

	mu     sync.Mutex
	calls  int
	names  []string
	bodies []string
}

// NewFakeAnalyzer returns a fake that succeeds with result.
func NewFakeAnalyzer(result *models.AnalysisResult) *FakeAnalyzer {
	return &FakeAnalyzer{Result: result}
}

func (f *FakeAnalyzer) Name() string {
	return "fake"
}

func (f *FakeAnalyzer) Analyze(ctx context.Context, name string, content io.Reader) (*models.AnalysisResult, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.calls++
	f.names = append(f.names, name)
	f.bodies = append(f.bodies, string(data))
	f.mu.Unlock()

	if f.Started != nil {
		f.Started <- struct{}{}
	}
	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if f.Err != nil {
		return nil, f.Err
	}
	return f.Result, nil
}

// Calls returns how many times Analyze was invoked.
func (f *FakeAnalyzer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastBody returns the content of the most recent call.
func (f *FakeAnalyzer) LastBody() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.bodies) == 0 {
		return ""
	}
	return f.bodies[len(f.bodies)-1]
}

// LastName returns the file name of the most recent call.
func (f *FakeAnalyzer) LastName() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.names) == 0 {
		return ""
	}
	return f.names[len(f.names)-1]
}

var _ analyzer.Analyzer = (*FakeAnalyzer)(nil)
