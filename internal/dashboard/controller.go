package dashboard

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/suricata-ml/dashboard/internal/analyzer"
	"github.com/suricata-ml/dashboard/internal/models"
	"github.com/suricata-ml/dashboard/internal/storage"
)

// Recorder receives dashboard events for metrics.
type Recorder interface {
	FileOffered(src Source, accepted bool)
	AnalysisFinished(backend string, err error, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) FileOffered(Source, bool) {}
func (nopRecorder) AnalysisFinished(string, error, time.Duration) {}

// Snapshot is a consistent copy of a view for rendering.
type Snapshot struct {
	State      models.ViewState       `json:"state"`
	File       *models.FileInfo       `json:"file,omitempty"`
	FileSizeKB float64                `json:"fileSizeKB,omitempty"`
	Result     *models.AnalysisResult `json:"result,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Processing bool                   `json:"processing"`
	CanSubmit  bool                   `json:"canSubmit"`
}

// Controller owns one visitor's View and serializes every transition on it.
// The backend call runs without holding the lock.
type Controller struct {
	id       string
	mu       sync.Mutex
	view     *View
	store    storage.Store
	analyzer analyzer.Analyzer
	recorder Recorder
	closed   bool
}

// NewController creates a controller with an empty view.
func NewController(id string, store storage.Store, a analyzer.Analyzer, rec Recorder) *Controller {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Controller{
		id:       id,
		view:     NewView(),
		store:    store,
		analyzer: a,
		recorder: rec,
	}
}

// ID returns the session ID this controller belongs to.
func (c *Controller) ID() string {
	return c.id
}

// Select offers a candidate file. Rejected names never reach the store.
func (c *Controller) Select(name string, r io.Reader, src Source) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if err := c.view.panelActive(); err != nil {
		return err
	}

	candidate := &models.FileInfo{Name: name}
	accepted := AcceptsName(name)
	if accepted {
		info, err := c.store.Save(name, r)
		if err != nil {
			return fmt.Errorf("storing selected file: %w", err)
		}
		candidate = info
	}
	c.recorder.FileOffered(src, accepted)

	prev, err := c.view.SelectFile(candidate, src)
	if err != nil {
		return err
	}
	c.release(prev)
	return nil
}

// ClearSelection removes the stored file.
func (c *Controller) ClearSelection() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, err := c.view.ClearSelection()
	if err != nil {
		return err
	}
	c.release(prev)
	return nil
}

// Submit sends the stored file to the backend once. It reports false, without
// touching the view or the backend, when no file is stored or a submission is
// already running.
func (c *Controller) Submit(ctx context.Context) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	file, ok := c.view.BeginSubmit()
	c.mu.Unlock()
	if !ok {
		return false
	}

	start := time.Now()
	fmt.Printf("[Analyze %s] Submitting %s (%d bytes) to %s backend\n", shortID(c.id), file.Name, file.Size, c.analyzer.Name())

	result, err := c.analyze(ctx, file)
	elapsed := time.Since(start)
	c.recorder.AnalysisFinished(c.analyzer.Name(), err, elapsed)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		if c.closed {
			c.release(c.view.File())
		}
	}()

	if err != nil {
		fmt.Printf("[Analyze %s] ERROR after %v: %v\n", shortID(c.id), elapsed, err)
		c.view.FailSubmit(ErrorMessage(err))
		return true
	}

	fmt.Printf("[Analyze %s] Complete in %v: %d entries, %d categories\n", shortID(c.id), elapsed, result.TotalProcessed, len(result.ClassCounts))
	c.release(c.view.CompleteSubmit(result))
	return true
}

func (c *Controller) analyze(ctx context.Context, file *models.FileInfo) (*models.AnalysisResult, error) {
	rc, err := c.store.Open(file.ID)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return c.analyzer.Analyze(ctx, file.Name, rc)
}

// Reset returns the view to an empty upload panel.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, err := c.view.Reset()
	if err != nil {
		return err
	}
	c.release(prev)
	return nil
}

// Snapshot returns a copy of the current view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		State:      c.view.State(),
		File:       c.view.File(),
		Result:     c.view.Result(),
		Error:      c.view.Error(),
		Processing: c.view.State() == models.ViewStateSubmitting,
	}
	if s.File != nil {
		s.FileSizeKB = s.File.SizeKB()
		s.CanSubmit = !s.Processing
	}
	return s
}

// Close releases the stored file, if any. Used when a session expires; a
// running submission releases it when it finishes.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.view.State() == models.ViewStateSubmitting {
		return
	}
	c.release(c.view.File())
}

func (c *Controller) release(file *models.FileInfo) {
	if file == nil || file.ID == "" {
		return
	}
	if err := c.store.Delete(file.ID); err != nil {
		fmt.Printf("[Dashboard %s] Warning: failed to release %s: %v\n", shortID(c.id), file.ID, err)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
