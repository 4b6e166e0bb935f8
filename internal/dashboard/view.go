// Package dashboard holds the upload & results view of one visitor and the
// controller that drives it.
package dashboard

import (
	"errors"
	"strings"

	"github.com/suricata-ml/dashboard/internal/analyzer"
	"github.com/suricata-ml/dashboard/internal/models"
)

// RequiredSuffix is the literal, case-sensitive suffix accepted file names end with.
const RequiredSuffix = ".json"

// FallbackErrorMessage is shown when a failed analysis carries no backend message.
const FallbackErrorMessage = "Failed to process the file. Please check the format and try again."

var (
	// ErrBusy is returned for panel actions while a submission is in flight.
	ErrBusy = errors.New("analysis in progress")
	// ErrNotInUploadMode is returned for panel actions while results are shown.
	ErrNotInUploadMode = errors.New("upload panel is not active")
	// ErrClosed is returned when the dashboard's session has ended.
	ErrClosed = errors.New("dashboard session closed")
)

// Source tells how a candidate file reached the upload panel.
type Source string

const (
	SourcePicker Source = "picker"
	SourceDrop   Source = "drop"
)

// ParseSource maps a form value to a Source, defaulting to the file picker.
func ParseSource(s string) Source {
	if Source(s) == SourceDrop {
		return SourceDrop
	}
	return SourcePicker
}

func (s Source) rejectMessage() string {
	if s == SourceDrop {
		return "Please drop a valid eve.json file"
	}
	return "Please select a valid eve.json file"
}

// AcceptsName reports whether a file name carries the required suffix.
func AcceptsName(name string) bool {
	return strings.HasSuffix(name, RequiredSuffix)
}

// ErrorMessage turns a failed analysis into the message shown to the user.
func ErrorMessage(err error) string {
	var backendErr *analyzer.BackendError
	if errors.As(err, &backendErr) && backendErr.Message != "" {
		return backendErr.Message
	}
	return FallbackErrorMessage
}

// View is the state of one dashboard. It is not safe for concurrent use;
// Controller serializes access.
//
// Transitions that drop a stored file return it so the caller can release
// its bytes.
type View struct {
	state  models.ViewState
	file   *models.FileInfo
	result *models.AnalysisResult
	errMsg string
}

// NewView returns an empty view in upload mode.
func NewView() *View {
	return &View{state: models.ViewStateIdle}
}

func (v *View) State() models.ViewState { return v.state }
func (v *View) File() *models.FileInfo { return v.file }
func (v *View) Result() *models.AnalysisResult { return v.result }
func (v *View) Error() string { return v.errMsg }

func (v *View) panelActive() error {
	switch v.state {
	case models.ViewStateSubmitting:
		return ErrBusy
	case models.ViewStateShowingResult:
		return ErrNotInUploadMode
	}
	return nil
}

// SelectFile offers a candidate from the picker or a drop. A name without the
// required suffix clears the stored file and sets an error naming the format.
func (v *View) SelectFile(file *models.FileInfo, src Source) (*models.FileInfo, error) {
	if err := v.panelActive(); err != nil {
		return nil, err
	}

	prev := v.file
	if file == nil || !AcceptsName(file.Name) {
		v.file = nil
		v.errMsg = src.rejectMessage()
		v.state = models.ViewStateShowingError
		return prev, nil
	}

	v.file = file
	v.errMsg = ""
	v.state = models.ViewStateFileSelected
	if prev == file {
		return nil, nil
	}
	return prev, nil
}

// DragOver is the server-side counterpart of the browser's dragover event,
// which the page script handles without a request. It never changes the view.
func (v *View) DragOver() {}

// ClearSelection removes the stored file and leaves any error in place.
func (v *View) ClearSelection() (*models.FileInfo, error) {
	if err := v.panelActive(); err != nil {
		return nil, err
	}

	prev := v.file
	v.file = nil
	if v.errMsg != "" {
		v.state = models.ViewStateShowingError
	} else {
		v.state = models.ViewStateIdle
	}
	return prev, nil
}

// BeginSubmit enters the submitting state and hands out the stored file.
// It reports false, leaving the view untouched, when there is nothing to submit.
func (v *View) BeginSubmit() (*models.FileInfo, bool) {
	if v.file == nil || v.state == models.ViewStateSubmitting || v.state == models.ViewStateShowingResult {
		return nil, false
	}
	v.state = models.ViewStateSubmitting
	v.errMsg = ""
	return v.file, true
}

// CompleteSubmit shows result and discards the submitted file.
func (v *View) CompleteSubmit(result *models.AnalysisResult) *models.FileInfo {
	if v.state != models.ViewStateSubmitting {
		return nil
	}
	prev := v.file
	v.file = nil
	v.result = result
	v.state = models.ViewStateShowingResult
	return prev
}

// FailSubmit returns to the upload panel with msg. The file stays selected.
func (v *View) FailSubmit(msg string) {
	if v.state != models.ViewStateSubmitting {
		return
	}
	v.errMsg = msg
	v.state = models.ViewStateShowingError
}

// Reset clears the result, the stored file and the error.
func (v *View) Reset() (*models.FileInfo, error) {
	if v.state == models.ViewStateSubmitting {
		return nil, ErrBusy
	}
	prev := v.file
	v.file = nil
	v.result = nil
	v.errMsg = ""
	v.state = models.ViewStateIdle
	return prev, nil
}
