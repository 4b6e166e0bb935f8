package models

// ViewState is the state of a dashboard view.
type ViewState string

const (
	ViewStateIdle          ViewState = "idle"
	ViewStateFileSelected  ViewState = "fileSelected"
	ViewStateSubmitting    ViewState = "submitting"
	ViewStateShowingResult ViewState = "showingResult"
	ViewStateShowingError  ViewState = "showingError"
)

// UploadMode reports whether the view renders the upload panel.
func (s ViewState) UploadMode() bool {
	return s != ViewStateShowingResult
}
