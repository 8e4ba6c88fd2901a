package dashboard

import (
	"github.com/shunt-io/shunt/internal/registry"
)

// ViewMode identifies which screen the dashboard is showing.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewHelp
	ViewConfirm
)

// ManifestSelectedMsg opens the detail view for a manifest.
type ManifestSelectedMsg struct {
	Manifest registry.Manifest
}

// BackToListMsg returns to the list view.
type BackToListMsg struct{}

// AssessCompleteMsg delivers a finished assessment.
type AssessCompleteMsg struct {
	ManifestID string
	Result     *registry.CachedStatus
}

// AssessErrorMsg reports an assessment that could not run.
type AssessErrorMsg struct {
	ManifestID string
	Err        error
}

// AssessCancelledMsg reports an assessment aborted by the user.
type AssessCancelledMsg struct {
	ManifestID string
}

// ApplyCompleteMsg delivers a finished reconcile run.
type ApplyCompleteMsg struct {
	ManifestID string
	Result     *registry.CachedStatus
}

// ApplyErrorMsg reports a reconcile run that could not start.
type ApplyErrorMsg struct {
	ManifestID string
	Err        error
}

// ApplyCancelledMsg reports a reconcile run aborted by the user.
type ApplyCancelledMsg struct {
	ManifestID string
}

// RefreshManifestCompleteMsg reports one manifest finishing during a
// refresh-all pass.
type RefreshManifestCompleteMsg struct {
	ManifestID string
	Index      int
	Total      int
	Result     *registry.CachedStatus
	Err        error
}

// RefreshCompleteMsg ends a refresh-all pass.
type RefreshCompleteMsg struct{}

// RefreshCancelledMsg aborts a refresh-all pass.
type RefreshCancelledMsg struct{}

// InitialStatusLoadedMsg delivers the cached statuses read at startup.
type InitialStatusLoadedMsg struct {
	Statuses map[string]registry.CachedStatus
}

// StatusCacheSavedMsg confirms that a status reached the cache file.
type StatusCacheSavedMsg struct {
	ManifestID string
}

// ErrorMsg shows the error banner.
type ErrorMsg struct {
	Message string
}

// ClearErrorMsg hides the error banner.
type ClearErrorMsg struct{}
