package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shunt-io/shunt/internal/registry"
)

// Model drives the interactive registry dashboard.
type Model struct {
	manifests   []registry.Manifest
	registry    *registry.Registry
	statusCache *registry.StatusCache
	service     ManifestService

	// UI state
	viewMode     ViewMode
	cursor       int
	selectedID   string
	scrollOffset int

	spinner spinner.Model

	// Operation state
	loading       map[string]bool
	operations    map[string]Operation
	operationCtxs map[string]context.CancelFunc
	errors        map[string]string
	showError     bool
	errorMsg      string

	// Refresh-all state
	refreshing      bool
	refreshProgress int
	refreshTotal    int

	// Confirmation state
	confirmAction   string
	confirmManifest string
	confirmMessage  string

	width  int
	height int

	useUnicode bool
}

// Operation tracks an in-flight async run for one manifest.
type Operation struct {
	Type       string // "assess" or "apply"
	ManifestID string
	StartedAt  time.Time
}

// NewModel builds the dashboard over the registered manifests, seeding
// each manifest's status from the cache.
func NewModel(manifests []registry.Manifest, reg *registry.Registry, cache *registry.StatusCache, svc ManifestService) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	m := Model{
		manifests:     manifests,
		registry:      reg,
		statusCache:   cache,
		service:       svc,
		viewMode:      ViewList,
		spinner:       s,
		loading:       make(map[string]bool),
		operations:    make(map[string]Operation),
		operationCtxs: make(map[string]context.CancelFunc),
		errors:        make(map[string]string),
		useUnicode:    true,
		width:         80,
		height:        24,
	}

	for i := range m.manifests {
		if cached, ok := cache.Get(m.manifests[i].ID); ok {
			m.manifests[i].Status = cached.Status
			m.manifests[i].LastRun = cached.LastRun
			m.manifests[i].LastResult = &cached
		} else {
			m.manifests[i].Status = registry.StatusUnknown
		}
	}

	m.sortManifests()

	return m
}

// Init starts the spinner and re-reads the cache in the background.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
	}

	if len(m.manifests) > 0 {
		cmds = append(cmds, loadInitialStatusCmd(m.manifests, m.statusCache))
	}

	return tea.Batch(cmds...)
}

// sortManifests orders manifests by urgency: failed > drift > synced >
// unknown.
func (m *Model) sortManifests() {
	sort.SliceStable(m.manifests, func(i, j int) bool {
		return statusPriority(m.manifests[i].Status) < statusPriority(m.manifests[j].Status)
	})
}

// statusPriority returns the sort rank for a status (lower sorts first).
func statusPriority(status registry.ManifestStatus) int {
	switch status {
	case registry.StatusFailed:
		return 0
	case registry.StatusDrift:
		return 1
	case registry.StatusSynced:
		return 2
	default:
		return 3
	}
}

// CountByStatus returns how many manifests are in each status.
func (m *Model) CountByStatus() map[registry.ManifestStatus]int {
	counts := make(map[registry.ManifestStatus]int)
	for _, manifest := range m.manifests {
		counts[manifest.Status]++
	}
	return counts
}

// GetSelectedManifest returns the manifest under the cursor.
func (m *Model) GetSelectedManifest() (registry.Manifest, bool) {
	if m.cursor < 0 || m.cursor >= len(m.manifests) {
		return registry.Manifest{}, false
	}
	return m.manifests[m.cursor], true
}

// GetManifestByID returns a manifest and its position in the list.
func (m *Model) GetManifestByID(id string) (registry.Manifest, int, bool) {
	for i, manifest := range m.manifests {
		if manifest.ID == id {
			return manifest, i, true
		}
	}
	return registry.Manifest{}, -1, false
}

// UpdateManifestStatus overwrites a manifest's status and last-run time.
func (m *Model) UpdateManifestStatus(id string, status registry.ManifestStatus, lastRun time.Time) {
	for i := range m.manifests {
		if m.manifests[i].ID == id {
			m.manifests[i].Status = status
			m.manifests[i].LastRun = lastRun
			break
		}
	}
}

// applyCachedStatus copies an assessment outcome onto a manifest so the
// detail view can show the summary and failed resources.
func (m *Model) applyCachedStatus(id string, status registry.CachedStatus) {
	for i := range m.manifests {
		if m.manifests[i].ID == id {
			cached := status
			m.manifests[i].Status = cached.Status
			m.manifests[i].LastRun = cached.LastRun
			m.manifests[i].LastResult = &cached
			break
		}
	}
}

// finishOperation clears the in-flight bookkeeping for a manifest.
func (m *Model) finishOperation(id string) {
	delete(m.loading, id)
	delete(m.operations, id)
	delete(m.operationCtxs, id)
}

// MoveCursorUp moves the cursor up, wrapping at the top.
func (m *Model) MoveCursorUp() {
	if len(m.manifests) == 0 {
		return
	}
	m.cursor--
	if m.cursor < 0 {
		m.cursor = len(m.manifests) - 1
	}
	m.ensureCursorVisible()
}

// MoveCursorDown moves the cursor down, wrapping at the bottom.
func (m *Model) MoveCursorDown() {
	if len(m.manifests) == 0 {
		return
	}
	m.cursor++
	if m.cursor >= len(m.manifests) {
		m.cursor = 0
	}
	m.ensureCursorVisible()
}

// SetCursor jumps to an index; out-of-range values are ignored.
func (m *Model) SetCursor(index int) {
	if index >= 0 && index < len(m.manifests) {
		m.cursor = index
		m.ensureCursorVisible()
	}
}

// listViewportHeight is how many list rows fit between header and footer.
func (m Model) listViewportHeight() int {
	h := m.height - 10
	if h < 1 {
		h = 1
	}
	return h
}

// ensureCursorVisible scrolls the list window so the cursor stays on
// screen.
func (m *Model) ensureCursorVisible() {
	visible := m.listViewportHeight()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	} else if m.cursor >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor - visible + 1
	}
}

// IsLoading reports whether a manifest has a run in flight.
func (m *Model) IsLoading(id string) bool {
	return m.loading[id]
}

// HasError reports whether a manifest's last run errored.
func (m *Model) HasError(id string) bool {
	_, ok := m.errors[id]
	return ok
}

// GetError returns the recorded error message for a manifest.
func (m *Model) GetError(id string) string {
	return m.errors[id]
}

// ClearError forgets the recorded error for a manifest.
func (m *Model) ClearError(id string) {
	delete(m.errors, id)
}

// GetViewMode returns the current view mode.
func (m *Model) GetViewMode() ViewMode {
	return m.viewMode
}

// IsRefreshing reports whether a refresh-all pass is running.
func (m *Model) IsRefreshing() bool {
	return m.refreshing
}

// GetRefreshTotal returns how many manifests the current refresh covers.
func (m *Model) GetRefreshTotal() int {
	return m.refreshTotal
}
