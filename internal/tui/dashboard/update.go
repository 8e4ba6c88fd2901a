package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shunt-io/shunt/internal/registry"
)

// Update handles incoming messages and advances the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		ApplyMaxWidth(m.width)

		const minWidth = 80
		const minHeight = 24
		if m.width < minWidth || m.height < minHeight {
			m.showError = true
			m.errorMsg = fmt.Sprintf("Terminal too small (%dx%d). Minimum size: %dx%d",
				m.width, m.height, minWidth, minHeight)
		} else if m.showError && strings.HasPrefix(m.errorMsg, "Terminal too small") {
			m.showError = false
			m.errorMsg = ""
		}

		m.ensureCursorVisible()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case InitialStatusLoadedMsg:
		for id, status := range msg.Statuses {
			m.applyCachedStatus(id, status)
		}
		m.sortManifests()
		return m, nil

	case AssessCompleteMsg:
		m.applyCachedStatus(msg.ManifestID, *msg.Result)
		m.finishOperation(msg.ManifestID)
		m.sortManifests()
		return m, saveStatusToCacheCmd(m.statusCache, msg.ManifestID, *msg.Result)

	case AssessErrorMsg:
		m.UpdateManifestStatus(msg.ManifestID, registry.StatusFailed, time.Now())
		m.finishOperation(msg.ManifestID)
		m.errors[msg.ManifestID] = msg.Err.Error()
		m.showError = true
		m.errorMsg = fmt.Sprintf("Assessment failed: %s", msg.Err.Error())
		return m, nil

	case AssessCancelledMsg:
		m.finishOperation(msg.ManifestID)
		return m, nil

	case ApplyCompleteMsg:
		m.applyCachedStatus(msg.ManifestID, *msg.Result)
		m.finishOperation(msg.ManifestID)
		m.sortManifests()

		cmds := []tea.Cmd{
			saveStatusToCacheCmd(m.statusCache, msg.ManifestID, *msg.Result),
		}

		// Re-assess after apply so the status reflects the devices,
		// not just the run outcome.
		if manifest, _, ok := m.GetManifestByID(msg.ManifestID); ok && m.service != nil {
			ctx, cancel := context.WithCancel(context.Background())
			m.operationCtxs[msg.ManifestID] = cancel
			m.loading[msg.ManifestID] = true
			m.operations[msg.ManifestID] = Operation{Type: "assess", ManifestID: msg.ManifestID, StartedAt: time.Now()}
			cmds = append(cmds, assessCmd(ctx, manifest, m.service))
		}

		return m, tea.Batch(cmds...)

	case ApplyErrorMsg:
		m.UpdateManifestStatus(msg.ManifestID, registry.StatusFailed, time.Now())
		m.finishOperation(msg.ManifestID)
		m.errors[msg.ManifestID] = msg.Err.Error()
		m.showError = true
		m.errorMsg = fmt.Sprintf("Apply failed: %s", msg.Err.Error())
		return m, nil

	case ApplyCancelledMsg:
		m.finishOperation(msg.ManifestID)
		return m, nil

	case RefreshManifestCompleteMsg:
		m.refreshProgress = msg.Index + 1
		m.finishOperation(msg.ManifestID)

		var cmds []tea.Cmd
		if msg.Result != nil {
			m.applyCachedStatus(msg.ManifestID, *msg.Result)
			cmds = append(cmds, saveStatusToCacheCmd(m.statusCache, msg.ManifestID, *msg.Result))
		} else if msg.Err != nil {
			m.UpdateManifestStatus(msg.ManifestID, registry.StatusFailed, time.Now())
			m.errors[msg.ManifestID] = msg.Err.Error()
		}

		if m.refreshProgress >= m.refreshTotal {
			cmds = append(cmds, func() tea.Msg {
				return RefreshCompleteMsg{}
			})
		}
		return m, tea.Batch(cmds...)

	case RefreshCompleteMsg:
		m.refreshing = false
		m.refreshProgress = 0
		m.refreshTotal = 0
		m.sortManifests()
		return m, nil

	case RefreshCancelledMsg:
		m.refreshing = false
		m.refreshProgress = 0
		m.refreshTotal = 0
		return m, nil

	case ManifestSelectedMsg:
		m.selectedID = msg.Manifest.ID
		m.viewMode = ViewDetail
		return m, nil

	case BackToListMsg:
		m.viewMode = ViewList
		m.selectedID = ""
		return m, nil

	case ErrorMsg:
		m.showError = true
		m.errorMsg = msg.Message
		return m, nil

	case ClearErrorMsg:
		m.showError = false
		m.errorMsg = ""
		return m, nil
	}

	return m, nil
}

// handleKeyPress routes keyboard input based on the current view mode.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewHelp:
		return m.handleHelpKeys(msg)
	case ViewConfirm:
		return m.handleConfirmKeys(msg)
	default:
		return m, nil
	}
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		m.MoveCursorUp()
		return m, nil

	case "down", "j":
		m.MoveCursorDown()
		return m, nil

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		index := int(msg.String()[0] - '1')
		if index < len(m.manifests) {
			m.SetCursor(index)
		}
		return m, nil

	case "enter", " ":
		if selected, ok := m.GetSelectedManifest(); ok {
			m.selectedID = selected.ID
			m.viewMode = ViewDetail
		}
		return m, nil

	case "r":
		return m.startRefreshAll()

	case "?":
		m.viewMode = ViewHelp
		return m, nil

	case "x", "esc":
		if m.showError {
			m.showError = false
			m.errorMsg = ""
		}
		return m, nil
	}

	return m, nil
}

// startRefreshAll launches one assessment per manifest in parallel.
func (m Model) startRefreshAll() (tea.Model, tea.Cmd) {
	if m.refreshing || len(m.manifests) == 0 || m.service == nil {
		return m, nil
	}

	m.refreshing = true
	m.refreshProgress = 0
	m.refreshTotal = len(m.manifests)

	cmds := []tea.Cmd{m.spinner.Tick}
	for i, manifest := range m.manifests {
		ctx, cancel := context.WithCancel(context.Background())
		m.operationCtxs[manifest.ID] = cancel
		m.loading[manifest.ID] = true

		cmds = append(cmds, refreshSingleCmd(ctx, manifest, m.service, i, len(m.manifests)))
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc", "backspace":
		// An operation in flight gets a cancel prompt instead of
		// silently navigating away.
		if m.loading[m.selectedID] {
			if op, ok := m.operations[m.selectedID]; ok {
				m.confirmAction = fmt.Sprintf("cancel_%s", op.Type)
				m.confirmManifest = m.selectedID
				m.confirmMessage = fmt.Sprintf("Cancel %s operation?", op.Type)
				m.viewMode = ViewConfirm
				return m, nil
			}
		}
		m.viewMode = ViewList
		m.selectedID = ""
		return m, nil

	case "r":
		selected, _, ok := m.GetManifestByID(m.selectedID)
		if !ok || m.loading[selected.ID] || m.service == nil {
			return m, nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		m.operationCtxs[selected.ID] = cancel
		m.loading[selected.ID] = true
		m.operations[selected.ID] = Operation{
			Type:       "assess",
			ManifestID: selected.ID,
			StartedAt:  time.Now(),
		}

		return m, assessCmd(ctx, selected, m.service)

	case "a":
		selected, _, ok := m.GetManifestByID(m.selectedID)
		if !ok || m.loading[selected.ID] || m.service == nil {
			return m, nil
		}

		m.confirmAction = "apply"
		m.confirmManifest = selected.ID
		m.confirmMessage = fmt.Sprintf("Apply '%s'?", valueOr(selected.Name, selected.ID))
		m.viewMode = ViewConfirm
		return m, nil

	case "x":
		if m.showError {
			m.showError = false
			m.errorMsg = ""
		}
		return m, nil

	case "?":
		m.viewMode = ViewHelp
		return m, nil
	}

	return m, nil
}

func (m Model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "?", "esc", "q":
		if m.selectedID != "" {
			m.viewMode = ViewDetail
		} else {
			m.viewMode = ViewList
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		action := m.confirmAction
		manifestID := m.confirmManifest

		m.confirmAction = ""
		m.confirmManifest = ""
		m.confirmMessage = ""

		switch action {
		case "apply":
			selected, _, ok := m.GetManifestByID(manifestID)
			if !ok || m.service == nil {
				m.viewMode = ViewList
				return m, nil
			}

			ctx, cancel := context.WithCancel(context.Background())
			m.operationCtxs[selected.ID] = cancel
			m.loading[selected.ID] = true
			m.operations[selected.ID] = Operation{
				Type:       "apply",
				ManifestID: selected.ID,
				StartedAt:  time.Now(),
			}

			m.viewMode = ViewDetail
			return m, applyCmd(ctx, selected, m.service)

		case "cancel_assess", "cancel_apply":
			if cancel, ok := m.operationCtxs[manifestID]; ok {
				cancel()
			}
			m.finishOperation(manifestID)

			m.viewMode = ViewDetail
			return m, nil

		default:
			m.viewMode = ViewDetail
			return m, nil
		}

	case "n", "N", "esc":
		m.confirmAction = ""
		m.confirmManifest = ""
		m.confirmMessage = ""

		if m.selectedID != "" {
			m.viewMode = ViewDetail
		} else {
			m.viewMode = ViewList
		}
		return m, nil
	}
	return m, nil
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
