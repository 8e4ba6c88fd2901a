package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shunt-io/shunt/internal/model"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, nil
	case ResourceStartMsg:
		key := msg.Address.String()
		if msg.Address.IsZero() {
			return m, nil
		}
		m.ensureResource(key)
		res := m.resources[key]
		res.Address = msg.Address
		res.Status = model.StatusRunning
		m.resources[key] = res
		return m, nil
	case ResourceCompleteMsg:
		if msg.Result.Address.IsZero() {
			return m, nil
		}
		key := msg.Result.Address.String()
		m.ensureResource(key)
		existing := m.resources[key]
		previouslyTerminal := isTerminalStatus(existing.Status)
		m.resources[key] = msg.Result
		if !previouslyTerminal {
			m.completed++
			m.markFinishedIfComplete()
		}
		return m, nil
	case RunCompleteMsg:
		summary := msg.Summary
		m.run = &summary
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.finished = true
			return m, tea.Quit
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}
