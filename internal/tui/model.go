package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shunt-io/shunt/internal/config"
	"github.com/shunt-io/shunt/internal/engine"
	"github.com/shunt-io/shunt/internal/model"
)

// ResourceStartMsg indicates a resource has begun reconciling.
type ResourceStartMsg struct {
	Address model.Address
	Time    time.Time
}

// ResourceCompleteMsg reports a finished reconciliation.
type ResourceCompleteMsg struct {
	Result model.ResourceResult
}

// RunCompleteMsg carries the final summary once every resource has a
// terminal status.
type RunCompleteMsg struct {
	Summary model.RunSummary
}

type tickMsg struct{}

// Model contains the Bubbletea state for shunt's apply progress view.
type Model struct {
	manifest       *config.Manifest
	plan           *engine.ExecutionPlan
	resources      map[string]model.ResourceResult
	order          []string
	run            *model.RunSummary
	total          int
	completed      int
	finished       bool
	cancelled      bool
	nonInteractive bool
}

// NewModel constructs a TUI model for the given manifest and plan.
func NewModel(manifest *config.Manifest, plan *engine.ExecutionPlan, nonInteractive bool) Model {
	m := Model{
		manifest:       manifest,
		plan:           plan,
		resources:      make(map[string]model.ResourceResult),
		order:          make([]string, 0),
		nonInteractive: nonInteractive,
	}

	if plan != nil {
		for _, level := range plan.Levels {
			for _, address := range level.Addresses {
				if _, exists := m.resources[address]; !exists {
					addr, _ := model.ParseAddress(address)
					m.resources[address] = model.ResourceResult{Address: addr, Status: model.StatusPending}
					m.order = append(m.order, address)
					m.total++
				}
			}
		}
	}

	return m
}

// Init starts the Bubbletea program.
func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

// TotalResources returns the number of resources tracked by the model.
func (m Model) TotalResources() int {
	return m.total
}

// CompletedResources returns the number of resources with a terminal
// status.
func (m Model) CompletedResources() int {
	return m.completed
}

// IsFinished reports whether the run has completed.
func (m Model) IsFinished() bool {
	return m.finished
}

// IsCancelled reports whether the user interrupted the run.
func (m Model) IsCancelled() bool {
	return m.cancelled
}

// Summary returns the final run summary, nil until the run completes.
func (m Model) Summary() *model.RunSummary {
	return m.run
}

func (m *Model) ensureResource(address string) {
	if address == "" {
		return
	}
	if _, exists := m.resources[address]; !exists {
		addr, _ := model.ParseAddress(address)
		m.resources[address] = model.ResourceResult{Address: addr, Status: model.StatusPending}
		m.order = append(m.order, address)
		m.total++
	}
}

func (m *Model) markFinishedIfComplete() {
	if m.total > 0 && m.completed >= m.total {
		m.finished = true
	}
}

func isTerminalStatus(status string) bool {
	switch status {
	case model.StatusSuccess, model.StatusSkipped, model.StatusFailed, model.StatusBlocked,
		model.StatusWouldCreate, model.StatusWouldUpdate, model.StatusWouldDelete:
		return true
	}
	return false
}
