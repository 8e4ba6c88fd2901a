package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/shunt-io/shunt/internal/model"
	"github.com/shunt-io/shunt/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	title := titleStyle.Render(fmt.Sprintf("shunt • %s", m.title()))
	sections = append(sections, title)

	progress := components.NewProgress(m.total).View(m.completed)
	sections = append(sections, sectionStyle.Render("Progress"), progress)

	list := components.NewResourceList(m.order, m.resources)
	groups := list.Grouped()
	if len(groups) > 0 {
		sections = append(sections, sectionStyle.Render("Resources"))
		sections = append(sections, renderDeviceGroups(groups))
	}

	summary := components.NewSummary(components.SummaryData{
		Total:     m.total,
		Completed: m.completed,
		Finished:  m.finished,
		Cancelled: m.cancelled,
		Run:       m.run,
	}).View()
	if strings.TrimSpace(summary) != "" {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(summary))
	}

	if errs := renderErrorTail(list.Entries()); errs != "" {
		sections = append(sections, sectionStyle.Render("Errors"), errs)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderDeviceGroups(groups []components.DeviceGroup) string {
	var lines []string
	for _, group := range groups {
		lines = append(lines, deviceStyle.Render(group.Device))
		for _, entry := range group.Entries {
			res := entry.Result
			line := fmt.Sprintf("  %s %s", StatusIcon(res.Status), group.LocalAddress(entry))
			if strings.TrimSpace(res.Message) != "" {
				line = fmt.Sprintf("%s — %s", line, res.Message)
			}
			if res.Duration > 0 {
				line = fmt.Sprintf("%s (%s)", line, res.Duration.Truncate(10*time.Millisecond))
			}
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// renderErrorTail lists the failed resources with their error detail so
// the cause survives after the per-row message scrolls out of view.
func renderErrorTail(entries []components.ResourceEntry) string {
	var lines []string
	for _, entry := range entries {
		res := entry.Result
		if res.Status != model.StatusFailed {
			continue
		}
		detail := res.Message
		if res.Error != nil {
			detail = res.Error.Error()
		}
		lines = append(lines, failureStyle.Render("✗")+fmt.Sprintf(" %s: %s", entry.Address, detail))
	}
	return strings.Join(lines, "\n")
}

func (m Model) title() string {
	if m.manifest != nil && strings.TrimSpace(m.manifest.Name) != "" {
		return m.manifest.Name
	}
	return "Run"
}

// StatusIcon returns the glyph representing a resource status.
func StatusIcon(status string) string {
	switch status {
	case model.StatusSuccess:
		return successStyle.Render("✓")
	case model.StatusRunning:
		return runningStyle.Render("⏳")
	case model.StatusFailed:
		return failureStyle.Render("✗")
	case model.StatusSkipped:
		return skippedStyle.Render("=")
	case model.StatusBlocked:
		return blockedStyle.Render("⊘")
	case model.StatusWouldCreate:
		return pendingStyle.Render("✱")
	case model.StatusWouldUpdate:
		return pendingStyle.Render("↻")
	case model.StatusWouldDelete:
		return pendingStyle.Render("−")
	default:
		return pendingStyle.Render("…")
	}
}
