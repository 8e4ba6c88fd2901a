package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/shunt-io/shunt/internal/registry"
)

// View renders the current model state.
func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewHelp:
		return m.renderHelpView()
	case ViewConfirm:
		return m.renderConfirmView()
	default:
		return m.renderListView()
	}
}

func (m Model) renderListView() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var content strings.Builder

	content.WriteString(m.renderHeader())
	content.WriteString("\n")

	if m.showError {
		content.WriteString(m.renderErrorBanner())
		content.WriteString("\n")
	}

	content.WriteString(m.renderManifestList())
	content.WriteString("\n")

	content.WriteString(m.renderFooter())

	return content.String()
}

// renderHeader shows the title, the status tally and refresh progress.
func (m Model) renderHeader() string {
	title := titleStyle.Render("🔀 Shunt Dashboard")

	counts := m.CountByStatus()
	summary := fmt.Sprintf(
		"%s %d  %s %d  %s %d  %s %d",
		m.statusIcon(registry.StatusSynced), counts[registry.StatusSynced],
		m.statusIcon(registry.StatusDrift), counts[registry.StatusDrift],
		m.statusIcon(registry.StatusFailed), counts[registry.StatusFailed],
		m.statusIcon(registry.StatusUnknown), counts[registry.StatusUnknown],
	)

	if m.refreshing {
		summary += fmt.Sprintf("  %s Assessing %d/%d",
			m.spinner.View(),
			m.refreshProgress,
			m.refreshTotal,
		)
	}

	headerContent := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		summary,
	)

	return headerStyle.Render(headerContent)
}

func (m Model) renderManifestList() string {
	if len(m.manifests) == 0 {
		return m.renderEmptyState()
	}

	var items []string
	visibleHeight := m.listViewportHeight()

	start := m.scrollOffset
	end := start + visibleHeight
	if end > len(m.manifests) {
		end = len(m.manifests)
	}

	for i := start; i < end; i++ {
		items = append(items, m.renderManifestItem(i, i == m.cursor))
	}

	if start > 0 {
		items = append([]string{lipgloss.NewStyle().Foreground(mutedColor).Render("▲ More above")}, items...)
	}
	if end < len(m.manifests) {
		items = append(items, lipgloss.NewStyle().Foreground(mutedColor).Render("▼ More below"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (m Model) renderManifestItem(index int, selected bool) string {
	manifest := m.manifests[index]

	icon := m.statusIcon(manifest.Status)
	if m.IsLoading(manifest.ID) {
		icon = m.spinner.View()
	}

	statusStr := GetStatusStyle(manifest.Status.String()).Render(icon)

	number := fmt.Sprintf("%d.", index+1)

	name := manifest.Name
	if name == "" {
		name = manifest.ID
	}

	desc := manifest.Description
	if len(desc) > 60 {
		desc = desc[:57] + "..."
	}
	if desc == "" {
		desc = lipgloss.NewStyle().Foreground(mutedColor).Render("No description")
	}

	lastRun := FormatLastRun(manifest.LastRun)

	line1 := fmt.Sprintf("%s %s %s", statusStr, number, lipgloss.NewStyle().Bold(true).Render(name))
	line2 := fmt.Sprintf("   %s", desc)
	line3 := fmt.Sprintf("   %s", lipgloss.NewStyle().Foreground(mutedColor).Render("Last assessed: "+lastRun))

	content := lipgloss.JoinVertical(lipgloss.Left, line1, line2, line3)

	if selected {
		return selectedItemStyle.Render(content)
	}
	return itemStyle.Render(content)
}

func (m Model) renderEmptyState() string {
	message := `No manifests registered yet.

To register one, use:
  shunt registry add <manifest-path>`

	return emptyStateStyle.Render(message)
}

func (m Model) renderFooter() string {
	hints := []string{
		"↑/↓: navigate",
		"enter: select",
		"r: assess all",
		"?: help",
	}

	if m.showError {
		hints = append(hints, "x: dismiss error")
	}

	hints = append(hints, "q: quit")

	return footerStyle.Render(strings.Join(hints, "  •  "))
}

func (m Model) renderErrorBanner() string {
	return errorBannerStyle.Render(m.errorMsg)
}

// statusIcon honours the Unicode toggle when picking a status glyph.
func (m Model) statusIcon(status registry.ManifestStatus) string {
	if m.useUnicode {
		return status.Icon()
	}
	return status.IconFallback()
}

// FormatLastRun formats a timestamp as a human-readable relative time.
func FormatLastRun(t time.Time) string {
	if t.IsZero() {
		return "Never"
	}

	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("Jan 2, 2006")
	}
}

func (m Model) renderDetailView() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	selected, _, ok := m.GetManifestByID(m.selectedID)
	if !ok {
		return "Manifest not found"
	}

	var content strings.Builder

	name := selected.Name
	if name == "" {
		name = selected.ID
	}
	header := titleStyle.Render(fmt.Sprintf("📋 %s", name))
	content.WriteString(header)
	content.WriteString("\n\n")

	if m.showError {
		content.WriteString(m.renderErrorBanner())
		content.WriteString("\n\n")
	}

	statusLine := fmt.Sprintf("%s Status: %s",
		GetStatusStyle(selected.Status.String()).Render(m.statusIcon(selected.Status)),
		lipgloss.NewStyle().Bold(true).Render(selected.Status.String()))
	content.WriteString(statusLine)
	content.WriteString("\n\n")

	metaStyle := lipgloss.NewStyle().Foreground(mutedColor)
	content.WriteString(lipgloss.NewStyle().Bold(true).Render("Metadata"))
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("  ID: %s\n", selected.ID))
	content.WriteString(fmt.Sprintf("  Path: %s\n", selected.Path))
	content.WriteString(fmt.Sprintf("  Registered: %s\n", selected.RegisteredAt.Format("Jan 2, 2006 15:04")))
	if !selected.LastRun.IsZero() {
		content.WriteString(fmt.Sprintf("  Last Run: %s\n", FormatLastRun(selected.LastRun)))
	}
	content.WriteString("\n")

	if selected.Description != "" {
		content.WriteString(lipgloss.NewStyle().Bold(true).Render("Description"))
		content.WriteString("\n")
		content.WriteString(fmt.Sprintf("  %s\n", selected.Description))
		content.WriteString("\n")
	}

	if selected.LastResult != nil {
		content.WriteString(lipgloss.NewStyle().Bold(true).Render("Last Assessment"))
		content.WriteString("\n")
		content.WriteString(fmt.Sprintf("  Summary: %s\n", selected.LastResult.Summary))
		content.WriteString(fmt.Sprintf("  Resources: %d\n", selected.LastResult.ResourceCount))

		if len(selected.LastResult.FailedResources) > 0 {
			content.WriteString("\n")
			content.WriteString(lipgloss.NewStyle().Bold(true).Foreground(errorColor).Render("Failed Resources"))
			content.WriteString("\n")
			for _, address := range selected.LastResult.FailedResources {
				content.WriteString(fmt.Sprintf("  - %s\n", address))
			}
		}
		content.WriteString("\n")
	}

	if m.IsLoading(selected.ID) {
		if op, ok := m.operations[selected.ID]; ok {
			content.WriteString("\n")
			opMsg := fmt.Sprintf("%s %s in progress...", m.spinner.View(), op.Type)
			content.WriteString(lipgloss.NewStyle().Foreground(primaryColor).Render(opMsg))
			content.WriteString("\n")
		}
	}

	hints := []string{
		"r: assess",
		"a: apply",
		"esc: back",
		"?: help",
		"q: quit",
	}
	footer := footerStyle.Render(strings.Join(hints, "  •  "))

	contentHeight := m.height - 4
	lines := strings.Split(content.String(), "\n")

	if len(lines) > contentHeight {
		lines = lines[:contentHeight]
		content.Reset()
		content.WriteString(strings.Join(lines, "\n"))
		content.WriteString("\n")
		content.WriteString(metaStyle.Render("... (content truncated)"))
		content.WriteString("\n")
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		content.String(),
		"",
		footer,
	)
}

func (m Model) renderHelpView() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	title := titleStyle.Render("❓ Shunt Dashboard Help")

	helpContent := `
List View:
  ↑/↓, j/k      Navigate up/down
  1-9           Jump to manifest by number
  Enter         View manifest details
  r             Assess all manifests
  ?             Toggle this help
  q, Ctrl+C     Quit

Detail View:
  r             Re-assess this manifest
  a             Apply the manifest (with confirmation)
  Esc           Back to list
  ?             Toggle this help
  q, Ctrl+C     Quit

Status Indicators:
  🟢 Synced     Devices match the declared state
  🟡 Drift      Resources are out of sync
  🔴 Failed     Assessment failed or resources errored
  ⚪ Unknown    Not assessed yet

Tips:
  • Statuses persist between sessions in the status cache
  • Failed and drifted manifests sort to the top
  • Apply re-assesses the manifest once it finishes
  • Esc during an operation offers to cancel it
`

	helpText := lipgloss.NewStyle().
		Padding(1, 2).
		Render(helpContent)

	footer := footerStyle.Render("Press ? or Esc to close")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		helpText,
		footer,
	)
}

func (m Model) renderConfirmView() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	message := m.confirmMessage
	if message == "" {
		message = "Confirm action?"
	}
	if m.confirmAction == "apply" {
		message += "\n\nThis will reconfigure devices."
	}
	message = "⚠️  " + message

	dialogStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(warningColor).
		Padding(1, 2).
		Width(50).
		Align(lipgloss.Center)

	dialog := dialogStyle.Render(
		lipgloss.JoinVertical(
			lipgloss.Center,
			message,
			"",
			lipgloss.NewStyle().Foreground(mutedColor).Render("y = Yes    n = No    Esc = Cancel"),
		),
	)

	centerStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center)

	return centerStyle.Render(dialog)
}
