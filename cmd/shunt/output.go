package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/shunt-io/shunt/internal/model"
	"github.com/shunt-io/shunt/internal/registry"
)

// changeCounts splits a dry-run summary into the per-action numbers the
// plan line reports. Real runs count through the summary itself.
type changeCounts struct {
	creates   int
	updates   int
	deletes   int
	unchanged int
	failed    int
	blocked   int
}

func countChanges(summary *model.RunSummary) changeCounts {
	counts := changeCounts{
		unchanged: summary.Unchanged,
		failed:    summary.Failed,
		blocked:   summary.Blocked,
	}

	for _, res := range summary.Results {
		switch res.Status {
		case model.StatusWouldCreate:
			counts.creates++
		case model.StatusWouldUpdate:
			counts.updates++
		case model.StatusWouldDelete:
			counts.deletes++
		}
	}
	return counts
}

func formatPlanLine(counts changeCounts) string {
	line := fmt.Sprintf("%d to create, %d to update, %d to delete, %d in sync",
		counts.creates, counts.updates, counts.deletes, counts.unchanged)
	if counts.failed > 0 {
		line += fmt.Sprintf(", %d failed", counts.failed)
	}
	if counts.blocked > 0 {
		line += fmt.Sprintf(", %d blocked", counts.blocked)
	}
	return line
}

func supportsUnicode(writer any) bool {
	if file, ok := writer.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}

func formatStatus(status registry.ManifestStatus, useUnicode bool) string {
	if useUnicode {
		return fmt.Sprintf("%s %s", status.Icon(), status.String())
	}

	return fmt.Sprintf("%s %s", status.IconFallback(), status.String())
}

func formatRelativeTime(ts time.Time) string {
	if ts.IsZero() {
		return "never"
	}

	delta := time.Since(ts)
	if delta < time.Minute {
		return "just now"
	}
	if delta < time.Hour {
		return fmt.Sprintf("%d minutes ago", int(delta.Minutes()))
	}
	if delta < 24*time.Hour {
		return fmt.Sprintf("%d hours ago", int(delta.Hours()))
	}

	return fmt.Sprintf("%d days ago", int(delta.Hours()/24))
}

func formatLastRun(ts time.Time) string {
	if ts.IsZero() {
		return "never"
	}
	return fmt.Sprintf("%s (%s)", ts.Format(time.RFC3339), formatRelativeTime(ts))
}

func valueOrFallback(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
