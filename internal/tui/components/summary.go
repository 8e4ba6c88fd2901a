package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/shunt-io/shunt/internal/model"
)

// SummaryData aggregates run state for rendering the summary block.
type SummaryData struct {
	Total     int
	Completed int
	Finished  bool
	Cancelled bool
	Run       *model.RunSummary
}

// Summary renders the run summary block.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary.
func (s Summary) View() string {
	var lines []string
	if s.data.Total > 0 {
		lines = append(lines, fmt.Sprintf("Resources: %d/%d reconciled", s.data.Completed, s.data.Total))
	}

	if s.data.Cancelled {
		lines = append(lines, "Run cancelled")
	} else if s.data.Finished && s.data.Total > 0 {
		switch {
		case s.data.Run != nil && s.data.Run.HasFailures():
			lines = append(lines, "Run finished with failures")
		case s.data.Completed == s.data.Total:
			lines = append(lines, "Run finished")
		default:
			lines = append(lines, "Run finished with pending resources")
		}
	}

	if s.data.Run != nil {
		if counts := FormatActionCounts(s.data.Run); counts != "" {
			lines = append(lines, counts)
		}
		if s.data.Run.Duration > 0 {
			lines = append(lines, fmt.Sprintf("Duration: %s", s.data.Run.Duration.Truncate(time.Millisecond)))
		}
	}

	return strings.Join(lines, "\n")
}

// FormatActionCounts renders the summary's non-zero action counters as
// a single comma separated line, empty when nothing happened.
func FormatActionCounts(run *model.RunSummary) string {
	if run == nil {
		return ""
	}

	counters := []struct {
		label string
		count int
	}{
		{"created", run.Created},
		{"updated", run.Updated},
		{"deleted", run.Deleted},
		{"unchanged", run.Unchanged},
		{"would change", run.WouldChange},
		{"failed", run.Failed},
		{"blocked", run.Blocked},
	}

	var parts []string
	for _, c := range counters {
		if c.count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.count, c.label))
		}
	}
	return strings.Join(parts, ", ")
}
