package model

import (
	"time"
)

const (
	// StatusPending indicates a resource has not been reconciled yet.
	StatusPending = "pending"
	// StatusRunning indicates a reconciliation is in flight.
	StatusRunning = "running"
	// StatusSuccess marks a reconciliation that mutated the device.
	StatusSuccess = "success"
	// StatusSkipped indicates the resource was already in sync.
	StatusSkipped = "skipped"
	// StatusFailed marks a reconciliation failure.
	StatusFailed = "failed"
	// StatusBlocked indicates a dependency failed, so the resource was
	// never attempted.
	StatusBlocked = "blocked"
	// StatusWouldCreate indicates dry-run would create the resource.
	StatusWouldCreate = "would_create"
	// StatusWouldUpdate indicates dry-run would update the resource.
	StatusWouldUpdate = "would_update"
	// StatusWouldDelete indicates dry-run would delete the resource.
	StatusWouldDelete = "would_delete"
)

// StatusForResult maps a reconcile outcome to an execution status.
func StatusForResult(res *ReconcileResult) string {
	if res == nil {
		return StatusFailed
	}
	if !res.Changed {
		return StatusSkipped
	}
	if res.DryRun {
		switch res.Action {
		case ActionCreate:
			return StatusWouldCreate
		case ActionUpdate:
			return StatusWouldUpdate
		case ActionDelete:
			return StatusWouldDelete
		}
	}
	return StatusSuccess
}

// ResourceResult captures the outcome of reconciling a single resource.
type ResourceResult struct {
	Address   Address
	Status    string
	Message   string
	Result    *ReconcileResult
	Error     error
	Duration  time.Duration
	Timestamp time.Time
}

// RunSummary aggregates the results of one plan or apply run.
type RunSummary struct {
	RunID          string
	TotalResources int
	Created        int
	Updated        int
	Deleted        int
	Unchanged      int
	WouldChange    int
	Failed         int
	Blocked        int
	Results        []ResourceResult
	Duration       time.Duration
}

// Add appends a result and updates the counters.
func (s *RunSummary) Add(result ResourceResult) {
	s.Results = append(s.Results, result)
	s.TotalResources++

	switch result.Status {
	case StatusSkipped:
		s.Unchanged++
	case StatusFailed:
		s.Failed++
	case StatusBlocked:
		s.Blocked++
	case StatusWouldCreate, StatusWouldUpdate, StatusWouldDelete:
		s.WouldChange++
	case StatusSuccess:
		if result.Result == nil {
			return
		}
		switch result.Result.Action {
		case ActionCreate:
			s.Created++
		case ActionUpdate:
			s.Updated++
		case ActionDelete:
			s.Deleted++
		}
	}
}

// InSync reports whether every resource matched its desired state.
func (s *RunSummary) InSync() bool {
	return s.WouldChange == 0 && s.Created == 0 && s.Updated == 0 &&
		s.Deleted == 0 && s.Failed == 0 && s.Blocked == 0
}

// HasFailures reports whether any resource failed or was blocked.
func (s *RunSummary) HasFailures() bool {
	return s.Failed > 0 || s.Blocked > 0
}

// ExitCode maps a plan summary to the process exit code: 0 when in
// sync, 1 when drift was detected, 3 when any resource could not be
// assessed or reconciled.
func (s *RunSummary) ExitCode() int {
	if s.HasFailures() {
		return 3
	}
	if !s.InSync() {
		return 1
	}
	return 0
}
