package model

import "time"

// Action is the corrective operation a reconciliation decided on.
type Action string

const (
	ActionNone   Action = "none"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// FieldChange describes a single attribute that differs between desired
// and observed state.
type FieldChange struct {
	Name string
	Old  string
	New  string
}

// ReconcileResult contains the outcome of one reconciliation call.
type ReconcileResult struct {
	// Action is the operation that was (or, under dry-run, would be)
	// performed.
	Action Action

	// Changed reports whether the device state differed from the spec.
	// Dry-run returns the same value the mutating call would have.
	Changed bool

	// Changes lists the diffed attributes for update actions, old and
	// new values included. Empty for create, delete and no-op.
	Changes []FieldChange

	// Message is a human-readable description of the decision.
	Message string

	// Output carries the attribute payload returned by the gateway for
	// create and update calls, when the driver provides one.
	Output map[string]string

	// DryRun records whether the mutating call was suppressed.
	DryRun bool

	Duration time.Duration
}

// ChangedNames returns the attribute names in Changes, in order.
func (r *ReconcileResult) ChangedNames() []string {
	if len(r.Changes) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.Changes))
	for _, change := range r.Changes {
		names = append(names, change.Name)
	}
	return names
}
