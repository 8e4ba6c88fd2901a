package reconcile

import (
	"sort"

	"github.com/shunt-io/shunt/internal/model"
)

// Diff returns the names of the attributes asserted by spec whose value
// differs from the observed resource, sorted. A key missing on the
// observed side counts as a difference; keys the spec does not assert
// never appear. When observed is nil the resource does not exist and
// the result is empty, the caller creates instead of updating.
//
// Comparison is a case-sensitive compare of canonical values; both
// sides are expected to have passed through the same canonicalization.
// The diff is derived fresh on every call and never cached.
func Diff(spec model.ResourceSpec, observed *model.ObservedResource) []string {
	if observed == nil {
		return nil
	}

	var names []string
	for name, want := range spec.AssertedAttributes() {
		got, ok := observed.Attributes[name]
		if !ok || got != want {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Changes expands diffed attribute names into FieldChange entries with
// the observed and desired values.
func Changes(spec model.ResourceSpec, observed *model.ObservedResource, names []string) []model.FieldChange {
	if len(names) == 0 {
		return nil
	}

	changes := make([]model.FieldChange, 0, len(names))
	for _, name := range names {
		var old string
		if observed != nil {
			old = observed.Attributes[name]
		}
		changes = append(changes, model.FieldChange{
			Name: name,
			Old:  old,
			New:  spec.Attributes[name],
		})
	}
	return changes
}
