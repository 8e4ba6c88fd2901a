package model

// DesiredState declares whether a resource should exist on the device.
type DesiredState string

const (
	// StatePresent asserts the resource must exist with the spec attributes.
	StatePresent DesiredState = "present"
	// StateAbsent asserts the resource must not exist.
	StateAbsent DesiredState = "absent"
)

// IsValid reports whether the state is one of the declared values.
func (s DesiredState) IsValid() bool {
	switch s {
	case StatePresent, StateAbsent:
		return true
	default:
		return false
	}
}

// ResourceSpec is the desired-state input for a single reconciliation call.
// It is constructed once per call from manifest input and never mutated.
type ResourceSpec struct {
	// Kind names the resource kind (e.g. "vlan"). Selects the gateway
	// command family.
	Kind string

	// ID is the opaque resource identifier on the device (e.g. a VLAN
	// number rendered as a string). Immutable for the life of one call.
	ID string

	// Attributes maps attribute name to desired canonical value. A key
	// absent from the map is not asserted: absence never means "clear
	// this field".
	Attributes map[string]string

	// State is the desired lifecycle state, present or absent.
	State DesiredState
}

// AssertedAttributes returns a copy of Attributes with empty values
// removed. Only these keys participate in diffs and create payloads; an
// explicitly empty desired value never forces a change.
func (s ResourceSpec) AssertedAttributes() map[string]string {
	out := make(map[string]string, len(s.Attributes))
	for key, value := range s.Attributes {
		if value == "" {
			continue
		}
		out[key] = value
	}
	return out
}

// ObservedResource is a snapshot of a live resource read from the device.
// It is fetched lazily during reconciliation and discarded afterwards;
// existence is carried by the fetch return, not by attribute contents.
type ObservedResource struct {
	ID         string
	Attributes map[string]string
}
