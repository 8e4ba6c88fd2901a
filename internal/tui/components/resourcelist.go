package components

import (
	"strings"

	"github.com/shunt-io/shunt/internal/model"
)

// ResourceEntry pairs a resource address with its latest reconcile
// outcome for rendering.
type ResourceEntry struct {
	Address string
	Result  model.ResourceResult
}

// DeviceGroup holds the entries rendered under one device heading.
type DeviceGroup struct {
	Device  string
	Entries []ResourceEntry
}

// ResourceList renders the run's resources with their current status.
type ResourceList struct {
	entries []ResourceEntry
}

// NewResourceList constructs a resource list component. Order is the
// plan order; addresses without a recorded result render as pending.
func NewResourceList(order []string, resources map[string]model.ResourceResult) ResourceList {
	entries := make([]ResourceEntry, 0, len(order))
	for _, address := range order {
		entries = append(entries, ResourceEntry{Address: address, Result: resources[address]})
	}
	return ResourceList{entries: entries}
}

// Entries returns the ordered resource entries.
func (r ResourceList) Entries() []ResourceEntry {
	clone := make([]ResourceEntry, len(r.entries))
	copy(clone, r.entries)
	return clone
}

// Grouped returns the entries grouped by device, devices in first-seen
// order and entries in plan order within each group.
func (r ResourceList) Grouped() []DeviceGroup {
	var groups []DeviceGroup
	index := make(map[string]int)

	for _, entry := range r.entries {
		device := entry.Address
		if i := strings.Index(device, "/"); i >= 0 {
			device = device[:i]
		}
		pos, seen := index[device]
		if !seen {
			pos = len(groups)
			index[device] = pos
			groups = append(groups, DeviceGroup{Device: device})
		}
		groups[pos].Entries = append(groups[pos].Entries, entry)
	}

	return groups
}

// LocalAddress strips the group's device prefix from an entry address
// so rows under a device heading read kind/id.
func (g DeviceGroup) LocalAddress(entry ResourceEntry) string {
	return strings.TrimPrefix(entry.Address, g.Device+"/")
}
