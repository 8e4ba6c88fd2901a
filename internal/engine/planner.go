package engine

import (
	"fmt"
	"sort"
	"strings"
)

// ExecutionPlan contains the ordered execution levels for a run.
type ExecutionPlan struct {
	Levels []ExecutionLevel
}

// ExecutionLevel is a set of resources whose dependencies are all
// satisfied by earlier levels. Within a level, resources on different
// devices may run in parallel; resources sharing a device run serially
// in address order.
type ExecutionLevel struct {
	Addresses []string
	ByDevice  map[string][]string
}

// GeneratePlan converts a DAG into an execution plan with per-device
// groupings.
func GeneratePlan(graph *Graph) (*ExecutionPlan, error) {
	if graph == nil {
		return nil, fmt.Errorf("graph cannot be nil")
	}

	levels := make([]ExecutionLevel, 0, len(graph.Levels))
	for _, keys := range graph.Levels {
		level := ExecutionLevel{
			Addresses: append([]string(nil), keys...),
			ByDevice:  make(map[string][]string),
		}
		for _, key := range keys {
			node := graph.Nodes[key]
			device := node.Address.Device
			level.ByDevice[device] = append(level.ByDevice[device], key)
		}
		for device := range level.ByDevice {
			sort.Strings(level.ByDevice[device])
		}
		levels = append(levels, level)
	}

	return &ExecutionPlan{Levels: levels}, nil
}

// Devices returns the level's device names in stable order.
func (l ExecutionLevel) Devices() []string {
	devices := make([]string, 0, len(l.ByDevice))
	for device := range l.ByDevice {
		devices = append(devices, device)
	}
	sort.Strings(devices)
	return devices
}

// String renders a human readable summary of the plan.
func (p *ExecutionPlan) String() string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	for i, level := range p.Levels {
		fmt.Fprintf(&b, "Level %d (%d resources): %s\n", i, len(level.Addresses), strings.Join(level.Addresses, ", "))
	}
	return b.String()
}
