package engine

import (
	"fmt"

	"github.com/shunt-io/shunt/internal/config"
	shunterrors "github.com/shunt-io/shunt/pkg/errors"
)

// BuildGraph constructs the execution graph from the manifest's
// resources. Disabled resources are excluded along with any edges that
// point at them.
func BuildGraph(resources []config.Resource) (*Graph, error) {
	graph := NewGraph()
	enabled := make(map[string]*config.Resource, len(resources))

	for i := range resources {
		resource := &resources[i]
		if !resource.Enabled {
			continue
		}
		if _, err := graph.AddNode(resource); err != nil {
			return nil, err
		}
		enabled[resource.Address().String()] = resource
	}

	for _, resource := range resources {
		if !resource.Enabled || len(resource.DependsOn) == 0 {
			continue
		}
		key := resource.Address().String()
		for _, ref := range resource.DependsOn {
			addr, err := config.ResolveDependsOn(ref, resource.Device)
			if err != nil {
				return nil, shunterrors.NewValidationError("resources", fmt.Sprintf("resource %q: %v", key, err), err)
			}
			depKey := addr.String()
			if _, ok := enabled[depKey]; !ok {
				// Dependencies on disabled resources are dropped, not
				// errors; the manifest validator already rejected truly
				// unknown references.
				continue
			}
			if err := graph.AddEdge(depKey, key); err != nil {
				return nil, err
			}
		}
	}

	if err := graph.TopologicalSort(); err != nil {
		return nil, err
	}

	return graph, nil
}
