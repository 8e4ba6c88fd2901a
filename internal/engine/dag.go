package engine

import (
	"fmt"
	"sort"

	"github.com/shunt-io/shunt/internal/config"
	"github.com/shunt-io/shunt/internal/model"
	shunterrors "github.com/shunt-io/shunt/pkg/errors"
)

// Node represents a vertex in the execution DAG.
type Node struct {
	Address    model.Address
	Resource   *config.Resource
	DependsOn  []*Node
	Dependents []*Node
}

// Graph encapsulates the DAG structure and topological levels. Nodes
// are keyed by the address string form.
type Graph struct {
	Nodes  map[string]*Node
	Levels [][]string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{Nodes: make(map[string]*Node)}
}

// AddNode inserts a resource as a vertex in the graph.
func (g *Graph) AddNode(resource *config.Resource) (*Node, error) {
	if resource == nil {
		return nil, shunterrors.NewExecutionError("", fmt.Errorf("resource cannot be nil"))
	}

	if g.Nodes == nil {
		g.Nodes = make(map[string]*Node)
	}

	key := resource.Address().String()
	if _, exists := g.Nodes[key]; exists {
		return nil, shunterrors.NewValidationError("resources", fmt.Sprintf("duplicate resource address %q", key), nil)
	}

	node := &Node{Address: resource.Address(), Resource: resource}
	g.Nodes[key] = node
	return node, nil
}

// AddEdge records that `to` depends on `from`.
func (g *Graph) AddEdge(from, to string) error {
	source, ok := g.Nodes[from]
	if !ok {
		return shunterrors.NewValidationError("resources", fmt.Sprintf("unknown dependency %q", from), nil)
	}

	target, ok := g.Nodes[to]
	if !ok {
		return shunterrors.NewValidationError("resources", fmt.Sprintf("unknown dependency target %q", to), nil)
	}

	source.Dependents = append(source.Dependents, target)
	target.DependsOn = append(target.DependsOn, source)
	return nil
}

// TopologicalSort computes the DAG levels using Kahn's algorithm. Each
// level holds addresses whose dependencies are all in earlier levels.
func (g *Graph) TopologicalSort() error {
	indegree := make(map[string]int, len(g.Nodes))
	for key := range g.Nodes {
		indegree[key] = 0
	}

	for _, node := range g.Nodes {
		for _, dep := range node.Dependents {
			indegree[dep.Address.String()]++
		}
	}

	var queue []string
	for key, degree := range indegree {
		if degree == 0 {
			queue = append(queue, key)
		}
	}
	sort.Strings(queue)

	processed := 0
	var levels [][]string

	for len(queue) > 0 {
		currentLevel := queue
		sort.Strings(currentLevel)
		levels = append(levels, append([]string(nil), currentLevel...))

		var nextLevel []string
		for _, key := range currentLevel {
			processed++
			node := g.Nodes[key]
			for _, dependent := range node.Dependents {
				dependentKey := dependent.Address.String()
				indegree[dependentKey]--
				if indegree[dependentKey] == 0 {
					nextLevel = append(nextLevel, dependentKey)
				}
			}
		}

		sort.Strings(nextLevel)
		queue = nextLevel
	}

	if processed != len(g.Nodes) {
		return shunterrors.NewValidationError("resources", "cycle detected while sorting graph", nil)
	}

	g.Levels = levels
	return nil
}
