package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shunt-io/shunt/internal/config"
	shunterrors "github.com/shunt-io/shunt/pkg/errors"
)

func testResource(device, kind, id string, deps ...string) config.Resource {
	return config.Resource{
		Kind:      kind,
		ID:        id,
		Device:    device,
		State:     "present",
		Enabled:   true,
		DependsOn: deps,
	}
}

func TestBuildGraphOrdersLevels(t *testing.T) {
	t.Parallel()

	resources := []config.Resource{
		testResource("core-1", "port", "1/1/3", "vlan/10"),
		testResource("core-1", "vlan", "10"),
		testResource("edge-1", "vlan", "20"),
	}

	graph, err := BuildGraph(resources)
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 3)
	require.Equal(t, [][]string{
		{"core-1/vlan/10", "edge-1/vlan/20"},
		{"core-1/port/1/1/3"},
	}, graph.Levels)
}

func TestBuildGraphResolvesQualifiedDependencies(t *testing.T) {
	t.Parallel()

	graph, err := BuildGraph([]config.Resource{
		testResource("core-1", "vlan", "10"),
		testResource("edge-1", "vlan", "10", "core-1/vlan/10"),
	})
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"core-1/vlan/10"},
		{"edge-1/vlan/10"},
	}, graph.Levels)
}

func TestBuildGraphSkipsDisabledResources(t *testing.T) {
	t.Parallel()

	disabled := testResource("core-1", "vlan", "30")
	disabled.Enabled = false

	graph, err := BuildGraph([]config.Resource{
		testResource("core-1", "vlan", "10"),
		disabled,
	})
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 1)
	require.NotContains(t, graph.Nodes, "core-1/vlan/30")
}

func TestBuildGraphDropsDependenciesOnDisabledResources(t *testing.T) {
	t.Parallel()

	disabled := testResource("core-1", "vlan", "10")
	disabled.Enabled = false

	graph, err := BuildGraph([]config.Resource{
		disabled,
		testResource("core-1", "port", "12", "vlan/10"),
	})
	require.NoError(t, err)
	require.Equal(t, [][]string{{"core-1/port/12"}}, graph.Levels)
	require.Empty(t, graph.Nodes["core-1/port/12"].DependsOn)
}

func TestBuildGraphRejectsDuplicateAddresses(t *testing.T) {
	t.Parallel()

	_, err := BuildGraph([]config.Resource{
		testResource("core-1", "vlan", "10"),
		testResource("core-1", "vlan", "10"),
	})
	require.Error(t, err)

	var validationErr *shunterrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Message, "duplicate")
}

func TestBuildGraphRejectsMalformedDependencyReferences(t *testing.T) {
	t.Parallel()

	_, err := BuildGraph([]config.Resource{
		testResource("core-1", "vlan", "10", "vlan"),
	})
	require.Error(t, err)

	var validationErr *shunterrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestTopologicalSortDetectsCycle(t *testing.T) {
	t.Parallel()

	a := testResource("core-1", "vlan", "10")
	b := testResource("core-1", "vlan", "20")

	graph := NewGraph()
	_, err := graph.AddNode(&a)
	require.NoError(t, err)
	_, err = graph.AddNode(&b)
	require.NoError(t, err)

	require.NoError(t, graph.AddEdge("core-1/vlan/10", "core-1/vlan/20"))
	require.NoError(t, graph.AddEdge("core-1/vlan/20", "core-1/vlan/10"))

	err = graph.TopologicalSort()
	require.Error(t, err)
	require.Contains(t, err.Error(), "cycle detected")
}

func TestAddEdgeRequiresKnownNodes(t *testing.T) {
	t.Parallel()

	a := testResource("core-1", "vlan", "10")
	graph := NewGraph()
	_, err := graph.AddNode(&a)
	require.NoError(t, err)

	require.Error(t, graph.AddEdge("core-1/vlan/99", "core-1/vlan/10"))
	require.Error(t, graph.AddEdge("core-1/vlan/10", "core-1/vlan/99"))
}
