package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shunt-io/shunt/internal/config"
)

func TestGeneratePlanGroupsLevelsByDevice(t *testing.T) {
	t.Parallel()

	graph, err := BuildGraph([]config.Resource{
		testResource("core-1", "vlan", "10"),
		testResource("core-1", "vlan", "20"),
		testResource("edge-1", "vlan", "10"),
		testResource("core-1", "port", "12", "vlan/10"),
	})
	require.NoError(t, err)

	plan, err := GeneratePlan(graph)
	require.NoError(t, err)
	require.Len(t, plan.Levels, 2)

	first := plan.Levels[0]
	require.Equal(t, []string{"core-1", "edge-1"}, first.Devices())
	require.Equal(t, []string{"core-1/vlan/10", "core-1/vlan/20"}, first.ByDevice["core-1"])
	require.Equal(t, []string{"edge-1/vlan/10"}, first.ByDevice["edge-1"])

	second := plan.Levels[1]
	require.Equal(t, []string{"core-1"}, second.Devices())
	require.Equal(t, []string{"core-1/port/12"}, second.ByDevice["core-1"])
}

func TestGeneratePlanRejectsNilGraph(t *testing.T) {
	t.Parallel()

	_, err := GeneratePlan(nil)
	require.Error(t, err)
}

func TestExecutionPlanString(t *testing.T) {
	t.Parallel()

	graph, err := BuildGraph([]config.Resource{
		testResource("core-1", "vlan", "10"),
		testResource("core-1", "port", "12", "vlan/10"),
	})
	require.NoError(t, err)

	plan, err := GeneratePlan(graph)
	require.NoError(t, err)

	out := plan.String()
	require.Contains(t, out, "Level 0 (1 resources): core-1/vlan/10")
	require.Contains(t, out, "Level 1 (1 resources): core-1/port/12")
}
