package components

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shunt-io/shunt/internal/model"
)

func TestNewResourceList(t *testing.T) {
	t.Parallel()

	t.Run("creates empty list", func(t *testing.T) {
		t.Parallel()
		rl := NewResourceList([]string{}, map[string]model.ResourceResult{})
		require.Empty(t, rl.entries)
	})

	t.Run("preserves plan order", func(t *testing.T) {
		t.Parallel()
		order := []string{"edge-1/vlan/20", "core-1/vlan/10", "core-1/port/1/1/3"}
		resources := map[string]model.ResourceResult{
			"core-1/vlan/10":    {Status: model.StatusSuccess},
			"edge-1/vlan/20":    {Status: model.StatusRunning},
			"core-1/port/1/1/3": {Status: model.StatusPending},
		}

		rl := NewResourceList(order, resources)
		require.Len(t, rl.entries, 3)
		require.Equal(t, "edge-1/vlan/20", rl.entries[0].Address)
		require.Equal(t, model.StatusRunning, rl.entries[0].Result.Status)
		require.Equal(t, "core-1/vlan/10", rl.entries[1].Address)
		require.Equal(t, "core-1/port/1/1/3", rl.entries[2].Address)
	})

	t.Run("missing results render as zero value", func(t *testing.T) {
		t.Parallel()
		rl := NewResourceList([]string{"core-1/vlan/10"}, map[string]model.ResourceResult{})
		require.Len(t, rl.entries, 1)
		require.Empty(t, rl.entries[0].Result.Status)
	})
}

func TestResourceListEntries(t *testing.T) {
	t.Parallel()

	t.Run("returns independent copy", func(t *testing.T) {
		t.Parallel()
		order := []string{"core-1/vlan/10"}
		resources := map[string]model.ResourceResult{
			"core-1/vlan/10": {Status: model.StatusSuccess, Message: "created vlan 10"},
		}

		rl := NewResourceList(order, resources)
		first := rl.Entries()
		second := rl.Entries()

		first[0].Address = "modified"
		require.Equal(t, "core-1/vlan/10", second[0].Address)
		require.Equal(t, "created vlan 10", second[0].Result.Message)
	})
}

func TestResourceListGrouped(t *testing.T) {
	t.Parallel()

	t.Run("groups by device in first-seen order", func(t *testing.T) {
		t.Parallel()
		order := []string{"core-1/vlan/10", "edge-1/vlan/20", "core-1/port/1/1/3"}
		resources := map[string]model.ResourceResult{}

		groups := NewResourceList(order, resources).Grouped()
		require.Len(t, groups, 2)
		require.Equal(t, "core-1", groups[0].Device)
		require.Len(t, groups[0].Entries, 2)
		require.Equal(t, "core-1/vlan/10", groups[0].Entries[0].Address)
		require.Equal(t, "core-1/port/1/1/3", groups[0].Entries[1].Address)
		require.Equal(t, "edge-1", groups[1].Device)
		require.Len(t, groups[1].Entries, 1)
	})

	t.Run("empty list yields no groups", func(t *testing.T) {
		t.Parallel()
		groups := NewResourceList(nil, nil).Grouped()
		require.Empty(t, groups)
	})
}

func TestDeviceGroupLocalAddress(t *testing.T) {
	t.Parallel()

	group := DeviceGroup{Device: "core-1"}
	entry := ResourceEntry{Address: "core-1/port/1/1/3"}
	require.Equal(t, "port/1/1/3", group.LocalAddress(entry))
}
