package config

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/shunt-io/shunt/internal/model"
)

func TestResourceUnmarshalDefaults(t *testing.T) {
	t.Parallel()

	var resource Resource
	require.NoError(t, yaml.Unmarshal([]byte(`kind: vlan
id: "999"
`), &resource))

	require.Equal(t, "present", resource.State)
	require.True(t, resource.Enabled)
	require.Empty(t, resource.Attributes)
}

func TestResourceUnmarshalAcceptsScalarAttributes(t *testing.T) {
	t.Parallel()

	var resource Resource
	require.NoError(t, yaml.Unmarshal([]byte(`kind: port
id: "1/1/3"
enabled: false
attributes:
  description: uplink
  access_vlan: 999
  enabled: true
  mtu: 9216.5
`), &resource))

	require.False(t, resource.Enabled)
	require.Equal(t, map[string]string{
		"description": "uplink",
		"access_vlan": "999",
		"enabled":     "true",
		"mtu":         "9216.5",
	}, resource.Attributes)
}

func TestResourceUnmarshalJoinsListAttributes(t *testing.T) {
	t.Parallel()

	var resource Resource
	require.NoError(t, yaml.Unmarshal([]byte(`kind: vlan
id: "999"
attributes:
  ports: [1, 2, 9]
`), &resource))

	require.Equal(t, "1,2,9", resource.Attributes["ports"])
}

func TestResourceUnmarshalRejectsNestedAttributes(t *testing.T) {
	t.Parallel()

	var resource Resource
	err := yaml.Unmarshal([]byte(`kind: vlan
id: "999"
attributes:
  ports:
    mode: trunk
`), &resource)

	require.Error(t, err)
	require.Contains(t, err.Error(), "not a scalar")
}

func TestStringMapStringifiesScalars(t *testing.T) {
	t.Parallel()

	var vars StringMap
	require.NoError(t, yaml.Unmarshal([]byte(`site: lab1
vlan_base: 100
debug: true
`), &vars))

	require.Equal(t, StringMap{"site": "lab1", "vlan_base": "100", "debug": "true"}, vars)
}

func TestResourceSpecConversion(t *testing.T) {
	t.Parallel()

	resource := Resource{
		Kind:       "vlan",
		ID:         "999",
		Device:     "core-1",
		State:      "absent",
		Attributes: map[string]string{"name": "test"},
	}

	spec := resource.Spec()

	require.Equal(t, "vlan", spec.Kind)
	require.Equal(t, "999", spec.ID)
	require.Equal(t, model.StateAbsent, spec.State)
	require.Equal(t, map[string]string{"name": "test"}, spec.Attributes)

	// The spec holds its own copy of the attribute map.
	spec.Attributes["name"] = "mutated"
	require.Equal(t, "test", resource.Attributes["name"])
}

func TestResourceAddress(t *testing.T) {
	t.Parallel()

	resource := Resource{Kind: "vlan", ID: "999", Device: "core-1"}
	require.Equal(t, "core-1/vlan/999", resource.Address().String())
}

func TestResourceMapKeysByAddress(t *testing.T) {
	t.Parallel()

	resources := []Resource{
		{Kind: "vlan", ID: "10", Device: "core-1"},
		{Kind: "vlan", ID: "20", Device: "core-2"},
	}

	byAddress := ResourceMap(resources)

	require.Len(t, byAddress, 2)
	require.Equal(t, "10", byAddress["core-1/vlan/10"].ID)
	require.Equal(t, "20", byAddress["core-2/vlan/20"].ID)
}

func TestResolveDependsOnQualifiesRelativeRefs(t *testing.T) {
	t.Parallel()

	addr, err := ResolveDependsOn("vlan/999", "core-1")
	require.NoError(t, err)
	require.Equal(t, model.Address{Device: "core-1", Kind: "vlan", ID: "999"}, addr)

	addr, err = ResolveDependsOn("core-2/vlan/999", "core-1")
	require.NoError(t, err)
	require.Equal(t, "core-2", addr.Device)

	_, err = ResolveDependsOn("vlan", "core-1")
	require.Error(t, err)
}
