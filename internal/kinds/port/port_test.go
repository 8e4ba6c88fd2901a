package port

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefinitionIsValid(t *testing.T) {
	t.Parallel()

	def := Definition()
	require.NoError(t, def.Validate())
	require.Equal(t, "port", def.Family)
}

func TestPortIDValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"flat id", "12", false},
		{"slot and port", "1/1", false},
		{"chassis slot port", "1/1/3", false},
		{"too many components", "1/1/1/1", true},
		{"letters", "ge-0/0/1", true},
		{"empty", "", true},
		{"trailing slash", "1/", true},
	}

	def := Definition()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := def.ValidateID(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPortCanonicalization(t *testing.T) {
	t.Parallel()

	def := Definition()

	attrs, err := def.CanonicalAttributes(map[string]string{
		"enabled":     "True",
		"access_vlan": " 0999 ",
	})
	require.NoError(t, err)
	require.Equal(t, "true", attrs["enabled"])
	require.Equal(t, "999", attrs["access_vlan"])

	_, err = def.CanonicalAttributes(map[string]string{"access_vlan": "5000"})
	require.Error(t, err, "vlan ids above 4094 are rejected")

	_, err = def.CanonicalAttributes(map[string]string{"enabled": "enabled"})
	require.Error(t, err)
}
