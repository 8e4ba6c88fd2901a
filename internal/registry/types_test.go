package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManifestStatus_Icon(t *testing.T) {
	tests := []struct {
		name   string
		status ManifestStatus
		want   string
	}{
		{"synced", StatusSynced, "🟢"},
		{"drift", StatusDrift, "🟡"},
		{"failed", StatusFailed, "🔴"},
		{"unknown", StatusUnknown, "⚪"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Icon())
		})
	}
}

func TestManifestStatus_IconFallback(t *testing.T) {
	tests := []struct {
		name   string
		status ManifestStatus
		want   string
	}{
		{"synced", StatusSynced, "[OK]"},
		{"drift", StatusDrift, "[!!]"},
		{"failed", StatusFailed, "[XX]"},
		{"unknown", StatusUnknown, "[??]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IconFallback())
		})
	}
}

func TestManifestStatus_Color(t *testing.T) {
	tests := []struct {
		name   string
		status ManifestStatus
	}{
		{"synced", StatusSynced},
		{"drift", StatusDrift},
		{"failed", StatusFailed},
		{"unknown", StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color := tt.status.Color()
			assert.NotEmpty(t, string(color))
		})
	}
}

func TestManifestStatus_String(t *testing.T) {
	tests := []struct {
		name   string
		status ManifestStatus
		want   string
	}{
		{"synced", StatusSynced, "synced"},
		{"drift", StatusDrift, "drift"},
		{"failed", StatusFailed, "failed"},
		{"unknown", StatusUnknown, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.String())
		})
	}
}
