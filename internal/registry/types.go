package registry

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Manifest represents a registered shunt manifest
type Manifest struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Description  string    `json:"description"`
	RegisteredAt time.Time `json:"registered_at"`

	// Runtime state (not persisted in registry)
	Status     ManifestStatus `json:"-"`
	LastRun    time.Time      `json:"-"`
	LastResult *CachedStatus  `json:"-"`
}

// ManifestStatus represents the drift state of a manifest
type ManifestStatus string

const (
	StatusUnknown ManifestStatus = "unknown"
	StatusSynced  ManifestStatus = "synced"
	StatusDrift   ManifestStatus = "drift"
	StatusFailed  ManifestStatus = "failed"
)

// Icon returns the Unicode icon for the status
func (s ManifestStatus) Icon() string {
	switch s {
	case StatusSynced:
		return "🟢"
	case StatusDrift:
		return "🟡"
	case StatusFailed:
		return "🔴"
	default:
		return "⚪"
	}
}

// IconFallback returns ASCII fallback when Unicode is not supported
func (s ManifestStatus) IconFallback() string {
	switch s {
	case StatusSynced:
		return "[OK]"
	case StatusDrift:
		return "[!!]"
	case StatusFailed:
		return "[XX]"
	default:
		return "[??]"
	}
}

// Color returns the Lipgloss color for the status
func (s ManifestStatus) Color() lipgloss.Color {
	switch s {
	case StatusSynced:
		return lipgloss.Color("42") // green
	case StatusDrift:
		return lipgloss.Color("226") // yellow
	case StatusFailed:
		return lipgloss.Color("196") // red
	default:
		return lipgloss.Color("250") // light gray
	}
}

// String returns the string representation of the status
func (s ManifestStatus) String() string {
	return string(s)
}

// RegistryFile is the JSON file format for the manifest registry
type RegistryFile struct {
	Version   string     `json:"version"`
	Manifests []Manifest `json:"manifests"`
}

// CachedStatus stores the outcome of the last plan run for a manifest
type CachedStatus struct {
	Status          ManifestStatus `json:"status"`
	LastRun         time.Time      `json:"last_run"`
	Summary         string         `json:"summary"`
	ResourceCount   int            `json:"resource_count"`
	FailedResources []string       `json:"failed_resources,omitempty"`
}

// StatusCacheFile is the JSON file format for the status cache
type StatusCacheFile struct {
	Version  string                  `json:"version"`
	Statuses map[string]CachedStatus `json:"statuses"`
}
