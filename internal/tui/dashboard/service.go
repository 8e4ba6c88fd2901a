package dashboard

import (
	"context"

	"github.com/shunt-io/shunt/internal/registry"
)

// ManifestService runs assessments and reconcile runs on behalf of the
// dashboard. Both calls block until the run finishes. Resource-level
// failures are folded into the returned status; the error is reserved
// for runs that could not execute at all.
type ManifestService interface {
	// Assess replays a dry-run plan and classifies the manifest's drift.
	Assess(ctx context.Context, manifest registry.Manifest) (*registry.CachedStatus, error)
	// Apply reconciles the manifest's resources on the devices.
	Apply(ctx context.Context, manifest registry.Manifest) (*registry.CachedStatus, error)
}
