package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shunt-io/shunt/internal/config"
	"github.com/shunt-io/shunt/internal/engine"
	"github.com/shunt-io/shunt/internal/logger"
	"github.com/shunt-io/shunt/internal/model"
	"github.com/shunt-io/shunt/internal/registry"
	"github.com/shunt-io/shunt/internal/tui/dashboard"
)

// manifestService backs the dashboard with the same engine pipeline the
// registry refresh command runs.
type manifestService struct {
	timeout time.Duration
	verbose bool
}

func newManifestService(root *rootFlags) dashboard.ManifestService {
	return &manifestService{
		timeout: time.Minute,
		verbose: root.verbose,
	}
}

func (s *manifestService) Assess(ctx context.Context, m registry.Manifest) (*registry.CachedStatus, error) {
	opts := &registryRefreshOptions{timeout: s.timeout, verbose: s.verbose}
	result := refreshManifestFunc(ctx, m, opts)
	if result.Err != nil {
		return nil, result.Err
	}
	return cachedStatusFromRefresh(result), nil
}

func (s *manifestService) Apply(ctx context.Context, m registry.Manifest) (*registry.CachedStatus, error) {
	result := applyManifestFunc(ctx, m, s.timeout, s.verbose)
	if result.Err != nil {
		return nil, result.Err
	}
	return cachedStatusFromRefresh(result), nil
}

// applyManifestFunc is swapped out in tests that stub the reconcile run.
var applyManifestFunc = applyManifest

// applyManifest runs the manifest's plan for real: same pipeline as
// refreshManifest with the dry-run disabled, so failures stop dependent
// resources instead of being collected.
func applyManifest(ctx context.Context, m registry.Manifest, timeout time.Duration, verbose bool) refreshResult {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	level := "error"
	if verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: true})
	if err != nil {
		return refreshResult{Status: registry.StatusFailed, Summary: "Run failed", Err: err}
	}

	manifest, err := config.ParseManifest(m.Path)
	if err != nil {
		return refreshResult{Status: registry.StatusFailed, Summary: configErrorSummary(err), Err: err}
	}

	kinds, err := newKindRegistry(log)
	if err != nil {
		return refreshResult{Status: registry.StatusFailed, Summary: "Run failed", Err: err}
	}
	if err := engine.ValidateManifestKinds(manifest, kinds); err != nil {
		return refreshResult{Status: registry.StatusFailed, Summary: configErrorSummary(err), Err: err}
	}

	graph, err := engine.BuildGraph(manifest.Resources)
	if err != nil {
		return refreshResult{Status: registry.StatusFailed, Summary: configErrorSummary(err), Err: err}
	}
	plan, err := engine.GeneratePlan(graph)
	if err != nil {
		return refreshResult{Status: registry.StatusFailed, Summary: "Run failed", Err: err}
	}

	reconcilers, closeGateways, err := buildReconcilers(manifest, kinds, log)
	if err != nil {
		return refreshResult{Status: registry.StatusFailed, Summary: "Run failed", Err: err}
	}
	defer closeGateways()

	execCtx := engine.NewExecutionContext(manifest, reconcilers, engine.ContextOptions{
		Verbose: verbose,
		Logger:  log,
		Context: ctx,
	})

	summary, execErr := engine.Execute(execCtx, plan)
	if summary == nil {
		return refreshResult{Status: registry.StatusFailed, Summary: "Run failed", Err: execErr}
	}

	status, text := classifyApply(summary)
	result := refreshResult{
		Status:  status,
		Summary: text,
		Count:   summary.TotalResources,
	}
	for _, res := range summary.Results {
		if res.Status == model.StatusFailed || res.Status == model.StatusBlocked {
			result.Failed = append(result.Failed, res.Address.String())
		}
	}
	sort.Strings(result.Failed)

	return result
}

// classifyApply maps a reconcile run to the registry's status taxonomy.
func classifyApply(summary *model.RunSummary) (registry.ManifestStatus, string) {
	changed := summary.Created + summary.Updated + summary.Deleted
	switch {
	case summary.HasFailures():
		return registry.StatusFailed, fmt.Sprintf("%d of %d resources failed", summary.Failed+summary.Blocked, summary.TotalResources)
	case changed > 0:
		return registry.StatusSynced, fmt.Sprintf("Applied %d of %d resources", changed, summary.TotalResources)
	default:
		return registry.StatusSynced, fmt.Sprintf("All %d resources in sync", summary.TotalResources)
	}
}

// cachedStatusFromRefresh shapes an assessment outcome for the status
// cache.
func cachedStatusFromRefresh(result refreshResult) *registry.CachedStatus {
	return &registry.CachedStatus{
		Status:          result.Status,
		LastRun:         time.Now().UTC(),
		Summary:         result.Summary,
		ResourceCount:   result.Count,
		FailedResources: append([]string(nil), result.Failed...),
	}
}
