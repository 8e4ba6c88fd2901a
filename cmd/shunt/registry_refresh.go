package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/shunt-io/shunt/internal/config"
	"github.com/shunt-io/shunt/internal/engine"
	"github.com/shunt-io/shunt/internal/logger"
	"github.com/shunt-io/shunt/internal/model"
	"github.com/shunt-io/shunt/internal/registry"
	shunterrors "github.com/shunt-io/shunt/pkg/errors"
)

type registryRefreshOptions struct {
	concurrency int
	manifestID  string
	dryRun      bool
	verbose     bool
	timeout     time.Duration
}

type refreshResult struct {
	ManifestID string
	Status     registry.ManifestStatus
	Summary    string
	Count      int
	Failed     []string
	Err        error
}

// refreshManifestFunc is swapped out in tests that stub the assessment.
var refreshManifestFunc = refreshManifest

func newRegistryRefreshCmd(root *rootFlags) *cobra.Command {
	opts := &registryRefreshOptions{}

	cmd := &cobra.Command{
		Use:   "refresh [manifest-id]",
		Short: "Refresh manifest statuses by replaying a dry-run plan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.manifestID = args[0]
			}
			opts.dryRun = root.dryRun
			opts.verbose = root.verbose
			return runRegistryRefresh(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "c", 5, "Number of manifests to assess concurrently")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", time.Minute, "Timeout per manifest assessment (e.g. 45s, 2m)")

	return cmd
}

func runRegistryRefresh(cmd *cobra.Command, opts *registryRefreshOptions) error {
	registryPath, err := defaultRegistryPath()
	if err != nil {
		return newCommandError("refresh", "determining registry path", err, "Ensure your config directory is accessible.")
	}

	statusPath, err := defaultStatusCachePath()
	if err != nil {
		return newCommandError("refresh", "determining status cache path", err, "Ensure your config directory is accessible.")
	}

	reg, err := registry.NewRegistry(registryPath)
	if err != nil {
		return newCommandError("refresh", "loading registry", err, "Check registry file permissions and try again.")
	}

	manifests := reg.List()
	if len(manifests) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No manifests registered. Run 'shunt registry add <manifest-path>' first.")
		return nil
	}

	if opts.manifestID != "" {
		filtered := manifests[:0]
		for _, m := range manifests {
			if m.ID == opts.manifestID {
				filtered = append(filtered, m)
			}
		}
		if len(filtered) == 0 {
			return newCommandError("refresh", fmt.Sprintf("looking up manifest %q", opts.manifestID), errors.New("manifest not found"), "Run 'shunt registry list' to view registered manifests.")
		}
		manifests = filtered
	}

	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].ID < manifests[j].ID
	})

	if opts.dryRun {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Dry-run: Would refresh the following manifests:")
		for _, m := range manifests {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  - %s (%s)\n", m.ID, valueOrFallback(m.Name, "(no name)"))
		}
		return nil
	}

	statusCache, err := registry.NewStatusCache(statusPath)
	if err != nil {
		return newCommandError("refresh", "loading status cache", err, "Check status cache file permissions and try again.")
	}

	results := assessManifests(cmd, manifests, opts)

	updateStatusCache(statusCache, results)

	// A full pass also drops cache entries for manifests that were
	// removed from the registry out of band.
	if opts.manifestID == "" {
		registered := make(map[string]struct{}, len(manifests))
		for _, m := range manifests {
			registered[m.ID] = struct{}{}
		}
		statusCache.Prune(registered)
	}

	if err := statusCache.Save(); err != nil {
		return newCommandError("refresh", "saving status cache", err, "Check disk space and file permissions, then retry.")
	}

	summary := summarizeRefresh(results)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nSummary:\n  ✓ Synced: %d\n  ⚠ Drift:  %d\n  ✗ Failed: %d\n", summary.synced, summary.drift, summary.failed)

	return nil
}

func assessManifests(cmd *cobra.Command, manifests []registry.Manifest, opts *registryRefreshOptions) []refreshResult {
	concurrency := opts.concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	out := cmd.OutOrStdout()
	results := make([]refreshResult, len(manifests))

	var printMu sync.Mutex
	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, m := range manifests {
		g.Go(func() error {
			result := refreshManifestFunc(context.Background(), m, opts)
			result.ManifestID = m.ID
			results[i] = result

			printMu.Lock()
			_, _ = fmt.Fprintf(out, "[%d/%d] %s... %s\n", i+1, len(manifests), m.ID, formatRefreshResult(result))
			printMu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// refreshManifest replays a full dry-run plan for one registered
// manifest and classifies the outcome.
func refreshManifest(ctx context.Context, m registry.Manifest, opts *registryRefreshOptions) refreshResult {
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	level := "error"
	if opts.verbose {
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
		DryRun:          true,
		ContinueOnError: true,
		Logger:          log,
		Context:         ctx,
	})

	summary, execErr := engine.Execute(execCtx, plan)
	if summary == nil {
		return refreshResult{Status: registry.StatusFailed, Summary: "Run failed", Err: execErr}
	}

	status, text := classifyRun(summary)
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

// classifyRun maps a dry-run summary to the registry's status taxonomy.
func classifyRun(summary *model.RunSummary) (registry.ManifestStatus, string) {
	switch {
	case summary.HasFailures():
		return registry.StatusFailed, fmt.Sprintf("%d of %d resources failed", summary.Failed+summary.Blocked, summary.TotalResources)
	case summary.WouldChange > 0:
		return registry.StatusDrift, fmt.Sprintf("%d of %d resources out of sync", summary.WouldChange, summary.TotalResources)
	default:
		return registry.StatusSynced, fmt.Sprintf("All %d resources in sync", summary.TotalResources)
	}
}

func configErrorSummary(err error) string {
	var validationErr *shunterrors.ValidationError
	if errors.As(err, &validationErr) {
		return "Configuration validation failed"
	}
	return "Configuration error"
}

func formatRefreshResult(result refreshResult) string {
	if result.Err != nil {
		return fmt.Sprintf("✗ failed (%v)", result.Err)
	}

	c := cases.Title(language.English)
	label := c.String(result.Status.String())

	switch result.Status {
	case registry.StatusSynced:
		return fmt.Sprintf("✓ %s", label)
	case registry.StatusDrift:
		return fmt.Sprintf("⚠ %s", label)
	default:
		return fmt.Sprintf("✗ %s", label)
	}
}

type refreshSummary struct {
	synced int
	drift  int
	failed int
}

func summarizeRefresh(results []refreshResult) refreshSummary {
	s := refreshSummary{}
	for _, r := range results {
		switch r.Status {
		case registry.StatusSynced:
			s.synced++
		case registry.StatusDrift:
			s.drift++
		default:
			s.failed++
		}
	}
	return s
}

func updateStatusCache(cache *registry.StatusCache, results []refreshResult) {
	now := time.Now().UTC()
	for _, r := range results {
		status := registry.CachedStatus{
			Status:          r.Status,
			Summary:         r.Summary,
			ResourceCount:   r.Count,
			LastRun:         now,
			FailedResources: append([]string(nil), r.Failed...),
		}
		if r.Status == registry.StatusFailed && r.Summary == "" {
			status.Summary = "Run failed"
		}
		_ = cache.Set(r.ManifestID, status)
	}
}
