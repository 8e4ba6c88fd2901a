package dashboard

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shunt-io/shunt/internal/registry"
)

// loadInitialStatusCmd reads the cached status for every manifest.
func loadInitialStatusCmd(manifests []registry.Manifest, cache *registry.StatusCache) tea.Cmd {
	return func() tea.Msg {
		statuses := make(map[string]registry.CachedStatus)
		for _, m := range manifests {
			if cached, ok := cache.Get(m.ID); ok {
				statuses[m.ID] = cached
			}
		}
		return InitialStatusLoadedMsg{Statuses: statuses}
	}
}

// assessCmd runs a dry-run assessment for one manifest asynchronously.
func assessCmd(ctx context.Context, manifest registry.Manifest, svc ManifestService) tea.Cmd {
	return func() tea.Msg {
		result, err := svc.Assess(ctx, manifest)
		if err != nil {
			if ctx.Err() != nil {
				return AssessCancelledMsg{ManifestID: manifest.ID}
			}
			return AssessErrorMsg{ManifestID: manifest.ID, Err: err}
		}

		if result == nil {
			return AssessErrorMsg{ManifestID: manifest.ID, Err: fmt.Errorf("assessment produced no result")}
		}

		return AssessCompleteMsg{ManifestID: manifest.ID, Result: result}
	}
}

// applyCmd reconciles one manifest asynchronously.
func applyCmd(ctx context.Context, manifest registry.Manifest, svc ManifestService) tea.Cmd {
	return func() tea.Msg {
		result, err := svc.Apply(ctx, manifest)
		if err != nil {
			if ctx.Err() != nil {
				return ApplyCancelledMsg{ManifestID: manifest.ID}
			}
			return ApplyErrorMsg{ManifestID: manifest.ID, Err: err}
		}

		if result == nil {
			return ApplyErrorMsg{ManifestID: manifest.ID, Err: fmt.Errorf("apply produced no result")}
		}

		return ApplyCompleteMsg{ManifestID: manifest.ID, Result: result}
	}
}

// refreshSingleCmd assesses one manifest as part of a refresh-all pass.
func refreshSingleCmd(ctx context.Context, manifest registry.Manifest, svc ManifestService, index int, total int) tea.Cmd {
	return func() tea.Msg {
		result, err := svc.Assess(ctx, manifest)
		if err != nil {
			if ctx.Err() != nil {
				return RefreshCancelledMsg{}
			}
			return RefreshManifestCompleteMsg{
				ManifestID: manifest.ID,
				Index:      index,
				Total:      total,
				Err:        err,
			}
		}

		return RefreshManifestCompleteMsg{
			ManifestID: manifest.ID,
			Index:      index,
			Total:      total,
			Result:     result,
		}
	}
}

// saveStatusToCacheCmd persists an assessment outcome to the status
// cache file.
func saveStatusToCacheCmd(cache *registry.StatusCache, manifestID string, status registry.CachedStatus) tea.Cmd {
	return func() tea.Msg {
		if err := cache.Set(manifestID, status); err != nil {
			return ErrorMsg{Message: fmt.Sprintf("Failed to update status cache: %v", err)}
		}
		if err := cache.Save(); err != nil {
			return ErrorMsg{Message: fmt.Sprintf("Failed to persist status cache: %v", err)}
		}
		return StatusCacheSavedMsg{ManifestID: manifestID}
	}
}
