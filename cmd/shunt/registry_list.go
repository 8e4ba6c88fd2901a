package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/shunt-io/shunt/internal/registry"
)

type registryListOptions struct {
	jsonOutput bool
}

func newRegistryListCmd(root *rootFlags) *cobra.Command {
	opts := &registryListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered manifests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistryList(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func runRegistryList(cmd *cobra.Command, opts *registryListOptions) error {
	registryPath, err := defaultRegistryPath()
	if err != nil {
		return newCommandError("list", "determining registry path", err, "Ensure your config directory is accessible.")
	}

	statusPath, err := defaultStatusCachePath()
	if err != nil {
		return newCommandError("list", "determining status cache path", err, "Ensure your config directory is accessible.")
	}

	reg, err := registry.NewRegistry(registryPath)
	if err != nil {
		return newCommandError("list", "loading manifest registry", err, "Check registry file permissions and try again.")
	}

	manifests := reg.List()
	if len(manifests) == 0 {
		return renderEmptyRegistry(cmd)
	}

	statusCache, err := registry.NewStatusCache(statusPath)
	if err != nil {
		return newCommandError("list", "loading status cache", err, "Check status cache file permissions and try again.")
	}

	enriched := enrichManifestsWithStatus(manifests, statusCache)

	if opts.jsonOutput {
		return renderRegistryListJSON(cmd, enriched)
	}

	return renderRegistryListTable(cmd, enriched)
}

type manifestWithStatus struct {
	Manifest registry.Manifest
	Status   registry.CachedStatus
}

func enrichManifestsWithStatus(manifests []registry.Manifest, cache *registry.StatusCache) []manifestWithStatus {
	enriched := make([]manifestWithStatus, len(manifests))

	for i, m := range manifests {
		status, ok := cache.Get(m.ID)
		if !ok {
			status = registry.CachedStatus{Status: registry.StatusUnknown}
		}

		enriched[i] = manifestWithStatus{
			Manifest: m,
			Status:   status,
		}
	}

	sort.Slice(enriched, func(i, j int) bool {
		return enriched[i].Manifest.ID < enriched[j].Manifest.ID
	})

	return enriched
}

func renderEmptyRegistry(cmd *cobra.Command) error {
	fmt.Fprintln(cmd.OutOrStdout(), "No manifests registered yet.")
	fmt.Fprintln(cmd.OutOrStdout(), "\nRun 'shunt registry add <manifest-path>' to add your first manifest.")
	return nil
}

func renderRegistryListTable(cmd *cobra.Command, manifests []manifestWithStatus) error {
	useUnicode := supportsUnicode(cmd.OutOrStdout())

	tbl := table.NewWriter()
	tbl.SetOutputMirror(cmd.OutOrStdout())
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"ID", "NAME", "STATUS", "LAST RUN", "PATH"})

	for _, m := range manifests {
		tbl.AppendRow(table.Row{
			m.Manifest.ID,
			valueOrFallback(m.Manifest.Name, "(no name)"),
			formatStatus(m.Status.Status, useUnicode),
			formatRelativeTime(m.Status.LastRun),
			m.Manifest.Path,
		})
	}

	tbl.Render()
	return nil
}

type registryListEntry struct {
	ID              string                  `json:"id"`
	Name            string                  `json:"name"`
	Path            string                  `json:"path"`
	Description     string                  `json:"description"`
	RegisteredAt    time.Time               `json:"registered_at"`
	Status          registry.ManifestStatus `json:"status"`
	LastRun         time.Time               `json:"last_run"`
	Summary         string                  `json:"summary"`
	ResourceCount   int                     `json:"resource_count"`
	FailedResources []string                `json:"failed_resources,omitempty"`
}

type registryListPayload struct {
	Version   string              `json:"version"`
	Count     int                 `json:"count"`
	Manifests []registryListEntry `json:"manifests"`
}

func renderRegistryListJSON(cmd *cobra.Command, manifests []manifestWithStatus) error {
	payload := registryListPayload{
		Version:   "1.0",
		Count:     len(manifests),
		Manifests: make([]registryListEntry, len(manifests)),
	}

	for i, m := range manifests {
		payload.Manifests[i] = registryListEntry{
			ID:              m.Manifest.ID,
			Name:            m.Manifest.Name,
			Path:            m.Manifest.Path,
			Description:     m.Manifest.Description,
			RegisteredAt:    m.Manifest.RegisteredAt,
			Status:          m.Status.Status,
			LastRun:         m.Status.LastRun,
			Summary:         m.Status.Summary,
			ResourceCount:   m.Status.ResourceCount,
			FailedResources: m.Status.FailedResources,
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
