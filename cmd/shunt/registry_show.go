package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunt-io/shunt/internal/registry"
)

type registryShowOptions struct {
	jsonOutput bool
}

func newRegistryShowCmd(root *rootFlags) *cobra.Command {
	opts := &registryShowOptions{}

	cmd := &cobra.Command{
		Use:   "show <manifest-id>",
		Short: "Show detailed information about a registered manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistryShow(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output manifest details as JSON")

	return cmd
}

func runRegistryShow(cmd *cobra.Command, manifestID string, opts *registryShowOptions) error {
	if strings.TrimSpace(manifestID) == "" {
		return newCommandError("show", "validating manifest ID", errors.New("manifest ID cannot be empty"), "Provide the manifest ID you wish to inspect.")
	}

	registryPath, err := defaultRegistryPath()
	if err != nil {
		return newCommandError("show", "determining registry path", err, "Ensure your config directory is accessible.")
	}

	statusPath, err := defaultStatusCachePath()
	if err != nil {
		return newCommandError("show", "determining status cache path", err, "Ensure your config directory is accessible.")
	}

	reg, err := registry.NewRegistry(registryPath)
	if err != nil {
		return newCommandError("show", "loading registry", err, "Check registry file permissions and try again.")
	}

	manifest, err := reg.Get(manifestID)
	if err != nil {
		return newCommandError("show", fmt.Sprintf("looking up manifest %q", manifestID), err, "Run 'shunt registry list' to view registered manifests.")
	}

	statusCache, err := registry.NewStatusCache(statusPath)
	if err != nil {
		return newCommandError("show", "loading status cache", err, "Check status cache file permissions and try again.")
	}

	status, ok := statusCache.Get(manifestID)
	if !ok {
		status = registry.CachedStatus{Status: registry.StatusUnknown}
	}

	if opts.jsonOutput {
		return renderRegistryShowJSON(cmd, manifest, status)
	}

	return renderRegistryShowTable(cmd, manifest, status)
}

func renderRegistryShowTable(cmd *cobra.Command, manifest registry.Manifest, status registry.CachedStatus) error {
	fmt.Fprintf(cmd.OutOrStdout(), "Manifest: %s\n", manifest.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "Name:     %s\n", valueOrFallback(manifest.Name, "(no name)"))
	fmt.Fprintf(cmd.OutOrStdout(), "Path:     %s\n", manifest.Path)
	fmt.Fprintf(cmd.OutOrStdout(), "\nDescription:\n  %s\n\n", valueOrFallback(manifest.Description, "(none)"))

	fmt.Fprintf(cmd.OutOrStdout(), "Status:    %s\n", formatStatus(status.Status, supportsUnicode(cmd.OutOrStdout())))
	fmt.Fprintf(cmd.OutOrStdout(), "Last Run:  %s\n", formatLastRun(status.LastRun))
	fmt.Fprintf(cmd.OutOrStdout(), "Summary:   %s\n", valueOrFallback(status.Summary, "(none)"))
	fmt.Fprintf(cmd.OutOrStdout(), "Resources: %d\n", status.ResourceCount)

	if len(status.FailedResources) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Failed Resources:\n")
		for _, address := range status.FailedResources {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", address)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nRegistered: %s\n", manifest.RegisteredAt.Format(time.RFC3339))
	return nil
}

type registryShowPayload struct {
	ID              string                  `json:"id"`
	Name            string                  `json:"name"`
	Path            string                  `json:"path"`
	Description     string                  `json:"description"`
	RegisteredAt    time.Time               `json:"registered_at"`
	Status          registry.ManifestStatus `json:"status"`
	LastRun         *time.Time              `json:"last_run,omitempty"`
	Summary         string                  `json:"summary"`
	ResourceCount   int                     `json:"resource_count"`
	FailedResources []string                `json:"failed_resources,omitempty"`
}

func renderRegistryShowJSON(cmd *cobra.Command, manifest registry.Manifest, status registry.CachedStatus) error {
	payload := registryShowPayload{
		ID:              manifest.ID,
		Name:            manifest.Name,
		Path:            manifest.Path,
		Description:     manifest.Description,
		RegisteredAt:    manifest.RegisteredAt,
		Status:          status.Status,
		Summary:         status.Summary,
		ResourceCount:   status.ResourceCount,
		FailedResources: status.FailedResources,
	}

	if !status.LastRun.IsZero() {
		payload.LastRun = &status.LastRun
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
