package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/shunt-io/shunt/internal/registry"
	"github.com/shunt-io/shunt/internal/tui/dashboard"
)

func newDashboardCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Browse registered manifests interactively",
		Long: `Dashboard opens a full-screen view of every registered manifest with
its cached drift status. Manifests can be re-assessed or applied
without leaving the view.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, root)
		},
	}
}

func runDashboard(cmd *cobra.Command, root *rootFlags) error {
	registryPath, err := defaultRegistryPath()
	if err != nil {
		return newCommandError("open dashboard", "determining registry path", err, "Ensure your config directory is accessible.")
	}

	cachePath, err := defaultStatusCachePath()
	if err != nil {
		return newCommandError("open dashboard", "determining status cache path", err, "Ensure your config directory is accessible.")
	}

	reg, err := registry.NewRegistry(registryPath)
	if err != nil {
		return newCommandError("open dashboard", "loading registry", err, "Check registry file permissions and try again.")
	}

	cache, err := registry.NewStatusCache(cachePath)
	if err != nil {
		return newCommandError("open dashboard", "loading status cache", err, "Check status cache file permissions and try again.")
	}

	model := dashboard.NewModel(reg.List(), reg, cache, newManifestService(root))

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return newCommandError("open dashboard", "running the dashboard", err, "Run 'shunt registry list' for a non-interactive view.")
	}

	return nil
}
