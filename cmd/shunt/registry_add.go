package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunt-io/shunt/internal/config"
	"github.com/shunt-io/shunt/internal/registry"
)

type registryAddOptions struct {
	id          string
	name        string
	description string
	verbose     bool
}

func newRegistryAddCmd(root *rootFlags) *cobra.Command {
	opts := &registryAddOptions{}

	cmd := &cobra.Command{
		Use:   "add <manifest-path>",
		Short: "Add a manifest to the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.verbose = root.verbose
			return runRegistryAdd(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.id, "id", "i", "", "Manifest ID (auto-generated if omitted)")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "Manifest name (defaults to filename)")
	cmd.Flags().StringVarP(&opts.description, "description", "d", "", "Optional description")

	return cmd
}

func runRegistryAdd(cmd *cobra.Command, manifestPath string, opts *registryAddOptions) error {
	absPath, err := validateAndNormalizePath(manifestPath)
	if err != nil {
		return newCommandError("add", fmt.Sprintf("resolving manifest path %q", manifestPath), err, "Check that the file exists and you have permission to read it.")
	}

	if opts.name == "" {
		opts.name = deriveNameFromPath(absPath)
	}

	autoID := opts.id == ""
	if autoID {
		opts.id = registry.GenerateManifestID(absPath)
	}

	if err := registry.ValidateManifestID(opts.id); err != nil {
		return newCommandError("add", "validating manifest ID", err, "Provide an ID using lowercase letters, numbers, and hyphens. IDs must start and end with alphanumeric characters.")
	}

	if opts.verbose {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "→ Validating manifest: %s\n", absPath)
	}

	manifest, err := config.ParseManifest(absPath)
	if err != nil {
		return newCommandError("add", "validating manifest", err, "Fix the manifest errors shown above and try again.")
	}

	registryPath, err := defaultRegistryPath()
	if err != nil {
		return newCommandError("add", "determining registry path", err, "Ensure your config directory is accessible.")
	}

	reg, err := registry.NewRegistry(registryPath)
	if err != nil {
		return newCommandError("add", "loading registry", err, "Check that you have write access to the registry directory.")
	}

	// An explicit --id should conflict loudly; a generated one picks the
	// next free suffix instead.
	if autoID {
		opts.id = registry.UniqueManifestID(opts.id, func(id string) bool {
			_, err := reg.Get(id)
			return err == nil
		})
	}

	entry := registry.Manifest{
		ID:           opts.id,
		Name:         opts.name,
		Path:         absPath,
		Description:  opts.description,
		RegisteredAt: time.Now().UTC(),
	}

	if err := reg.Add(entry); err != nil {
		return newCommandError("add", fmt.Sprintf("adding manifest %q", opts.id), err, "Use a different ID or remove the existing manifest first.")
	}

	if err := reg.Save(); err != nil {
		return newCommandError("add", "saving registry", err, "Check disk space and file permissions, then retry.")
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Registered manifest '%s' (%s)\n", entry.ID, entry.Name)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Path: %s\n", entry.Path)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Devices: %d  Resources: %d\n", len(manifest.Devices), len(manifest.Resources))

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\nRun 'shunt registry refresh "+entry.ID+"' to record its current status.")

	return nil
}

func validateAndNormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("manifest path cannot be empty")
	}

	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", err
	}

	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory, not a file", absPath)
	}

	return absPath, nil
}

func deriveNameFromPath(path string) string {
	base := filepath.Base(path)
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return strings.TrimSpace(base)
}

func newCommandError(operation, context string, cause error, suggestion string) error {
	return &commandError{operation: operation, context: context, cause: cause, suggestion: suggestion}
}

type commandError struct {
	operation  string
	context    string
	cause      error
	suggestion string
}

func (e *commandError) Error() string {
	return fmt.Sprintf("Failed to %s: %s\n\nError: %v\n\nSuggestion: %s", e.operation, e.context, e.cause, e.suggestion)
}
