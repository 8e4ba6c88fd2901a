package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/shunt-io/shunt/internal/registry"
)

type registryRemoveOptions struct {
	force bool
}

func newRegistryRemoveCmd(root *rootFlags) *cobra.Command {
	opts := &registryRemoveOptions{}

	cmd := &cobra.Command{
		Use:   "remove <manifest-id>",
		Short: "Remove a manifest from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistryRemove(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Remove without confirmation")

	return cmd
}

func runRegistryRemove(cmd *cobra.Command, manifestID string, opts *registryRemoveOptions) error {
	if strings.TrimSpace(manifestID) == "" {
		return newCommandError("remove", "validating manifest ID", errors.New("manifest ID cannot be empty"), "Provide the manifest ID you wish to remove.")
	}

	registryPath, err := defaultRegistryPath()
	if err != nil {
		return newCommandError("remove", "determining registry path", err, "Ensure your config directory is accessible.")
	}

	statusPath, err := defaultStatusCachePath()
	if err != nil {
		return newCommandError("remove", "determining status cache path", err, "Ensure your config directory is accessible.")
	}

	reg, err := registry.NewRegistry(registryPath)
	if err != nil {
		return newCommandError("remove", "loading registry", err, "Check registry file permissions and try again.")
	}

	entry, err := reg.Get(manifestID)
	if err != nil {
		return newCommandError("remove", fmt.Sprintf("looking up manifest %q", manifestID), err, "Run 'shunt registry list' to view registered manifests.")
	}

	if !opts.force {
		confirmed, err := confirmRemoval(cmd, manifestID, entry.Name)
		if err != nil {
			return err
		}
		if !confirmed {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	if err := reg.Remove(manifestID); err != nil {
		return newCommandError("remove", fmt.Sprintf("removing manifest %q", manifestID), err, "Verify the manifest still exists using 'shunt registry list'.")
	}

	if err := reg.Save(); err != nil {
		return newCommandError("remove", "saving registry", err, "Check disk space and file permissions, then retry.")
	}

	statusCache, err := registry.NewStatusCache(statusPath)
	if err == nil {
		_ = statusCache.Invalidate(manifestID)
		_ = statusCache.Save()
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed manifest '%s'\n", manifestID)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nThe manifest file at %s was not deleted.\n", entry.Path)

	return nil
}

func confirmRemoval(cmd *cobra.Command, manifestID, manifestName string) (bool, error) {
	if !isTerminalReader(cmd.InOrStdin()) {
		return false, newCommandError("remove", "prompting for confirmation", errors.New("not a terminal"), "Use --force when running in non-interactive environments.")
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Remove manifest '%s' (%s) from registry? [y/N]: ", manifestID, valueOrFallback(manifestName, "(no name)"))

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		return false, scanner.Err()
	}

	answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return answer == "y" || answer == "yes", nil
}

func isTerminalReader(reader any) bool {
	if file, ok := reader.(*os.File); ok {
		return termIsTerminal(int(file.Fd()))
	}
	return false
}

var termIsTerminal = func(fd int) bool {
	return term.IsTerminal(fd)
}
