package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shunt-io/shunt/internal/logger"
	"github.com/shunt-io/shunt/internal/source"
)

// manifestFlags locate the manifest a command operates on: a local file
// or a path inside a git repository.
type manifestFlags struct {
	file    string
	fromGit string
	gitRef  string
	gitPath string
}

func addManifestFlags(cmd *cobra.Command, flags *manifestFlags) {
	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Path to the manifest file")
	cmd.Flags().StringVar(&flags.fromGit, "from-git", "", "Git repository URL to fetch the manifest from")
	cmd.Flags().StringVar(&flags.gitRef, "git-ref", "", "Branch or tag to fetch (defaults to the remote default branch)")
	cmd.Flags().StringVar(&flags.gitPath, "git-path", "", "Manifest path inside the repository (defaults to "+source.DefaultManifestPath+")")
}

// resolve returns a usable local manifest path, cloning the git source
// first when one is set. The cleanup removes any temporary clone and is
// always safe to call.
func (f *manifestFlags) resolve(ctx context.Context, log *logger.Logger) (string, func(), error) {
	if f.fromGit == "" {
		if err := validateManifestPath(f.file); err != nil {
			return "", func() {}, err
		}
		return f.file, func() {}, nil
	}

	return source.Resolve(ctx, f.file, source.GitOptions{
		URL:  f.fromGit,
		Ref:  f.gitRef,
		Path: f.gitPath,
	}, log)
}

func validateManifestPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("manifest file is required: pass -f or --from-git")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve manifest path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("manifest file does not exist: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("manifest path %s is a directory", abs)
	}

	return nil
}
