// Package source resolves manifests from local paths or git
// repositories, so a fleet's desired state can live next to its
// infrastructure code.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/shunt-io/shunt/internal/logger"
)

// DefaultManifestPath is where FetchGit looks inside a repository when
// no path is given.
const DefaultManifestPath = "shunt.yaml"

// GitOptions locates a manifest inside a git repository.
type GitOptions struct {
	URL string

	// Ref is a branch or tag name. Empty means the remote default
	// branch.
	Ref string

	// Path is the manifest's path inside the repository.
	Path string
}

// Resolve returns a usable local manifest path. A git URL takes
// precedence over the local path; the returned cleanup removes any
// temporary clone and is always safe to call.
func Resolve(ctx context.Context, localPath string, gitOpts GitOptions, log *logger.Logger) (string, func(), error) {
	if gitOpts.URL != "" {
		return FetchGit(ctx, gitOpts, log)
	}
	return localPath, func() {}, nil
}

// FetchGit shallow-clones the repository into a temporary directory and
// returns the manifest's local path together with a cleanup that removes
// the clone. Refs are tried as a branch first, then as a tag.
func FetchGit(ctx context.Context, opts GitOptions, log *logger.Logger) (string, func(), error) {
	if opts.URL == "" {
		return "", func() {}, fmt.Errorf("git source: url is required")
	}

	manifestPath := opts.Path
	if manifestPath == "" {
		manifestPath = DefaultManifestPath
	}

	log.WithFields(map[string]any{"url": opts.URL, "ref": opts.Ref, "path": manifestPath}).Debug("fetching manifest from git")

	if opts.Ref == "" {
		return cloneAndLocate(ctx, opts.URL, "", manifestPath)
	}

	path, cleanup, err := cloneAndLocate(ctx, opts.URL, plumbing.NewBranchReferenceName(opts.Ref), manifestPath)
	if err == nil {
		return path, cleanup, nil
	}

	path, cleanup, tagErr := cloneAndLocate(ctx, opts.URL, plumbing.NewTagReferenceName(opts.Ref), manifestPath)
	if tagErr != nil {
		return "", func() {}, fmt.Errorf("git source: ref %q: %w", opts.Ref, err)
	}
	return path, cleanup, nil
}

func cloneAndLocate(ctx context.Context, url string, ref plumbing.ReferenceName, manifestPath string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "shunt-git-*")
	if err != nil {
		return "", func() {}, fmt.Errorf("git source: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	cloneOpts := &git.CloneOptions{URL: url, Depth: 1}
	if ref != "" {
		cloneOpts.ReferenceName = ref
		cloneOpts.SingleBranch = true
	}

	if _, err := git.PlainCloneContext(ctx, dir, false, cloneOpts); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("git source: clone %s: %w", url, err)
	}

	path := filepath.Join(dir, manifestPath)
	if _, err := os.Stat(path); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("git source: manifest %q not found in %s", manifestPath, url)
	}

	return path, cleanup, nil
}
