package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

const manifestContents = `version: "1.0"
name: fetched
devices:
  - {name: core-1, driver: vsh}
resources:
  - {kind: vlan, id: "999"}
`

func initManifestRepo(t *testing.T, manifestPath string) *git.Repository {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	worktree, err := repo.Worktree()
	require.NoError(t, err)

	full := filepath.Join(dir, manifestPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(manifestContents), 0o644))

	_, err = worktree.Add(manifestPath)
	require.NoError(t, err)

	_, err = worktree.Commit("add manifest", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Source Test",
			Email: "source@test",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)

	return repo
}

func repoDir(t *testing.T, repo *git.Repository) string {
	t.Helper()

	worktree, err := repo.Worktree()
	require.NoError(t, err)
	return worktree.Filesystem.Root()
}

func TestFetchGitClonesDefaultBranch(t *testing.T) {
	t.Parallel()

	repo := initManifestRepo(t, "shunt.yaml")

	path, cleanup, err := FetchGit(context.Background(), GitOptions{URL: repoDir(t, repo)}, nil)
	require.NoError(t, err)
	defer cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "name: fetched")
}

func TestFetchGitHonorsNestedPath(t *testing.T) {
	t.Parallel()

	repo := initManifestRepo(t, filepath.Join("deploy", "fabric.yaml"))

	path, cleanup, err := FetchGit(context.Background(), GitOptions{
		URL:  repoDir(t, repo),
		Path: filepath.Join("deploy", "fabric.yaml"),
	}, nil)
	require.NoError(t, err)
	defer cleanup()

	require.FileExists(t, path)
}

func TestFetchGitResolvesTags(t *testing.T) {
	t.Parallel()

	repo := initManifestRepo(t, "shunt.yaml")
	head, err := repo.Head()
	require.NoError(t, err)
	_, err = repo.CreateTag("v1.0.0", head.Hash(), nil)
	require.NoError(t, err)

	path, cleanup, err := FetchGit(context.Background(), GitOptions{
		URL: repoDir(t, repo),
		Ref: "v1.0.0",
	}, nil)
	require.NoError(t, err)
	defer cleanup()

	require.FileExists(t, path)
}

func TestFetchGitResolvesBranches(t *testing.T) {
	t.Parallel()

	repo := initManifestRepo(t, "shunt.yaml")
	worktree, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("stable"),
		Create: true,
	}))

	path, cleanup, err := FetchGit(context.Background(), GitOptions{
		URL: repoDir(t, repo),
		Ref: "stable",
	}, nil)
	require.NoError(t, err)
	defer cleanup()

	require.FileExists(t, path)
}

func TestFetchGitMissingManifest(t *testing.T) {
	t.Parallel()

	repo := initManifestRepo(t, "other.yaml")

	_, cleanup, err := FetchGit(context.Background(), GitOptions{URL: repoDir(t, repo)}, nil)
	cleanup()

	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func TestFetchGitUnknownRef(t *testing.T) {
	t.Parallel()

	repo := initManifestRepo(t, "shunt.yaml")

	_, cleanup, err := FetchGit(context.Background(), GitOptions{
		URL: repoDir(t, repo),
		Ref: "does-not-exist",
	}, nil)
	cleanup()

	require.Error(t, err)
	require.Contains(t, err.Error(), "does-not-exist")
}

func TestFetchGitRequiresURL(t *testing.T) {
	t.Parallel()

	_, cleanup, err := FetchGit(context.Background(), GitOptions{}, nil)
	cleanup()

	require.Error(t, err)
}

func TestResolvePassesLocalPathsThrough(t *testing.T) {
	t.Parallel()

	path, cleanup, err := Resolve(context.Background(), "manifests/lab.yaml", GitOptions{}, nil)
	defer cleanup()

	require.NoError(t, err)
	require.Equal(t, "manifests/lab.yaml", path)
}

func TestResolvePrefersGitSources(t *testing.T) {
	t.Parallel()

	repo := initManifestRepo(t, "shunt.yaml")

	path, cleanup, err := Resolve(context.Background(), "ignored.yaml", GitOptions{URL: repoDir(t, repo)}, nil)
	require.NoError(t, err)
	defer cleanup()

	require.NotEqual(t, "ignored.yaml", path)
	require.FileExists(t, path)
}
