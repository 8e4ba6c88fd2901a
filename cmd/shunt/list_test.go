package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeListManifest(t *testing.T) string {
	t.Helper()

	manifest := `version: "1.0"
name: list-test
devices:
  - name: core-1
    driver: vsh
resources:
  - kind: vlan
    id: "10"
    device: core-1
`
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))
	return path
}

func TestListRequiresManifest(t *testing.T) {
	root := newRootCmd()
	err := executeCommand(root, "list", "core-1", "vlan")
	require.Error(t, err)
	require.Contains(t, err.Error(), "manifest file is required")
}

func TestListRejectsUnknownKind(t *testing.T) {
	path := writeListManifest(t)

	root := newRootCmd()
	err := executeCommand(root, "list", "core-1", "nope", "-f", path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "kind 'nope' not found")
}

func TestListRejectsUnknownDevice(t *testing.T) {
	path := writeListManifest(t)

	root := newRootCmd()
	err := executeCommand(root, "list", "core-9", "vlan", "-f", path)
	require.Error(t, err)
	require.Contains(t, err.Error(), `device "core-9" not declared in manifest`)
}
