package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shunt-io/shunt/internal/registry"
)

const addTestManifestYAML = `version: "1.0"
name: Lab Fabric
devices:
  - name: core-1
    driver: vsh
resources:
  - kind: vlan
    id: "10"
    device: core-1
    attributes:
      name: users
  - kind: vlan
    id: "20"
    device: core-1
    attributes:
      name: voice
`

// setupAddHome points the user config dir at a temp directory and
// returns the registry path commands will use there.
func setupAddHome(t *testing.T) string {
	t.Helper()

	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, ".config"))

	path, err := defaultRegistryPath()
	require.NoError(t, err)
	return path
}

func writeAddManifest(t *testing.T, filename string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), filename)
	require.NoError(t, os.WriteFile(path, []byte(addTestManifestYAML), 0o644))
	return path
}

func executeRegistryAddCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"registry", "add"}, args...))
	err := root.Execute()
	return buf.String(), err
}

func TestRegistryAddRegistersManifest(t *testing.T) {
	registryPath := setupAddHome(t)
	manifestPath := writeAddManifest(t, "fabric.yaml")

	out, err := executeRegistryAddCommand(t,
		"--id", "dev-switches",
		"--name", "Dev Switches",
		"--description", "lab gear",
		manifestPath,
	)
	require.NoError(t, err)
	require.Contains(t, out, "✓ Registered manifest 'dev-switches' (Dev Switches)")
	require.Contains(t, out, "Devices: 1  Resources: 2")
	require.Contains(t, out, "shunt registry refresh dev-switches")

	reg, err := registry.NewRegistry(registryPath)
	require.NoError(t, err)

	entry, err := reg.Get("dev-switches")
	require.NoError(t, err)
	require.Equal(t, "Dev Switches", entry.Name)
	require.Equal(t, "lab gear", entry.Description)
	require.Equal(t, manifestPath, entry.Path)
	require.WithinDuration(t, time.Now(), entry.RegisteredAt, 5*time.Second)
}

func TestRegistryAddRejectsDuplicateID(t *testing.T) {
	setupAddHome(t)
	manifestPath := writeAddManifest(t, "fabric.yaml")

	_, err := executeRegistryAddCommand(t, "--id", "dup", manifestPath)
	require.NoError(t, err)

	_, err = executeRegistryAddCommand(t, "--id", "dup", manifestPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")
}

func TestRegistryAddAutoIDAvoidsCollision(t *testing.T) {
	registryPath := setupAddHome(t)
	first := writeAddManifest(t, "fabric.yaml")
	second := writeAddManifest(t, "fabric.yaml")

	_, err := executeRegistryAddCommand(t, first)
	require.NoError(t, err)

	out, err := executeRegistryAddCommand(t, second)
	require.NoError(t, err)
	require.Contains(t, out, "✓ Registered manifest 'fabric-2'")

	reg, err := registry.NewRegistry(registryPath)
	require.NoError(t, err)

	entry, err := reg.Get("fabric-2")
	require.NoError(t, err)
	require.Equal(t, second, entry.Path)
}

func TestRegistryAddRejectsInvalidManifest(t *testing.T) {
	setupAddHome(t)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\nname: broken\n"), 0o644))

	_, err := executeRegistryAddCommand(t, path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Failed to add: validating manifest")
}

func TestRegistryAddGeneratesIDFromFilename(t *testing.T) {
	registryPath := setupAddHome(t)
	manifestPath := writeAddManifest(t, "Lab Fabric.yaml")

	out, err := executeRegistryAddCommand(t, manifestPath)
	require.NoError(t, err)
	require.Contains(t, out, "✓ Registered manifest 'lab-fabric' (Lab Fabric)")

	reg, err := registry.NewRegistry(registryPath)
	require.NoError(t, err)

	entry, err := reg.Get("lab-fabric")
	require.NoError(t, err)
	require.Equal(t, "Lab Fabric", entry.Name)
}

func TestDeriveNameFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "strips the extension", path: "/tmp/switches.yaml", want: "switches"},
		{name: "keeps inner dots", path: "/tmp/lab.fabric.yaml", want: "lab.fabric"},
		{name: "keeps dotfiles whole", path: "/tmp/.hidden", want: ".hidden"},
		{name: "no extension", path: "/tmp/plain", want: "plain"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, deriveNameFromPath(tt.path))
		})
	}
}
