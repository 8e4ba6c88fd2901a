package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryNew(t *testing.T) {
	tmpDir := t.TempDir()
	registryPath := filepath.Join(tmpDir, "manifests.json")

	reg, err := NewRegistry(registryPath)
	require.NoError(t, err)
	assert.NotNil(t, reg)
	assert.Empty(t, reg.List())
}

func TestRegistryLoadExisting(t *testing.T) {
	tmpDir := t.TempDir()
	registryPath := filepath.Join(tmpDir, "manifests.json")

	// Copy test fixture
	testData, err := os.ReadFile("../../testdata/registry/single-manifest.json")
	require.NoError(t, err)
	err = os.WriteFile(registryPath, testData, 0644)
	require.NoError(t, err)

	reg, err := NewRegistry(registryPath)
	require.NoError(t, err)
	manifests := reg.List()
	assert.Len(t, manifests, 1)
	assert.Equal(t, "lab-fabric", manifests[0].ID)
	assert.Equal(t, "Lab Fabric", manifests[0].Name)
}

func TestRegistryAdd(t *testing.T) {
	tmpDir := t.TempDir()
	registryPath := filepath.Join(tmpDir, "manifests.json")

	reg, err := NewRegistry(registryPath)
	require.NoError(t, err)

	manifest := Manifest{
		ID:           "test-manifest",
		Name:         "Test Manifest",
		Path:         "/path/to/shunt.yaml",
		Description:  "Test description",
		RegisteredAt: time.Now(),
	}

	err = reg.Add(manifest)
	require.NoError(t, err)

	manifests := reg.List()
	assert.Len(t, manifests, 1)
	assert.Equal(t, "test-manifest", manifests[0].ID)
}

func TestRegistryAddDuplicate(t *testing.T) {
	tmpDir := t.TempDir()
	registryPath := filepath.Join(tmpDir, "manifests.json")

	reg, err := NewRegistry(registryPath)
	require.NoError(t, err)

	manifest := Manifest{
		ID:           "test-manifest",
		Name:         "Test Manifest",
		Path:         "/path/to/shunt.yaml",
		Description:  "Test description",
		RegisteredAt: time.Now(),
	}

	err = reg.Add(manifest)
	require.NoError(t, err)

	// Try to add again with same ID
	err = reg.Add(manifest)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestRegistryGet(t *testing.T) {
	tmpDir := t.TempDir()
	registryPath := filepath.Join(tmpDir, "manifests.json")

	reg, err := NewRegistry(registryPath)
	require.NoError(t, err)

	manifest := Manifest{
		ID:           "test-manifest",
		Name:         "Test Manifest",
		Path:         "/path/to/shunt.yaml",
		Description:  "Test description",
		RegisteredAt: time.Now(),
	}

	err = reg.Add(manifest)
	require.NoError(t, err)

	retrieved, err := reg.Get("test-manifest")
	require.NoError(t, err)
	assert.Equal(t, "test-manifest", retrieved.ID)
	assert.Equal(t, "Test Manifest", retrieved.Name)
}

func TestRegistryGetNotFound(t *testing.T) {
	tmpDir := t.TempDir()
	registryPath := filepath.Join(tmpDir, "manifests.json")

	reg, err := NewRegistry(registryPath)
	require.NoError(t, err)

	_, err = reg.Get("nonexistent")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRegistryUpdate(t *testing.T) {
	tmpDir := t.TempDir()
	registryPath := filepath.Join(tmpDir, "manifests.json")

	reg, err := NewRegistry(registryPath)
	require.NoError(t, err)

	manifest := Manifest{
		ID:           "test-manifest",
		Name:         "Test Manifest",
		Path:         "/path/to/shunt.yaml",
		Description:  "Original description",
		RegisteredAt: time.Now(),
	}

	err = reg.Add(manifest)
	require.NoError(t, err)

	// Update the manifest
	manifest.Description = "Updated description"
	err = reg.Update(manifest)
	require.NoError(t, err)

	retrieved, err := reg.Get("test-manifest")
	require.NoError(t, err)
	assert.Equal(t, "Updated description", retrieved.Description)
}

func TestRegistryRemove(t *testing.T) {
	tmpDir := t.TempDir()
	registryPath := filepath.Join(tmpDir, "manifests.json")

	reg, err := NewRegistry(registryPath)
	require.NoError(t, err)

	manifest := Manifest{
		ID:           "test-manifest",
		Name:         "Test Manifest",
		Path:         "/path/to/shunt.yaml",
		Description:  "Test description",
		RegisteredAt: time.Now(),
	}

	err = reg.Add(manifest)
	require.NoError(t, err)

	err = reg.Remove("test-manifest")
	require.NoError(t, err)

	assert.Empty(t, reg.List())
}

func TestRegistrySave(t *testing.T) {
	tmpDir := t.TempDir()
	registryPath := filepath.Join(tmpDir, "manifests.json")

	reg, err := NewRegistry(registryPath)
	require.NoError(t, err)

	manifest := Manifest{
		ID:           "test-manifest",
		Name:         "Test Manifest",
		Path:         "/path/to/shunt.yaml",
		Description:  "Test description",
		RegisteredAt: time.Now(),
	}

	err = reg.Add(manifest)
	require.NoError(t, err)

	err = reg.Save()
	require.NoError(t, err)

	// Load in a new registry instance
	reg2, err := NewRegistry(registryPath)
	require.NoError(t, err)

	manifests := reg2.List()
	assert.Len(t, manifests, 1)
	assert.Equal(t, "test-manifest", manifests[0].ID)
}
