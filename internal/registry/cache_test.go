package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCacheNew(t *testing.T) {
	tmpDir := t.TempDir()
	cachePath := filepath.Join(tmpDir, "status.json")

	cache, err := NewStatusCache(cachePath)
	require.NoError(t, err)
	assert.NotNil(t, cache)

	// Should start empty
	_, ok := cache.Get("any-id")
	assert.False(t, ok)
}

func TestStatusCacheLoadExisting(t *testing.T) {
	tmpDir := t.TempDir()
	cachePath := filepath.Join(tmpDir, "status.json")

	// Copy test fixture
	testData, err := os.ReadFile("../../testdata/cache/populated-cache.json")
	require.NoError(t, err)
	err = os.WriteFile(cachePath, testData, 0644)
	require.NoError(t, err)

	cache, err := NewStatusCache(cachePath)
	require.NoError(t, err)

	status, ok := cache.Get("lab-fabric")
	assert.True(t, ok)
	assert.Equal(t, StatusSynced, status.Status)
	assert.Equal(t, "All 5 resources in sync", status.Summary)
	assert.Equal(t, 5, status.ResourceCount)
}

func TestStatusCacheSet(t *testing.T) {
	tmpDir := t.TempDir()
	cachePath := filepath.Join(tmpDir, "status.json")

	cache, err := NewStatusCache(cachePath)
	require.NoError(t, err)

	status := CachedStatus{
		Status:        StatusSynced,
		LastRun:       time.Now(),
		Summary:       "All resources in sync",
		ResourceCount: 5,
	}

	err = cache.Set("test-manifest", status)
	require.NoError(t, err)

	retrieved, ok := cache.Get("test-manifest")
	assert.True(t, ok)
	assert.Equal(t, StatusSynced, retrieved.Status)
	assert.Equal(t, "All resources in sync", retrieved.Summary)
}

func TestStatusCacheInvalidate(t *testing.T) {
	tmpDir := t.TempDir()
	cachePath := filepath.Join(tmpDir, "status.json")

	cache, err := NewStatusCache(cachePath)
	require.NoError(t, err)

	status := CachedStatus{
		Status:        StatusSynced,
		LastRun:       time.Now(),
		Summary:       "All resources in sync",
		ResourceCount: 5,
	}

	err = cache.Set("test-manifest", status)
	require.NoError(t, err)

	err = cache.Invalidate("test-manifest")
	require.NoError(t, err)

	_, ok := cache.Get("test-manifest")
	assert.False(t, ok)
}

func TestStatusCacheInvalidateAll(t *testing.T) {
	tmpDir := t.TempDir()
	cachePath := filepath.Join(tmpDir, "status.json")

	cache, err := NewStatusCache(cachePath)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		status := CachedStatus{
			Status:        StatusSynced,
			LastRun:       time.Now(),
			Summary:       "All resources in sync",
			ResourceCount: 5,
		}
		err = cache.Set("manifest-"+string(rune('0'+i)), status)
		require.NoError(t, err)
	}

	err = cache.InvalidateAll()
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, ok := cache.Get("manifest-" + string(rune('0'+i)))
		assert.False(t, ok)
	}
}

func TestStatusCachePrune(t *testing.T) {
	tmpDir := t.TempDir()
	cachePath := filepath.Join(tmpDir, "status.json")

	cache, err := NewStatusCache(cachePath)
	require.NoError(t, err)

	for _, id := range []string{"lab-fabric", "edge-fabric", "retired"} {
		err = cache.Set(id, CachedStatus{Status: StatusSynced, LastRun: time.Now()})
		require.NoError(t, err)
	}

	registered := map[string]struct{}{
		"lab-fabric":  {},
		"edge-fabric": {},
	}
	removed := cache.Prune(registered)
	assert.Equal(t, 1, removed)

	_, ok := cache.Get("retired")
	assert.False(t, ok)
	_, ok = cache.Get("lab-fabric")
	assert.True(t, ok)
}

func TestStatusCacheSave(t *testing.T) {
	tmpDir := t.TempDir()
	cachePath := filepath.Join(tmpDir, "status.json")

	cache, err := NewStatusCache(cachePath)
	require.NoError(t, err)

	status := CachedStatus{
		Status:          StatusDrift,
		LastRun:         time.Now(),
		Summary:         "2 resources drifted",
		ResourceCount:   8,
		FailedResources: nil,
	}

	err = cache.Set("test-manifest", status)
	require.NoError(t, err)

	err = cache.Save()
	require.NoError(t, err)

	// Load in a new cache instance
	cache2, err := NewStatusCache(cachePath)
	require.NoError(t, err)

	retrieved, ok := cache2.Get("test-manifest")
	assert.True(t, ok)
	assert.Equal(t, StatusDrift, retrieved.Status)
	assert.Equal(t, "2 resources drifted", retrieved.Summary)
}

func TestStatusCacheConcurrency(t *testing.T) {
	tmpDir := t.TempDir()
	cachePath := filepath.Join(tmpDir, "status.json")

	cache, err := NewStatusCache(cachePath)
	require.NoError(t, err)

	done := make(chan bool)

	go func() {
		for i := 0; i < 100; i++ {
			status := CachedStatus{
				Status:        StatusSynced,
				LastRun:       time.Now(),
				Summary:       "All resources in sync",
				ResourceCount: 5,
			}
			_ = cache.Set("manifest-1", status)
		}
		done <- true
	}()

	go func() {
		for i := 0; i < 100; i++ {
			cache.Get("manifest-1")
		}
		done <- true
	}()

	<-done
	<-done
}
