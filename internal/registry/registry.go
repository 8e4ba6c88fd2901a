package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Registry manages the manifest registry persistence
type Registry struct {
	path      string
	mu        sync.RWMutex
	version   string
	manifests []Manifest
}

// NewRegistry creates a new Registry instance and loads it from disk
func NewRegistry(path string) (*Registry, error) {
	r := &Registry{
		path:    path,
		version: "1.0",
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}

	// Load existing registry or start with an empty one
	if err := r.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		r.manifests = []Manifest{}
	}

	return r, nil
}

// Load reads the registry from disk
func (r *Registry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		return err
	}

	var file RegistryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse registry: %w", err)
	}

	r.version = file.Version
	r.manifests = file.Manifests

	return nil
}

// Save writes the registry to disk atomically
func (r *Registry) Save() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	file := RegistryFile{
		Version:   r.version,
		Manifests: r.manifests,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	// Write to temporary file first, then rename into place
	tmpPath := r.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// List returns all registered manifests
func (r *Registry) List() []Manifest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Manifest, len(r.manifests))
	copy(result, r.manifests)
	return result
}

// Get retrieves a manifest by ID
func (r *Registry) Get(id string) (Manifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.manifests {
		if m.ID == id {
			return m, nil
		}
	}

	return Manifest{}, fmt.Errorf("manifest not found: %s", id)
}

// Add adds a new manifest to the registry
func (r *Registry) Add(m Manifest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.manifests {
		if existing.ID == m.ID {
			return fmt.Errorf("manifest with ID %s already exists", m.ID)
		}
	}

	r.manifests = append(r.manifests, m)
	return nil
}

// Update updates an existing manifest
func (r *Registry) Update(m Manifest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.manifests {
		if existing.ID == m.ID {
			r.manifests[i] = m
			return nil
		}
	}

	return fmt.Errorf("manifest not found: %s", m.ID)
}

// Remove removes a manifest from the registry
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, m := range r.manifests {
		if m.ID == id {
			r.manifests = append(r.manifests[:i], r.manifests[i+1:]...)
			return nil
		}
	}

	return fmt.Errorf("manifest not found: %s", id)
}
