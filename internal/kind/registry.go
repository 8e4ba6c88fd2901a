package kind

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/shunt-io/shunt/internal/logger"
	"github.com/shunt-io/shunt/internal/model"
)

// EngineAPIVersion is the kind API version this engine implements.
// Definitions declare a semver constraint against it; incompatible
// kinds are rejected at registration.
const EngineAPIVersion = "1.0.0"

// ErrKindNotFound is returned when a kind has not been registered.
type ErrKindNotFound struct {
	Name string
}

func (e ErrKindNotFound) Error() string {
	return fmt.Sprintf("kind '%s' not found in registry\nHint: ensure the kind is registered before loading manifests that use it", e.Name)
}

// Registry holds the registered kind definitions. It implements the
// reconciler's Canonicalizer so observed and desired attributes share
// one normalization path.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Definition
	log   *logger.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		kinds: make(map[string]Definition),
		log:   log,
	}
}

// Register adds a definition after validating it and checking its API
// constraint against EngineAPIVersion. Duplicate names are rejected.
func (r *Registry) Register(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if def.Family == "" {
		def.Family = def.Name
	}

	constraint, err := semver.NewConstraint(def.APIVersion)
	if err != nil {
		return fmt.Errorf("kind '%s' has invalid APIVersion constraint '%s': %w", def.Name, def.APIVersion, err)
	}
	if !constraint.Check(semver.MustParse(EngineAPIVersion)) {
		return fmt.Errorf("kind '%s' requires kind API %s, engine provides %s", def.Name, def.APIVersion, EngineAPIVersion)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.kinds[def.Name]; exists {
		return fmt.Errorf("kind '%s' already registered", def.Name)
	}
	r.kinds[def.Name] = def

	r.log.WithFields(map[string]any{"kind": def.Name, "version": def.Version}).Debug("registered kind")
	return nil
}

// Get returns the definition for a kind name.
func (r *Registry) Get(name string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.kinds[name]
	if !ok {
		return Definition{}, ErrKindNotFound{Name: name}
	}
	return def, nil
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CanonicalAttributes normalizes attrs using the kind's schema.
func (r *Registry) CanonicalAttributes(kind string, attrs map[string]string) (map[string]string, error) {
	def, err := r.Get(kind)
	if err != nil {
		return nil, err
	}
	return def.CanonicalAttributes(attrs)
}

// ValidateSpec checks a resource spec against its kind's schema.
func (r *Registry) ValidateSpec(spec model.ResourceSpec) error {
	def, err := r.Get(spec.Kind)
	if err != nil {
		return err
	}
	return def.ValidateSpec(spec)
}
