package engine

import (
	"fmt"

	"github.com/shunt-io/shunt/internal/config"
	"github.com/shunt-io/shunt/internal/kind"
	shunterrors "github.com/shunt-io/shunt/pkg/errors"
)

// ValidateManifestKinds checks every enabled resource against the kind
// registry: the kind must be registered and the asserted attributes must
// pass its schema. The manifest parser cannot do this because kinds are
// wired at startup, not declared in YAML.
func ValidateManifestKinds(m *config.Manifest, reg *kind.Registry) error {
	if m == nil {
		return shunterrors.NewValidationError("manifest", "manifest is nil", nil)
	}
	if reg == nil {
		return shunterrors.NewValidationError("manifest", "kind registry is nil", nil)
	}

	for i, resource := range m.Resources {
		if !resource.Enabled {
			continue
		}
		if err := reg.ValidateSpec(resource.Spec()); err != nil {
			field := fmt.Sprintf("resources[%d]", i)
			return shunterrors.NewValidationError(field, err.Error(), err)
		}
	}
	return nil
}
