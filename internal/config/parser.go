package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	shunterrors "github.com/shunt-io/shunt/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseManifest loads a manifest from disk, renders its templates,
// validates it, and returns the resulting model.
func ParseManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, shunterrors.NewParseError(path, 0, err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, shunterrors.NewParseError(path, extractLine(err), err)
	}

	if err := ResolveDevices(&manifest); err != nil {
		return nil, err
	}

	if err := RenderManifest(&manifest); err != nil {
		return nil, err
	}

	if err := ValidateManifest(&manifest); err != nil {
		return nil, err
	}

	return &manifest, nil
}

// ResolveDevices fills in the device of resources that omit one. The
// shorthand only works when the manifest declares a single device;
// anything else must be explicit.
func ResolveDevices(m *Manifest) error {
	if m == nil {
		return shunterrors.NewValidationError("manifest", "manifest is nil", nil)
	}

	for i := range m.Resources {
		if m.Resources[i].Device != "" {
			continue
		}
		if len(m.Devices) != 1 {
			return shunterrors.NewValidationError(
				fieldForResource(i, "device"),
				"device is required when the manifest declares multiple devices",
				nil,
			)
		}
		m.Resources[i].Device = m.Devices[0].Name
	}

	return nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}

	return line
}
