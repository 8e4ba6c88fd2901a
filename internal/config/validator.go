package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"

	shunterrors "github.com/shunt-io/shunt/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	deviceNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	kindNamePattern   = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	resourceIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_./-]*$`)
)

// validatorInstance configures and returns the shared validator used
// across the config package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("manifest_version", func(fl validator.FieldLevel) bool {
			_, err := semver.NewVersion(fl.Field().String())
			return err == nil
		})

		_ = v.RegisterValidation("device_name", func(fl validator.FieldLevel) bool {
			return deviceNamePattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("kind_name", func(fl validator.FieldLevel) bool {
			return kindNamePattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("resource_id", func(fl validator.FieldLevel) bool {
			return resourceIDPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateManifest performs structural and cross-reference validation on
// an entire manifest. Kind schemas are applied later through the kind
// registry, once the engine knows which kinds are loaded.
func ValidateManifest(m *Manifest) error {
	if m == nil {
		return shunterrors.NewValidationError("manifest", "manifest is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(m); err != nil {
		return convertValidationError(err)
	}

	deviceNames := make(map[string]struct{}, len(m.Devices))
	for i, device := range m.Devices {
		if _, exists := deviceNames[device.Name]; exists {
			return shunterrors.NewValidationError(fieldForDevice(i, "name"), fmt.Sprintf("duplicate device name %q", device.Name), nil)
		}
		deviceNames[device.Name] = struct{}{}

		if device.Driver == "telnet" && device.Host == "" {
			return shunterrors.NewValidationError(fieldForDevice(i, "host"), "host is required for the telnet driver", nil)
		}
	}

	addresses := make(map[string]int, len(m.Resources))
	for i, resource := range m.Resources {
		if _, ok := deviceNames[resource.Device]; !ok {
			return shunterrors.NewValidationError(fieldForResource(i, "device"), fmt.Sprintf("references unknown device %q", resource.Device), nil)
		}

		key := resource.Address().String()
		if _, exists := addresses[key]; exists {
			return shunterrors.NewValidationError(fieldForResource(i, "id"), fmt.Sprintf("duplicate resource address %q", key), nil)
		}
		addresses[key] = i
	}

	for i, resource := range m.Resources {
		for _, ref := range resource.DependsOn {
			addr, err := ResolveDependsOn(ref, resource.Device)
			if err != nil {
				return shunterrors.NewValidationError(fieldForResource(i, "depends_on"), err.Error(), err)
			}
			target := addr.String()
			if _, ok := addresses[target]; !ok {
				return shunterrors.NewValidationError(fieldForResource(i, "depends_on"), fmt.Sprintf("references unknown resource %q", ref), nil)
			}
			if target == resource.Address().String() {
				return shunterrors.NewValidationError(fieldForResource(i, "depends_on"), "resource depends on itself", nil)
			}
		}
	}

	if cycle := detectCycle(m.Resources); len(cycle) > 0 {
		return shunterrors.NewValidationError("resources", fmt.Sprintf("dependency cycle detected: %s", strings.Join(cycle, " -> ")), nil)
	}

	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return shunterrors.NewValidationError(field, msg, err)
	}

	return shunterrors.NewValidationError("manifest", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	var lowered []string
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}

func fieldForDevice(index int, field string) string {
	return fmt.Sprintf("devices[%d].%s", index, field)
}

func fieldForResource(index int, field string) string {
	return fmt.Sprintf("resources[%d].%s", index, field)
}
