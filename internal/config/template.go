package config

import (
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	shunterrors "github.com/shunt-io/shunt/pkg/errors"
)

// templateContext is what manifest templates see. Device fields render
// with Vars only; resource attributes additionally see the resolved
// device and the resource's own identity.
type templateContext struct {
	Vars     map[string]string
	Device   Device
	Resource templateResource
}

type templateResource struct {
	Kind string
	ID   string
}

// RenderManifest expands template expressions in device fields and
// resource attribute values in place. Values without template
// delimiters pass through untouched.
func RenderManifest(m *Manifest) error {
	if m == nil {
		return shunterrors.NewValidationError("manifest", "manifest is nil", nil)
	}

	vars := map[string]string(m.Vars)

	for i := range m.Devices {
		ctx := templateContext{Vars: vars, Device: m.Devices[i]}

		host, err := renderValue(m.Devices[i].Host, ctx)
		if err != nil {
			return shunterrors.NewValidationError(fieldForDevice(i, "host"), err.Error(), err)
		}
		m.Devices[i].Host = host

		username, err := renderValue(m.Devices[i].Username, ctx)
		if err != nil {
			return shunterrors.NewValidationError(fieldForDevice(i, "username"), err.Error(), err)
		}
		m.Devices[i].Username = username
	}

	for i := range m.Resources {
		resource := &m.Resources[i]
		device, _ := m.DeviceByName(resource.Device)
		ctx := templateContext{
			Vars:     vars,
			Device:   device,
			Resource: templateResource{Kind: resource.Kind, ID: resource.ID},
		}

		for name, value := range resource.Attributes {
			rendered, err := renderValue(value, ctx)
			if err != nil {
				return shunterrors.NewValidationError(fieldForResource(i, "attributes."+name), err.Error(), err)
			}
			resource.Attributes[name] = rendered
		}
	}

	return nil
}

func renderValue(value string, ctx templateContext) (string, error) {
	if !strings.Contains(value, "{{") {
		return value, nil
	}

	tmpl, err := template.New("value").Funcs(sprig.FuncMap()).Option("missingkey=error").Parse(value)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, ctx); err != nil {
		return "", err
	}
	return out.String(), nil
}
