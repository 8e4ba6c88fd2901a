package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shunt-io/shunt/internal/model"
)

// Manifest is the full desired-state document for a set of devices.
type Manifest struct {
	Version     string     `yaml:"version" validate:"required,manifest_version"`
	Name        string     `yaml:"name" validate:"required,min=1,max=100"`
	Description string     `yaml:"description,omitempty"`
	Settings    Settings   `yaml:"settings,omitempty"`
	Vars        StringMap  `yaml:"vars,omitempty"`
	Devices     []Device   `yaml:"devices" validate:"required,min=1,dive"`
	Resources   []Resource `yaml:"resources" validate:"required,min=1,dive"`
}

// StringMap decodes a YAML mapping whose values may be any scalar into
// plain strings, so authors can write numbers and booleans naturally.
type StringMap map[string]string

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *StringMap) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}

	out := make(map[string]string, len(raw))
	for key, v := range raw {
		s, err := scalarString(v)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		out[key] = s
	}
	*m = out
	return nil
}

// Settings holds global execution parameters.
type Settings struct {
	Parallel        int  `yaml:"parallel,omitempty" validate:"omitempty,min=1,max=32"`
	Timeout         int  `yaml:"timeout,omitempty" validate:"omitempty,min=1,max=3600"`
	ContinueOnError bool `yaml:"continue_on_error,omitempty"`
	DryRun          bool `yaml:"dry_run,omitempty"`
	Verbose         bool `yaml:"verbose,omitempty"`
}

// Device describes one reachable switch and how to talk to it.
type Device struct {
	Name     string `yaml:"name" validate:"required,device_name"`
	Driver   string `yaml:"driver" validate:"required,oneof=vsh telnet"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Username string `yaml:"username,omitempty"`

	// PasswordEnv and EnablePasswordEnv name the environment variables
	// holding the device secrets. Secrets never appear in the manifest
	// itself.
	PasswordEnv       string `yaml:"password_env,omitempty"`
	EnablePasswordEnv string `yaml:"enable_password_env,omitempty"`

	// Binary overrides the CLI executable for the vsh driver.
	Binary string `yaml:"binary,omitempty"`
}

// Resource declares the desired state of one device resource.
type Resource struct {
	Kind       string            `yaml:"kind" validate:"required,kind_name"`
	ID         string            `yaml:"id" validate:"required,resource_id"`
	Device     string            `yaml:"device,omitempty"`
	State      string            `yaml:"state,omitempty" validate:"required,oneof=present absent"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
	DependsOn  []string          `yaml:"depends_on,omitempty"`
	Enabled    bool              `yaml:"enabled,omitempty"`
	Timeout    int               `yaml:"timeout,omitempty" validate:"omitempty,min=1,max=3600"`
}

// UnmarshalYAML applies defaults and accepts natural YAML scalars for
// attribute values. Authors write `access_vlan: 999` or `enabled: true`;
// the open attribute map stays string-typed underneath.
func (r *Resource) UnmarshalYAML(value *yaml.Node) error {
	type rawResource struct {
		Kind       string    `yaml:"kind"`
		ID         string    `yaml:"id"`
		Device     string    `yaml:"device"`
		State      string    `yaml:"state"`
		Attributes StringMap `yaml:"attributes"`
		DependsOn  []string  `yaml:"depends_on"`
		Enabled    *bool     `yaml:"enabled"`
		Timeout    int       `yaml:"timeout"`
	}

	var raw rawResource
	if err := value.Decode(&raw); err != nil {
		return err
	}

	r.Kind = raw.Kind
	r.ID = raw.ID
	r.Device = raw.Device
	r.State = raw.State
	if r.State == "" {
		r.State = string(model.StatePresent)
	}
	r.Attributes = map[string]string(raw.Attributes)
	r.DependsOn = append([]string(nil), raw.DependsOn...)
	if raw.Enabled != nil {
		r.Enabled = *raw.Enabled
	} else {
		r.Enabled = true
	}
	r.Timeout = raw.Timeout

	return nil
}

// Address returns the resource's fully qualified address. The device
// component is empty until ResolveDevices has run.
func (r Resource) Address() model.Address {
	return model.Address{Device: r.Device, Kind: r.Kind, ID: r.ID}
}

// Spec converts the manifest entry into the reconciler's input.
func (r Resource) Spec() model.ResourceSpec {
	attrs := make(map[string]string, len(r.Attributes))
	for name, value := range r.Attributes {
		attrs[name] = value
	}
	return model.ResourceSpec{
		Kind:       r.Kind,
		ID:         r.ID,
		Attributes: attrs,
		State:      model.DesiredState(r.State),
	}
}

// DeviceByName returns the named device declaration.
func (m *Manifest) DeviceByName(name string) (Device, bool) {
	for _, device := range m.Devices {
		if device.Name == name {
			return device, true
		}
	}
	return Device{}, false
}

// ResourceMap builds a lookup table keyed by address string.
func ResourceMap(resources []Resource) map[string]Resource {
	out := make(map[string]Resource, len(resources))
	for _, resource := range resources {
		out[resource.Address().String()] = resource
	}
	return out
}

// scalarString converts a decoded YAML value to its string form. Lists
// of scalars collapse to the comma-joined shape list attributes use;
// nested mappings are rejected.
func scalarString(v any) (string, error) {
	switch value := v.(type) {
	case nil:
		return "", nil
	case string:
		return value, nil
	case bool:
		return strconv.FormatBool(value), nil
	case int:
		return strconv.Itoa(value), nil
	case int64:
		return strconv.FormatInt(value, 10), nil
	case uint64:
		return strconv.FormatUint(value, 10), nil
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), nil
	case []any:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			s, err := scalarString(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	default:
		return "", fmt.Errorf("value %v is not a scalar", v)
	}
}

// ResolveDependsOn expands a possibly device-relative dependency
// reference into a full address, using the referring resource's device.
func ResolveDependsOn(ref string, device string) (model.Address, error) {
	addr, err := model.ParseAddress(ref)
	if err != nil {
		return model.Address{}, err
	}
	if addr.Device == "" {
		addr.Device = device
	}
	return addr, nil
}
