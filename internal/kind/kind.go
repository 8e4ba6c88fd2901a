package kind

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/shunt-io/shunt/internal/model"
)

// AttrType enumerates the schema types an attribute can carry.
type AttrType string

const (
	TypeString AttrType = "string"
	TypeInt    AttrType = "int"
	TypeBool   AttrType = "bool"
	TypeEnum   AttrType = "enum"
	TypeList   AttrType = "list"
)

var kindNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Attribute describes one schema attribute of a resource kind.
type Attribute struct {
	Name     string
	Type     AttrType
	Required bool

	// Enum lists the allowed values for TypeEnum attributes.
	Enum []string

	// MaxLen bounds TypeString values; 0 means unbounded.
	MaxLen int

	// Min and Max bound TypeInt values; both 0 means unbounded.
	Min int
	Max int
}

// Definition describes a resource kind: its identity, the gateway
// command family it maps to, and the attribute schema that drives
// validation and canonicalization. New kinds plug into the same
// reconciliation engine by registering a Definition.
type Definition struct {
	Name        string
	Family      string
	Version     string
	APIVersion  string
	Description string
	Attributes  []Attribute

	// ValidateID checks a device-level id for this kind. Optional.
	ValidateID func(id string) error
}

// Validate ensures the definition is well-formed.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("kind definition requires a non-empty Name")
	}
	if !kindNamePattern.MatchString(d.Name) {
		return fmt.Errorf("kind '%s' has an invalid name (want lowercase identifier)", d.Name)
	}
	if _, err := semver.NewVersion(d.Version); err != nil {
		return fmt.Errorf("kind '%s' has invalid Version '%s': %w", d.Name, d.Version, err)
	}
	if _, err := semver.NewConstraint(d.APIVersion); err != nil {
		return fmt.Errorf("kind '%s' has invalid APIVersion constraint '%s': %w", d.Name, d.APIVersion, err)
	}

	seen := map[string]struct{}{}
	for _, attr := range d.Attributes {
		if strings.TrimSpace(attr.Name) == "" {
			return fmt.Errorf("kind '%s' declares an attribute with an empty name", d.Name)
		}
		if _, dup := seen[attr.Name]; dup {
			return fmt.Errorf("kind '%s' declares attribute '%s' more than once", d.Name, attr.Name)
		}
		seen[attr.Name] = struct{}{}

		switch attr.Type {
		case TypeString, TypeInt, TypeBool, TypeList:
		case TypeEnum:
			if len(attr.Enum) == 0 {
				return fmt.Errorf("kind '%s' attribute '%s' is an enum with no values", d.Name, attr.Name)
			}
		default:
			return fmt.Errorf("kind '%s' attribute '%s' has unknown type '%s'", d.Name, attr.Name, attr.Type)
		}
	}
	return nil
}

func (d Definition) attribute(name string) (Attribute, bool) {
	for _, attr := range d.Attributes {
		if attr.Name == name {
			return attr, true
		}
	}
	return Attribute{}, false
}

// CanonicalAttributes normalizes attribute values to their canonical
// string form: ints reformat to plain decimal, bools to "true"/"false",
// lists to a sorted comma-joined set. Empty values stay empty (they
// mean "not asserted"). Keys outside the schema pass through untouched,
// so device-side extras never break a fetch; strict schema checking is
// ValidateSpec's job.
func (d Definition) CanonicalAttributes(attrs map[string]string) (map[string]string, error) {
	if attrs == nil {
		return nil, nil
	}

	out := make(map[string]string, len(attrs))
	for name, value := range attrs {
		attr, known := d.attribute(name)
		if !known || value == "" {
			out[name] = value
			continue
		}

		canonical, err := canonicalValue(attr, value)
		if err != nil {
			return nil, fmt.Errorf("attribute '%s': %w", name, err)
		}
		out[name] = canonical
	}
	return out, nil
}

// ValidateSpec checks a resource spec against the schema: the id rule,
// unknown attribute names, required attributes, and value validity.
func (d Definition) ValidateSpec(spec model.ResourceSpec) error {
	if d.ValidateID != nil {
		if err := d.ValidateID(spec.ID); err != nil {
			return err
		}
	}

	for name, value := range spec.Attributes {
		attr, known := d.attribute(name)
		if !known {
			return fmt.Errorf("kind '%s' has no attribute '%s'", d.Name, name)
		}
		if value == "" {
			continue
		}
		if _, err := canonicalValue(attr, value); err != nil {
			return fmt.Errorf("attribute '%s': %w", name, err)
		}
	}

	if spec.State != model.StatePresent {
		return nil
	}
	asserted := spec.AssertedAttributes()
	for _, attr := range d.Attributes {
		if attr.Required {
			if _, ok := asserted[attr.Name]; !ok {
				return fmt.Errorf("kind '%s' requires attribute '%s'", d.Name, attr.Name)
			}
		}
	}
	return nil
}

func canonicalValue(attr Attribute, value string) (string, error) {
	switch attr.Type {
	case TypeString:
		if attr.MaxLen > 0 && len(value) > attr.MaxLen {
			return "", fmt.Errorf("value exceeds %d characters", attr.MaxLen)
		}
		return value, nil

	case TypeInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return "", fmt.Errorf("'%s' is not an integer", value)
		}
		if (attr.Min != 0 || attr.Max != 0) && (n < attr.Min || n > attr.Max) {
			return "", fmt.Errorf("%d is outside the range %d-%d", n, attr.Min, attr.Max)
		}
		return strconv.Itoa(n), nil

	case TypeBool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return "", fmt.Errorf("'%s' is not a boolean", value)
		}
		return strconv.FormatBool(b), nil

	case TypeEnum:
		for _, allowed := range attr.Enum {
			if value == allowed {
				return value, nil
			}
		}
		return "", fmt.Errorf("'%s' is not one of %s", value, strings.Join(attr.Enum, ", "))

	case TypeList:
		items := strings.Split(value, ",")
		seen := make(map[string]struct{}, len(items))
		set := make([]string, 0, len(items))
		for _, item := range items {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			set = append(set, item)
		}
		sort.Strings(set)
		return strings.Join(set, ","), nil

	default:
		return "", fmt.Errorf("unknown attribute type '%s'", attr.Type)
	}
}
