// Package port defines the access-port resource kind.
package port

import (
	"fmt"
	"regexp"

	"github.com/shunt-io/shunt/internal/kind"
)

var portIDPattern = regexp.MustCompile(`^[0-9]+(/[0-9]+){0,2}$`)

// Definition returns the port kind: switch-facing interface settings
// addressed by the device port id ("12", "1/1", "1/1/3").
func Definition() kind.Definition {
	return kind.Definition{
		Name:        "port",
		Family:      "port",
		Version:     "1.0.0",
		APIVersion:  "^1",
		Description: "access port configuration",
		Attributes: []kind.Attribute{
			{Name: "description", Type: kind.TypeString, MaxLen: 64},
			{Name: "access_vlan", Type: kind.TypeInt, Min: 1, Max: 4094},
			{Name: "enabled", Type: kind.TypeBool},
		},
		ValidateID: validateID,
	}
}

func validateID(id string) error {
	if !portIDPattern.MatchString(id) {
		return fmt.Errorf("port id '%s' is not a valid port reference", id)
	}
	return nil
}
