// Package vlan defines the VLAN resource kind.
package vlan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shunt-io/shunt/internal/kind"
)

// Definition returns the VLAN kind: 802.1Q VLANs addressed by their
// numeric id. The name attribute mirrors what switches accept for a
// VLAN name; ports is the set of member ports on fabrics that model
// membership as a VLAN attribute.
func Definition() kind.Definition {
	return kind.Definition{
		Name:        "vlan",
		Family:      "vlan",
		Version:     "1.0.0",
		APIVersion:  "^1",
		Description: "802.1Q VLAN",
		Attributes: []kind.Attribute{
			{Name: "name", Type: kind.TypeString, MaxLen: 32},
			{Name: "scope", Type: kind.TypeEnum, Enum: []string{"local", "fabric"}},
			{Name: "description", Type: kind.TypeString},
			{Name: "ports", Type: kind.TypeList},
		},
		ValidateID: validateID,
	}
}

func validateID(id string) error {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("vlan id '%s' is not an integer", id)
	}
	if n < 1 || n > 4094 {
		return fmt.Errorf("vlan id %d is outside the range 1-4094", n)
	}
	return nil
}
