package model

import (
	"fmt"
	"strings"
)

// Address identifies one resource in a manifest: the device it lives on,
// its kind, and its device-level id.
type Address struct {
	Device string
	Kind   string
	ID     string
}

// String renders the canonical device/kind/id form.
func (a Address) String() string {
	return a.Device + "/" + a.Kind + "/" + a.ID
}

// IsZero reports whether the address has no components set.
func (a Address) IsZero() bool {
	return a.Device == "" && a.Kind == "" && a.ID == ""
}

// ParseAddress parses "device/kind/id" or the relative "kind/id" form.
// The device component is left empty for relative addresses; callers
// resolve it against the referencing resource's device.
//
// Ids may themselves contain slashes (port "1/1/3"); such resources must
// be referenced in the device-qualified form so the id is everything
// after the second separator.
func ParseAddress(s string) (Address, error) {
	parts := strings.SplitN(s, "/", 3)
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			return Address{}, fmt.Errorf("invalid resource address %q", s)
		}
	}

	switch len(parts) {
	case 2:
		return Address{Kind: parts[0], ID: parts[1]}, nil
	case 3:
		return Address{Device: parts[0], Kind: parts[1], ID: parts[2]}, nil
	default:
		return Address{}, fmt.Errorf("invalid resource address %q: want [device/]kind/id", s)
	}
}
