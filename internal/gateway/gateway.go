package gateway

import "context"

// Gateway is the device-side collaborator the reconciler drives. One
// Gateway talks to one device; implementations translate the operations
// into whatever transport the device speaks (vendor JSON CLI, telnet
// screen scraping, a test fake).
//
// All operations are synchronous. Cancellation and timeouts ride on the
// context; the gateway owns no retry policy.
type Gateway interface {
	// List returns the ids present in the kind's collection on the
	// device. Read-only.
	List(ctx context.Context, kind string) ([]string, error)

	// Show returns the attribute map of one resource. A missing
	// resource is reported as a *StatusError with StatusNotFound, not
	// as a nil map. Read-only.
	Show(ctx context.Context, kind, id string) (map[string]string, error)

	// Create makes the resource with the supplied attributes and
	// returns the device's view of it when the driver provides one.
	Create(ctx context.Context, kind, id string, attrs map[string]string) (map[string]string, error)

	// Edit updates exactly the supplied attributes, leaving all others
	// untouched.
	Edit(ctx context.Context, kind, id string, attrs map[string]string) (map[string]string, error)

	// Delete removes the resource. Drivers that can tell may report a
	// delete of an already-gone resource as StatusNotFound; callers
	// decide whether that counts as success.
	Delete(ctx context.Context, kind, id string) error
}

// Closer is implemented by gateways holding a live connection.
type Closer interface {
	Close() error
}
