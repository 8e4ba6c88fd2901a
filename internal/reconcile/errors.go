package reconcile

import (
	"fmt"

	"github.com/shunt-io/shunt/internal/gateway"
)

// GatewayError represents a read-path failure: the device could not be
// listed or a resource could not be shown. It is always propagated to
// the caller unchanged and never retried here; a missing resource is
// not a GatewayError, absence is a normal fetch result.
type GatewayError struct {
	Kind string
	ID   string
	Op   string
	Err  error
}

// NewGatewayError creates a GatewayError for a read operation.
func NewGatewayError(kind, id, op string, err error) *GatewayError {
	return &GatewayError{Kind: kind, ID: id, Op: op, Err: err}
}

// Error returns a formatted message including the failing operation.
func (e *GatewayError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("gateway %s failed for kind %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("gateway %s failed for %s %s: %v", e.Op, e.Kind, e.ID, e.Err)
}

// Unwrap returns the underlying transport or device error.
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is checks if this error matches another GatewayError.
func (e *GatewayError) Is(target error) bool {
	_, ok := target.(*GatewayError)
	return ok
}

// OperationError represents a mutating call (create, edit, delete) the
// device did not accept. Status and Message carry the device's answer
// verbatim. The error is fatal to the reconcile call: nothing is rolled
// back and nothing is retried.
type OperationError struct {
	Kind    string
	ID      string
	Op      string
	Status  int
	Message string
	Err     error
}

// NewOperationError creates an OperationError from the gateway's error,
// extracting the device status and message when present. Status is 0
// for transport-level failures that never produced a device answer.
func NewOperationError(kind, id, op string, err error) *OperationError {
	return &OperationError{
		Kind:    kind,
		ID:      id,
		Op:      op,
		Status:  gateway.StatusOf(err),
		Message: gateway.MessageOf(err),
		Err:     err,
	}
}

// Error returns a formatted message including the device's status.
func (e *OperationError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s %s failed: %s", e.Op, e.Kind, e.ID, e.Message)
	}
	return fmt.Sprintf("%s %s %s failed with status %d: %s", e.Op, e.Kind, e.ID, e.Status, e.Message)
}

// Unwrap returns the underlying gateway error.
func (e *OperationError) Unwrap() error {
	return e.Err
}

// Is checks if this error matches another OperationError.
func (e *OperationError) Is(target error) bool {
	_, ok := target.(*OperationError)
	return ok
}
