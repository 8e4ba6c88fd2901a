package gateway

import (
	"errors"
	"fmt"
)

// Device status codes shared by the drivers. The vendor CLI answers
// with HTTP-style codes in its JSON envelope; the telnet driver maps
// its screen-scraped outcomes onto the same values so callers only
// deal with one vocabulary.
const (
	StatusOK          = 200
	StatusCreated     = 201
	StatusBadRequest  = 400
	StatusNotFound    = 404
	StatusConflict    = 409
	StatusDeviceError = 500
	StatusUnsupported = 501
)

// IsSuccess reports whether a device status is a success code.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

// StatusError carries a non-success device status and the device's
// message verbatim. Transport failures (process spawn, connection
// drop, malformed payloads) are ordinary errors, not StatusErrors.
type StatusError struct {
	Status  int
	Message string
}

// NewStatusError creates a StatusError.
func NewStatusError(status int, message string) *StatusError {
	return &StatusError{Status: status, Message: message}
}

// Error formats the status and device message.
func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("device returned status %d", e.Status)
	}
	return fmt.Sprintf("device returned status %d: %s", e.Status, e.Message)
}

// Is matches any other StatusError.
func (e *StatusError) Is(target error) bool {
	_, ok := target.(*StatusError)
	return ok
}

// IsNotFound reports whether err is a device not-found answer. Absence
// is a normal value for the reconciler, so this is the classifier it
// uses to keep not-found out of the error path.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status == StatusNotFound
	}
	return false
}

// StatusOf extracts the device status from err, or 0 when err carries
// none.
func StatusOf(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status
	}
	return 0
}

// MessageOf extracts the device message from err, falling back to the
// plain error text.
func MessageOf(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
