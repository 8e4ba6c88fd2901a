package registry

import (
	"crypto/rand"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	manifestIDMaxLength    = 64
	randomIDSuffixLength   = 8
	randomIDSuffixFallback = "abcdefgh"
)

var (
	manifestIDPattern   = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$`)
	nonAlphanumericExpr = regexp.MustCompile(`[^a-z0-9]+`)
)

// GenerateManifestID converts a manifest path into a sanitized registry ID.
func GenerateManifestID(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}

	id := SanitizeFilename(base)
	if id == "" {
		id = fmt.Sprintf("manifest-%s", randomIDSuffix(randomIDSuffixLength))
	}

	if len(id) > manifestIDMaxLength {
		id = trimToLength(id, manifestIDMaxLength)
	}

	if id == "" {
		id = fmt.Sprintf("manifest-%s", randomIDSuffix(randomIDSuffixLength))
	}

	return id
}

// ValidateManifestID ensures the provided ID matches the allowed pattern.
func ValidateManifestID(id string) error {
	if id == "" {
		return fmt.Errorf("manifest ID cannot be empty")
	}

	if len(id) > manifestIDMaxLength {
		return fmt.Errorf("manifest ID %q is too long: maximum length is %d characters", id, manifestIDMaxLength)
	}

	if !manifestIDPattern.MatchString(id) {
		return fmt.Errorf("invalid manifest ID %q: must match %s", id, manifestIDPattern.String())
	}

	return nil
}

// UniqueManifestID appends a numeric suffix until the ID stops colliding
// with an already registered manifest. Manifests in different directories
// often share a filename, so auto-generated IDs cannot assume the
// basename is unique.
func UniqueManifestID(id string, taken func(string) bool) string {
	if !taken(id) {
		return id
	}

	for i := 2; ; i++ {
		suffix := fmt.Sprintf("-%d", i)
		candidate := id
		if len(candidate)+len(suffix) > manifestIDMaxLength {
			candidate = trimToLength(candidate, manifestIDMaxLength-len(suffix))
		}
		candidate += suffix
		if !taken(candidate) {
			return candidate
		}
	}
}

// SanitizeFilename normalizes a filename into an identifier-friendly format.
func SanitizeFilename(name string) string {
	lowered := strings.ToLower(name)
	sanitized := nonAlphanumericExpr.ReplaceAllString(lowered, "-")
	sanitized = strings.Trim(sanitized, "-")

	if len(sanitized) > manifestIDMaxLength {
		sanitized = trimToLength(sanitized, manifestIDMaxLength)
	}

	return sanitized
}

func randomIDSuffix(length int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	if length <= 0 {
		return ""
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return randomIDSuffixFallback
	}

	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}

	return string(buf)
}

func trimToLength(value string, length int) string {
	if len(value) <= length {
		return strings.Trim(value, "-")
	}

	trimmed := value[:length]
	return strings.Trim(trimmed, "-")
}
