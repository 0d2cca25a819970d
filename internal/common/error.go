// Package common defines shared constants and sentinel errors used across
// client and server layers of FileDrop. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Validation errors (bad or missing input, user-correctable).
	ErrorValidation = errors.New("validation error")

	// Object storage is missing required configuration (endpoint, bucket
	// or credentials). Surfaced distinctly so operators can tell a
	// deployment problem from a transient upstream failure.
	ErrorNotConfigured = errors.New("object storage not configured")
)
