package registry

import (
	"fmt"

	"modelcatalog/internal/transport"
)

// Error is returned when a registry call fails in transport or is rejected upstream.
type Error struct {
	Cause *transport.Error
}

func (e *Error) Error() string { return "registry: " + e.Cause.Error() }

func (e *Error) Unwrap() error { return e.Cause }

// NotFoundError reports that an exact lookup matched nothing upstream.
type NotFoundError struct {
	Name    string
	Version string
	Err     error
}

func (e *NotFoundError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("model %q not found", e.Name)
	}
	return fmt.Sprintf("model %q version %q not found", e.Name, e.Version)
}

func (e *NotFoundError) Unwrap() error { return e.Err }
