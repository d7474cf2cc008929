package manager

import (
	"errors"

	"modelcatalog/internal/instancetype"
	"modelcatalog/internal/manifest"
	"modelcatalog/internal/registry"
	"modelcatalog/internal/transport"
)

// providerNotFoundError is returned for routes naming an unregistered provider.
type providerNotFoundError struct{ provider string }

func (e providerNotFoundError) Error() string { return "unknown model provider: " + e.provider }

// ErrProviderNotFound constructs a providerNotFoundError.
func ErrProviderNotFound(provider string) error { return providerNotFoundError{provider: provider} }

// IsNotFound reports whether err names a missing provider, model, or version (return 404).
func IsNotFound(err error) bool {
	var pe providerNotFoundError
	var nf *registry.NotFoundError
	return errors.As(err, &pe) || errors.As(err, &nf)
}

// IsValidation reports whether the request itself was malformed (return 400).
func IsValidation(err error) bool {
	var ve *manifest.ValidationError
	return errors.As(err, &ve)
}

// ValidationFields returns the rejected fields carried by err, if any.
func ValidationFields(err error) []manifest.FieldError {
	var ve *manifest.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// IsUnknownInstanceType reports whether the requested instance type is not in the table (return 422).
func IsUnknownInstanceType(err error) bool {
	var ue *instancetype.UnknownInstanceTypeError
	return errors.As(err, &ue)
}

// IsUpstreamUnavailable reports whether an upstream never answered (return 503).
func IsUpstreamUnavailable(err error) bool {
	te, ok := transport.AsError(err)
	return ok && te.Unreachable()
}

// IsUpstreamRejected reports whether an upstream answered with a failure status
// other than a not-found lookup (return 502).
func IsUpstreamRejected(err error) bool {
	te, ok := transport.AsError(err)
	return ok && !te.Unreachable() && !IsNotFound(err)
}

// UpstreamStatus returns the status code an upstream answered with, or 0.
func UpstreamStatus(err error) int { return transport.StatusOf(err) }

// dependencyUnavailableError signals a feature whose backing service is not
// configured, so the HTTP layer can return 503 instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing dependency.
func IsDependencyUnavailable(err error) bool {
	var de dependencyUnavailableError
	return errors.As(err, &de)
}
