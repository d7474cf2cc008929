package transport

import (
	"errors"
	"fmt"
)

// Error describes a failed upstream call. StatusCode is zero when no response
// was received.
type Error struct {
	Service    string
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s request failure: %s %s: %v", e.Service, e.Method, e.Path, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s request failure: %s %s: status %d: %v", e.Service, e.Method, e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failure: %s %s: status %d: %s", e.Service, e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *Error) Unwrap() error { return e.Err }

// Unreachable reports whether the upstream never produced a response.
func (e *Error) Unreachable() bool { return e.StatusCode == 0 }

// AsError extracts the *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// StatusOf returns the upstream status code in err's chain, or zero.
func StatusOf(err error) int {
	if te, ok := AsError(err); ok {
		return te.StatusCode
	}
	return 0
}
