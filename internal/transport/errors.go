package transport

import (
	"errors"
	"fmt"
)

// NetworkInitError reports that a client or request could not be built.
type NetworkInitError struct {
	URL string
	Err error
}

func (e *NetworkInitError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("network init: %v", e.Err)
	}
	return fmt.Sprintf("network init %s: %v", e.URL, e.Err)
}

func (e *NetworkInitError) Unwrap() error { return e.Err }

// NetworkRequestError reports a transport failure on one call: DNS,
// refused connection, TLS, timeout or a truncated body.
type NetworkRequestError struct {
	URL string
	Err error
}

func (e *NetworkRequestError) Error() string {
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *NetworkRequestError) Unwrap() error { return e.Err }

// IsInitError reports whether err carries a NetworkInitError.
func IsInitError(err error) bool {
	var ie *NetworkInitError
	return errors.As(err, &ie)
}

// IsRequestError reports whether err carries a NetworkRequestError.
func IsRequestError(err error) bool {
	var re *NetworkRequestError
	return errors.As(err, &re)
}
