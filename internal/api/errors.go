package api

import "fmt"

// AuthError reports a non-2xx response from a fetch endpoint. The caller
// should prompt for a new credential.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("api: authentication rejected (HTTP %d)", e.StatusCode)
}

// NetworkError wraps a transport-level failure (DNS, timeout, reset).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("api: network failure: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// FormatError reports a remote payload the client could not make sense of.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "api: unexpected payload: " + e.Reason
}
