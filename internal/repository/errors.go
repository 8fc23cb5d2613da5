package repository

import (
	"errors"
	"fmt"
)

// ErrMalformedPayload marks a 2xx provider reply that lacks a required field.
var ErrMalformedPayload = errors.New("malformed provider payload")

// UnknownErrorMessage is used when a provider error body carries no message.
const UnknownErrorMessage = "Unknown error"

// HTTPStatusError is returned when the provider answers with a non-2xx status.
type HTTPStatusError struct {
	StatusCode int
	Message    string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("weather provider returned status %d: %s", e.StatusCode, e.Message)
}

// TransportError is returned when no response could be obtained from the provider.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "weather provider unreachable: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
