package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable is the NetworkError class: transport failure, no response.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized matches a ServerError with status 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden matches a ServerError with status 403.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound matches a ServerError with status 404.
	ErrNotFound = errors.New("not found")
	// ErrUnexpectedResponse reports a body that could not be parsed as expected.
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// DefaultServerMessage is used when an error body carries no message.
const DefaultServerMessage = "Something went wrong. Please try again."

// ServerError is a response with a non-2xx status. Message comes from the
// body's "message" or "error" field.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

// Is lets callers match status classes with errors.Is.
func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}
