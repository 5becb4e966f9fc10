package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/bakerykit/internal/client/client"
	"github.com/dmitrijs2005/bakerykit/internal/common"
	"github.com/dmitrijs2005/bakerykit/internal/shared"
)

// User-facing validation messages.
const (
	MsgFillAllFields    = "Please fill in all fields."
	MsgPasswordMismatch = "Passwords do not match."
	MsgEmailRequired    = "Please enter your email address."
	MsgPasswordRequired = "Please enter your password."
	MsgCodeRequired     = "Please enter the verification code."
	MsgWeakPassword     = "Password must be at least 8 characters long and contain an uppercase letter, a lowercase letter, a number and a special character."
)

// ValidationError is produced before any request is sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// ValidatePassword enforces the strength policy: length and one character of
// each class.
func ValidatePassword(password string) error {
	if !shared.IsStrongPassword(password) {
		return invalid(MsgWeakPassword)
	}
	return nil
}

// validateNewPassword runs the local checks of a password change in order:
// required fields, confirmation, strength.
func validateNewPassword(password, confirm string, required ...string) error {
	if blank(append(required, password, confirm)...) {
		return invalid(MsgFillAllFields)
	}
	if password != confirm {
		return invalid(MsgPasswordMismatch)
	}
	return ValidatePassword(password)
}

// Describe turns an error into the title and message pair shown to the user.
func Describe(err error) (title, message string) {
	var ve *ValidationError
	var se *client.ServerError

	switch {
	case err == nil:
		return "", ""
	case errors.As(err, &ve):
		return "Invalid input", ve.Message
	case errors.Is(err, common.ErrSessionExpired):
		return "Session expired", "Your session has expired. Please log in again."
	case errors.Is(err, common.ErrAccountGone):
		return "Account unavailable", "This account no longer exists. Please log in again."
	case errors.Is(err, common.ErrUnauthenticated):
		return "Not signed in", "Please log in to continue."
	case errors.As(err, &se):
		return "Error", se.Message
	case errors.Is(err, client.ErrUnexpectedResponse):
		return "Error", "Unexpected response from server."
	case errors.Is(err, client.ErrUnavailable):
		return "Network error", "Unable to reach the server. Check your connection and try again."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Network error", "The request timed out. Please try again."
	default:
		return "Error", client.DefaultServerMessage
	}
}
