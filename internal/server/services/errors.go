package services

import "errors"

// Messages returned to clients for rejected input.
const (
	MsgFieldsRequired = "All fields are required"
	MsgInvalidEmail   = "Invalid email address"
	MsgWeakPassword   = "Password must be at least 8 characters long and contain an uppercase letter, a lowercase letter, a number and a special character"
	MsgInvalidItem    = "Product id and a non-negative quantity are required"
)

// ValidationError reports input the service refused before touching storage.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
