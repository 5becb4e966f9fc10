// Package common defines shared constants and sentinel errors used across
// the session layers of bakerykit. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// ErrUnauthenticated is returned when an authenticated call is attempted
	// without an access token. No request is issued.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrSessionExpired is returned when a refresh was attempted and failed.
	// The credential store has already been cleared.
	ErrSessionExpired = errors.New("session expired")

	// ErrAccountGone is returned when the identity check reports that the
	// signed-in user no longer exists. The credential store has been cleared.
	ErrAccountGone = errors.New("account no longer exists")
)

// Backend errors. The HTTP layer maps them to statuses.
var (
	ErrNotFound             = errors.New("not found")
	ErrAlreadyExists        = errors.New("already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
	ErrInvalidCode          = errors.New("invalid or expired code")
	ErrTwoFactorNotEnrolled = errors.New("two-factor authentication is not set up")
	ErrInternal             = errors.New("internal error")
)
