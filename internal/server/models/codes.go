package models

import "time"

// ResetCode is an emailed password-reset code. One per email.
type ResetCode struct {
	Email   string
	Code    string
	Expires time.Time
}

// LoginChallenge is issued when a password login still needs a second factor.
type LoginChallenge struct {
	ID      string
	UserID  string
	Expires time.Time
}
