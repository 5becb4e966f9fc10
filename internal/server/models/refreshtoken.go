package models

import "time"

// RefreshToken is an opaque, single-use token that trades for a new
// access/refresh pair.
type RefreshToken struct {
	UserID  string
	Token   string
	Expires time.Time
}

// ExpiredAt reports whether the token is no longer usable at now.
func (t RefreshToken) ExpiredAt(now time.Time) bool {
	return !now.Before(t.Expires)
}
