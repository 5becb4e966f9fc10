// Package models defines the client-side data model of the session core:
// the persisted credential record, roles, session states, navigation targets
// and the user-scoped resources fetched through an authenticated session.
package models

// Credentials is the single per-device credential record. An empty string
// means the field is absent. AccessToken present implies UserID present.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	Role         Role
}

// Empty reports whether no field is set, the logged-out record.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == "" && c.UserID == "" && c.Role == RoleNone
}

// Authenticated reports whether the record carries a usable access token.
func (c Credentials) Authenticated() bool {
	return c.AccessToken != "" && c.UserID != ""
}

// Valid checks the record invariant.
func (c Credentials) Valid() bool {
	return c.AccessToken == "" || c.UserID != ""
}
