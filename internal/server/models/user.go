package models

import "time"

// Role values stored in users.role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PasswordHash string
	Role         string
	TOTPSecret   string
	TOTPEnabled  bool
	CreatedAt    time.Time
}

// ProfileUpdate carries optional profile fields; empty means unchanged.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}
