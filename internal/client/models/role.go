package models

// Role is the coarse authorization tier. The set is closed: values other
// than "admin" coming from the backend map to RoleUser.
type Role int

const (
	RoleNone Role = iota
	RoleUser
	RoleAdmin
)

// ParseRole maps a wire value to a Role. Empty means absent; "admin" is the
// only elevated tier; anything else is treated as a regular user.
func ParseRole(s string) Role {
	switch s {
	case "":
		return RoleNone
	case "admin":
		return RoleAdmin
	default:
		return RoleUser
	}
}

// String returns the wire form; RoleNone is "".
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleUser:
		return "user"
	default:
		return ""
	}
}

// OrDefault returns RoleUser for RoleNone.
func (r Role) OrDefault() Role {
	if r == RoleNone {
		return RoleUser
	}
	return r
}
