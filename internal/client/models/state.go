package models

// State is the per-device session state. LoggedOut and LoggedIn are the only
// stable states; the others resolve within one network round trip.
type State int

const (
	StateLoggedOut State = iota
	StateAuthenticating
	StateTwoFactorPending
	StateLoggedIn
)

func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged_out"
	case StateAuthenticating:
		return "authenticating"
	case StateTwoFactorPending:
		return "two_factor_pending"
	case StateLoggedIn:
		return "logged_in"
	default:
		return "unknown"
	}
}

// StateChange is delivered to session subscribers on every transition.
type StateChange struct {
	From   State
	To     State
	Reason string
}

// Destination is a post-authentication navigation target.
type Destination string

const (
	RouteLogin          Destination = "login"
	RouteUserDashboard  Destination = "user_dashboard"
	RouteAdminDashboard Destination = "admin_dashboard"
)

// DestinationFor picks the dashboard matching role.
func DestinationFor(role Role) Destination {
	if role == RoleAdmin {
		return RouteAdminDashboard
	}
	return RouteUserDashboard
}

// Surface is the navigation surface mounted by the role router.
type Surface int

const (
	SurfaceNone Surface = iota
	SurfaceUser
	SurfaceAdmin
)

func (s Surface) String() string {
	switch s {
	case SurfaceUser:
		return "user"
	case SurfaceAdmin:
		return "admin"
	default:
		return "none"
	}
}
