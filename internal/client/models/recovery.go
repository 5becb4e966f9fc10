package models

// RecoveryTicket tracks an in-progress forgot-password flow. It is never
// persisted. Email is normalized.
type RecoveryTicket struct {
	Email     string
	ResetCode string
}
