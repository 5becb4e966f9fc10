package models

// TwoFactorStatus mirrors the backend flag for display only.
type TwoFactorStatus struct {
	Enabled bool
}

// TwoFactorSecret is what the backend hands out when a second factor is
// enabled. URL is the otpauth:// provisioning URI when provided.
type TwoFactorSecret struct {
	Secret  string
	URL     string
	Issuer  string
	Account string
}

// LoginResult is the outcome of a password login. When TwoFactorRequired is
// set the session is pending and ChallengeID references the server challenge.
type LoginResult struct {
	Credentials       Credentials
	TwoFactorRequired bool
	ChallengeID       string
}
