package client

// Wire shapes of the backend REST API. Field names follow the backend's
// camelCase JSON.

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login, refresh and two-factor verification.
// Role may be absent; TwoFactorRequired/ChallengeID only appear on login.
type AuthResponse struct {
	AccessToken       string `json:"accessToken"`
	RefreshToken      string `json:"refreshToken,omitempty"`
	UserID            string `json:"userId"`
	Role              string `json:"role,omitempty"`
	TwoFactorRequired bool   `json:"twoFactorRequired,omitempty"`
	ChallengeID       string `json:"challengeId,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type SetPasswordRequest struct {
	UserID      string `json:"userId"`
	Phone       string `json:"phone"`
	NewPassword string `json:"newPassword"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

type TwoFactorStatusResponse struct {
	IsEnabled bool `json:"isEnabled"`
}

// EnableTwoFactorResponse carries the new secret. OtpAuthURL is optional.
type EnableTwoFactorResponse struct {
	Secret     string `json:"secret"`
	OtpAuthURL string `json:"otpauthUrl,omitempty"`
	QRCode     string `json:"qrCode,omitempty"`
}

type VerifyTwoFactorRequest struct {
	Code        string `json:"code"`
	ChallengeID string `json:"challengeId,omitempty"`
}

type UpdateNameRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type CartCountResponse struct {
	Count int `json:"count"`
}

type messageBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
