package httpapi

// Request and response bodies. Field names follow the client's camelCase JSON.

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken       string `json:"accessToken,omitempty"`
	RefreshToken      string `json:"refreshToken,omitempty"`
	UserID            string `json:"userId,omitempty"`
	Role              string `json:"role,omitempty"`
	TwoFactorRequired bool   `json:"twoFactorRequired,omitempty"`
	ChallengeID       string `json:"challengeId,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type setPasswordRequest struct {
	UserID      string `json:"userId"`
	Phone       string `json:"phone"`
	NewPassword string `json:"newPassword"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

type verifyTwoFactorRequest struct {
	Code        string `json:"code"`
	ChallengeID string `json:"challengeId"`
}

type twoFactorStatusResponse struct {
	IsEnabled bool `json:"isEnabled"`
}

type enableTwoFactorResponse struct {
	Secret     string `json:"secret"`
	OtpAuthURL string `json:"otpauthUrl"`
}

type profileResponse struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role"`
}

type profileUpdateRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type updateNameRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type cartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type cartResponse struct {
	Items []cartItem `json:"items"`
}

type cartCountResponse struct {
	Count int `json:"count"`
}
