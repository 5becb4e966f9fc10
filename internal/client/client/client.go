package client

import (
	"context"

	"github.com/dmitrijs2005/bakerykit/internal/client/models"
)

// Client is the backend REST contract consumed by the session core.
// Methods taking token send it as a bearer credential; an empty token sends
// no Authorization header.
type Client interface {
	Register(ctx context.Context, req RegisterRequest) error
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	SetPassword(ctx context.Context, token string, req SetPasswordRequest) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error

	TwoFactorStatus(ctx context.Context, token string) (bool, error)
	EnableTwoFactor(ctx context.Context, token string) (*EnableTwoFactorResponse, error)
	DisableTwoFactor(ctx context.Context, token string) error
	VerifyTwoFactor(ctx context.Context, token string, req VerifyTwoFactorRequest) (*AuthResponse, error)

	GetProfile(ctx context.Context, token string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, token string, upd models.ProfileUpdate) error
	UpdateName(ctx context.Context, token string, req UpdateNameRequest) error

	GetCart(ctx context.Context, token string) (*models.Cart, error)
	SetCartItem(ctx context.Context, token string, item models.CartItem) error
	CartCount(ctx context.Context, token string) (int, error)
}
