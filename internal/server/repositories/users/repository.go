// Package users stores bakery accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/bakerykit/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetPassword(ctx context.Context, id, phone, passwordHash string) error
	SetPasswordByEmail(ctx context.Context, email, passwordHash string) (string, error)
	UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) error
	SetTOTP(ctx context.Context, id, secret string, enabled bool) error
}
