// Package refreshtokens stores the server side of refresh tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bakerykit/internal/server/models"
)

// Repository issues and consumes refresh tokens.
type Repository interface {
	// Create stores token for userID, valid for validity from now.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Consume deletes token and returns the row it held, expired or not.
	// Only one caller can consume a token; the rest get common.ErrNotFound.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteForUser revokes every refresh token of userID.
	DeleteForUser(ctx context.Context, userID string) error
}
