// Package codes stores short-lived one-time codes: password reset codes
// keyed by email and two-factor login challenges keyed by id.
package codes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bakerykit/internal/server/models"
)

type ResetRepository interface {
	// Save replaces any previous code for the email.
	Save(ctx context.Context, email, code string, validity time.Duration) error
	Find(ctx context.Context, email string) (*models.ResetCode, error)
	Delete(ctx context.Context, email string) error
}

type ChallengeRepository interface {
	Create(ctx context.Context, id, userID string, validity time.Duration) error
	Find(ctx context.Context, id string) (*models.LoginChallenge, error)
	Delete(ctx context.Context, id string) error
}
