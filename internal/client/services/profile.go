package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bakerykit/internal/client/client"
	"github.com/dmitrijs2005/bakerykit/internal/client/models"
)

// ProfileService reads and edits the signed-in user's profile.
type ProfileService struct {
	guard *Guard
	api   client.Client
}

func NewProfileService(guard *Guard, api client.Client) *ProfileService {
	return &ProfileService{guard: guard, api: api}
}

// Get doubles as the identity check: a missing account ends the session.
func (p *ProfileService) Get(ctx context.Context) (*models.Profile, error) {
	return p.guard.VerifyIdentity(ctx)
}

func (p *ProfileService) Update(ctx context.Context, upd models.ProfileUpdate) error {
	if upd.Email != "" {
		upd.Email = NormalizeEmail(upd.Email)
	}
	err := p.guard.Do(ctx, func(ctx context.Context, token string) error {
		return p.api.UpdateProfile(ctx, token, upd)
	})
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (p *ProfileService) UpdateName(ctx context.Context, firstName, lastName string) error {
	if blank(firstName, lastName) {
		return invalid(MsgFillAllFields)
	}
	req := client.UpdateNameRequest{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
	}
	err := p.guard.Do(ctx, func(ctx context.Context, token string) error {
		return p.api.UpdateName(ctx, token, req)
	})
	if err != nil {
		return fmt.Errorf("update name: %w", err)
	}
	return nil
}
