package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bakerykit/internal/client/client"
	"github.com/dmitrijs2005/bakerykit/internal/client/models"
	"github.com/dmitrijs2005/bakerykit/internal/common"
)

// Guard wraps authenticated calls. It attaches the stored access token,
// refreshes once on 401 and invalidates the session when identity is lost.
type Guard struct {
	session *SessionService
	api     client.Client
}

func NewGuard(session *SessionService, api client.Client) *Guard {
	return &Guard{session: session, api: api}
}

// Do runs fn with the current access token. Without a token fn is not
// called and common.ErrUnauthenticated is returned. On client.ErrUnauthorized
// the session is refreshed and fn retried once; a failed refresh or a second
// 401 ends the session with common.ErrSessionExpired.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context, token string) error) error {
	token, err := g.session.accessToken(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return common.ErrUnauthenticated
	}

	if err := g.session.EnsureFresh(ctx); err != nil {
		if errors.Is(err, common.ErrSessionExpired) {
			return err
		}
		g.session.log.Warn(ctx, "proactive refresh failed", "error", err)
	}

	if token, err = g.session.accessToken(ctx); err != nil {
		return err
	}
	if token == "" {
		return common.ErrUnauthenticated
	}

	err = fn(ctx, token)
	if !errors.Is(err, client.ErrUnauthorized) {
		return err
	}

	if err := g.session.refresh(ctx, token); err != nil {
		return err
	}

	retry, err := g.session.accessToken(ctx)
	if err != nil {
		return err
	}
	if retry == "" {
		return common.ErrSessionExpired
	}

	err = fn(ctx, retry)
	if errors.Is(err, client.ErrUnauthorized) {
		g.session.Invalidate(ctx, "unauthorized after refresh")
		return fmt.Errorf("%w: %v", common.ErrSessionExpired, err)
	}
	return err
}

// VerifyIdentity fetches the user's own profile. A 404 here means the
// account no longer exists: the session is invalidated and
// common.ErrAccountGone is returned.
func (g *Guard) VerifyIdentity(ctx context.Context) (*models.Profile, error) {
	var profile *models.Profile
	err := g.Do(ctx, func(ctx context.Context, token string) error {
		p, err := g.api.GetProfile(ctx, token)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	if errors.Is(err, client.ErrNotFound) {
		g.session.Invalidate(ctx, "account no longer exists")
		return nil, fmt.Errorf("%w: %v", common.ErrAccountGone, err)
	}
	if err != nil {
		return nil, err
	}

	g.session.syncRole(ctx, profile.ID, models.ParseRole(profile.Role))
	return profile, nil
}
