package services

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/bakerykit/internal/client/client"
	"github.com/dmitrijs2005/bakerykit/internal/client/models"
	"github.com/dmitrijs2005/bakerykit/internal/client/repositories/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurfaceFor(t *testing.T) {
	tests := []struct {
		name string
		rec  models.Credentials
		want models.Surface
	}{
		{"logged out", models.Credentials{}, models.SurfaceNone},
		{"role without token", models.Credentials{Role: models.RoleAdmin}, models.SurfaceNone},
		{"admin", models.Credentials{AccessToken: "at", UserID: "u1", Role: models.RoleAdmin}, models.SurfaceAdmin},
		{"user", models.Credentials{AccessToken: "at", UserID: "u1", Role: models.RoleUser}, models.SurfaceUser},
		{"absent role", models.Credentials{AccessToken: "at", UserID: "u1"}, models.SurfaceUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, surfaceFor(tt.rec))
		})
	}
}

func TestRoleRouter_FocusRereadsStore(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, userRecord())
	ctx := context.Background()

	router := NewRoleRouter(h.session, nil)
	defer router.Close()
	require.Equal(t, models.SurfaceUser, router.Mount(ctx))

	// Role changed behind the router's back, e.g. by another process.
	require.NoError(t, h.store.Set(ctx, credentials.KeyRole, "admin"))
	assert.Equal(t, models.SurfaceUser, router.Current())
	assert.Equal(t, models.SurfaceAdmin, router.Focus(ctx))
	assert.Equal(t, models.SurfaceAdmin, router.Current())
}

func TestRoleRouter_NoSurfaceWhilePending(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.api.LoginFn = func(client.LoginRequest) (*client.AuthResponse, error) {
		return &client.AuthResponse{TwoFactorRequired: true, ChallengeID: "ch"}, nil
	}
	router := NewRoleRouter(h.session, nil)
	defer router.Close()

	_, err := h.session.Login(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.SurfaceNone, router.Mount(ctx))
}

func TestRoleRouter_OnChange(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	router := NewRoleRouter(h.session, nil)
	defer router.Close()

	var mu sync.Mutex
	var seen []models.Surface
	router.OnChange(func(s models.Surface) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	assert.Equal(t, models.SurfaceNone, router.Mount(ctx))

	_, err := h.session.Login(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	// A second focus with nothing changed does not notify again.
	router.Focus(ctx)

	h.session.Logout(ctx)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []models.Surface{models.SurfaceUser, models.SurfaceNone}, seen)
}

func TestRoleRouter_Close_StopsFollowing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	router := NewRoleRouter(h.session, nil)
	router.Close()

	_, err := h.session.Login(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.SurfaceNone, router.Current())
	assert.Equal(t, models.SurfaceUser, router.Focus(ctx))
}
