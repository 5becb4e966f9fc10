package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/bakerykit/internal/client/client"
	"github.com/dmitrijs2005/bakerykit/internal/client/models"
	"github.com/dmitrijs2005/bakerykit/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_Get(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, userRecord())
	h.api.GetProfileFn = func(token string) (*models.Profile, error) {
		return &models.Profile{ID: "u1", FirstName: "Ann", LastName: "Baker", Email: "ann@bakery.com"}, nil
	}

	p, err := NewProfileService(h.guard, h.api).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Baker", p.LastName)
	assert.Equal(t, []string{"at"}, h.api.Tokens)
}

func TestProfile_Get_AccountGone(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, userRecord())
	h.api.GetProfileFn = func(string) (*models.Profile, error) { return nil, notFound("User not found") }

	_, err := NewProfileService(h.guard, h.api).Get(context.Background())
	require.ErrorIs(t, err, common.ErrAccountGone)
	assert.Equal(t, models.StateLoggedOut, h.session.State())
}

func TestProfile_Update(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, userRecord())

	var got models.ProfileUpdate
	h.api.UpdateProfileFn = func(_ string, upd models.ProfileUpdate) error {
		got = upd
		return nil
	}

	err := NewProfileService(h.guard, h.api).Update(context.Background(), models.ProfileUpdate{Phone: "+100", Email: " Ann@Bakery.com"})
	require.NoError(t, err)
	assert.Equal(t, models.ProfileUpdate{Phone: "+100", Email: "ann@bakery.com"}, got)
}

func TestProfile_UpdateName(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, userRecord())
	profiles := NewProfileService(h.guard, h.api)
	ctx := context.Background()

	err := profiles.UpdateName(ctx, "Ann", " ")
	assert.EqualError(t, err, MsgFillAllFields)
	assert.Zero(t, h.api.Total())

	var got client.UpdateNameRequest
	h.api.UpdateNameFn = func(_ string, req client.UpdateNameRequest) error {
		got = req
		return nil
	}
	require.NoError(t, profiles.UpdateName(ctx, " Ann ", "Baker"))
	assert.Equal(t, client.UpdateNameRequest{FirstName: "Ann", LastName: "Baker"}, got)
}

func TestProfile_UpdateName_ServerError(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, userRecord())
	h.api.UpdateNameFn = func(string, client.UpdateNameRequest) error {
		return &client.ServerError{Status: 400, Message: "Name too long"}
	}

	err := NewProfileService(h.guard, h.api).UpdateName(context.Background(), "Ann", "Baker")
	_, msg := Describe(err)
	assert.Equal(t, "Name too long", msg)
}
