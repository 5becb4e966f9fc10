package credentials

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/bakerykit/internal/client/models"
)

// Key names one field of the credential record.
type Key string

const (
	KeyAccessToken  Key = "access_token"
	KeyRefreshToken Key = "refresh_token"
	KeyUserID       Key = "user_id"
	KeyRole         Key = "role"
)

// Keys lists every credential key.
var Keys = []Key{KeyAccessToken, KeyRefreshToken, KeyUserID, KeyRole}

// ErrUnreadable is returned when a stored value cannot be decoded, e.g. the
// device secret changed since it was sealed.
var ErrUnreadable = errors.New("stored credential unreadable")

// Store is the Credential Store contract. Get reports ok=false for an absent
// key. Store has no retry policy of its own.
type Store interface {
	Get(ctx context.Context, key Key) (value string, ok bool, err error)
	Set(ctx context.Context, key Key, value string) error
	Remove(ctx context.Context, key Key) error
	Clear(ctx context.Context) error

	Load(ctx context.Context) (models.Credentials, error)
	Save(ctx context.Context, rec models.Credentials) error
}

func recordValues(rec models.Credentials) map[Key]string {
	return map[Key]string{
		KeyAccessToken:  rec.AccessToken,
		KeyRefreshToken: rec.RefreshToken,
		KeyUserID:       rec.UserID,
		KeyRole:         rec.Role.String(),
	}
}

func recordFrom(values map[Key]string) models.Credentials {
	return models.Credentials{
		AccessToken:  values[KeyAccessToken],
		RefreshToken: values[KeyRefreshToken],
		UserID:       values[KeyUserID],
		Role:         models.ParseRole(values[KeyRole]),
	}
}
