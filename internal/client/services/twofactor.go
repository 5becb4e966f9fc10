package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/bakerykit/internal/client/client"
	"github.com/dmitrijs2005/bakerykit/internal/client/models"
	"github.com/pquerna/otp"
)

// TwoFactorService manages the second factor of the signed-in account and
// completes logins waiting on a two-factor challenge.
type TwoFactorService struct {
	session *SessionService
	guard   *Guard
	api     client.Client

	// verifyMu serializes verification attempts.
	verifyMu sync.Mutex
}

func NewTwoFactorService(session *SessionService, guard *Guard, api client.Client) *TwoFactorService {
	return &TwoFactorService{session: session, guard: guard, api: api}
}

// Status fetches the flag from the backend; it is not cached.
func (t *TwoFactorService) Status(ctx context.Context) (models.TwoFactorStatus, error) {
	var enabled bool
	err := t.guard.Do(ctx, func(ctx context.Context, token string) error {
		var err error
		enabled, err = t.api.TwoFactorStatus(ctx, token)
		return err
	})
	if err != nil {
		return models.TwoFactorStatus{}, fmt.Errorf("two-factor status: %w", err)
	}
	return models.TwoFactorStatus{Enabled: enabled}, nil
}

// Enable turns the second factor on and returns the provisioning secret.
func (t *TwoFactorService) Enable(ctx context.Context) (models.TwoFactorSecret, error) {
	var resp *client.EnableTwoFactorResponse
	err := t.guard.Do(ctx, func(ctx context.Context, token string) error {
		var err error
		resp, err = t.api.EnableTwoFactor(ctx, token)
		return err
	})
	if err != nil {
		return models.TwoFactorSecret{}, fmt.Errorf("enable two-factor: %w", err)
	}
	return secretFrom(resp)
}

func secretFrom(resp *client.EnableTwoFactorResponse) (models.TwoFactorSecret, error) {
	secret := models.TwoFactorSecret{Secret: resp.Secret, URL: resp.OtpAuthURL}
	if resp.OtpAuthURL != "" {
		key, err := otp.NewKeyFromURL(resp.OtpAuthURL)
		if err != nil {
			return models.TwoFactorSecret{}, fmt.Errorf("%w: otpauth url: %v", client.ErrUnexpectedResponse, err)
		}
		if typ := key.Type(); typ != "totp" && typ != "hotp" {
			return models.TwoFactorSecret{}, fmt.Errorf("%w: otpauth url of type %q", client.ErrUnexpectedResponse, typ)
		}
		secret.Issuer = key.Issuer()
		secret.Account = key.AccountName()
		if secret.Secret == "" {
			secret.Secret = key.Secret()
		}
	}
	if secret.Secret == "" {
		return models.TwoFactorSecret{}, fmt.Errorf("%w: no two-factor secret", client.ErrUnexpectedResponse)
	}
	return secret, nil
}

func (t *TwoFactorService) Disable(ctx context.Context) error {
	err := t.guard.Do(ctx, func(ctx context.Context, token string) error {
		return t.api.DisableTwoFactor(ctx, token)
	})
	if err != nil {
		return fmt.Errorf("disable two-factor: %w", err)
	}
	return nil
}

// Verify submits a one-time code. With a login challenge pending it is the
// only way to reach LoggedIn; a wrong code keeps the challenge and may be
// retried. When already signed in it confirms enrolment.
func (t *TwoFactorService) Verify(ctx context.Context, code string) (models.Credentials, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.Credentials{}, invalid(MsgCodeRequired)
	}

	observed := t.session.pendingChallenge()

	t.verifyMu.Lock()
	defer t.verifyMu.Unlock()

	ch := t.session.pendingChallenge()
	if observed != nil && ch != observed && t.session.State() == models.StateLoggedIn {
		// A concurrent attempt already completed this challenge.
		return t.session.Current(ctx)
	}

	if ch != nil {
		resp, err := t.api.VerifyTwoFactor(ctx, ch.token, client.VerifyTwoFactorRequest{Code: code, ChallengeID: ch.id})
		if err != nil {
			return models.Credentials{}, fmt.Errorf("verify code: %w", err)
		}
		rec := recordFromAuth(resp, models.Credentials{})
		if err := t.session.CompleteTwoFactor(ctx, rec); err != nil {
			return models.Credentials{}, err
		}
		return t.session.Current(ctx)
	}

	err := t.guard.Do(ctx, func(ctx context.Context, token string) error {
		_, err := t.api.VerifyTwoFactor(ctx, token, client.VerifyTwoFactorRequest{Code: code})
		return err
	})
	if err != nil {
		return models.Credentials{}, fmt.Errorf("verify code: %w", err)
	}
	return t.session.Current(ctx)
}

// Cancel abandons a pending login challenge.
func (t *TwoFactorService) Cancel(ctx context.Context) {
	t.session.AbandonTwoFactor(ctx)
}
