package services

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/bakerykit/internal/client/client"
	"github.com/dmitrijs2005/bakerykit/internal/client/models"
	"github.com/dmitrijs2005/bakerykit/internal/client/repositories/credentials"
	"github.com/stretchr/testify/require"
)

// ---- fake client ----

// fakeClient implements client.Client. Each method counts its calls and
// delegates to an optional hook; a nil hook succeeds with zero values.
type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	RegisterFn         func(client.RegisterRequest) error
	LoginFn            func(client.LoginRequest) (*client.AuthResponse, error)
	RefreshFn          func(refreshToken string) (*client.AuthResponse, error)
	SetPasswordFn      func(token string, req client.SetPasswordRequest) error
	ForgotPasswordFn   func(email string) (string, error)
	ResetPasswordFn    func(client.ResetPasswordRequest) error
	TwoFactorStatusFn  func(token string) (bool, error)
	EnableTwoFactorFn  func(token string) (*client.EnableTwoFactorResponse, error)
	DisableTwoFactorFn func(token string) error
	VerifyTwoFactorFn  func(token string, req client.VerifyTwoFactorRequest) (*client.AuthResponse, error)
	GetProfileFn       func(token string) (*models.Profile, error)
	UpdateProfileFn    func(token string, upd models.ProfileUpdate) error
	UpdateNameFn       func(token string, req client.UpdateNameRequest) error
	GetCartFn          func(token string) (*models.Cart, error)
	SetCartItemFn      func(token string, item models.CartItem) error
	CartCountFn        func(token string) (int, error)

	LastRegister    client.RegisterRequest
	LastLogin       client.LoginRequest
	LastForgotEmail string
	LastReset       client.ResetPasswordRequest
	LastSetPassword client.SetPasswordRequest
	LastVerify      client.VerifyTwoFactorRequest
	LastCartItem    models.CartItem
	Tokens          []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{calls: map[string]int{}}
}

func (f *fakeClient) hit(name, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	if token != "" {
		f.Tokens = append(f.Tokens, token)
	}
}

func (f *fakeClient) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeClient) Register(ctx context.Context, req client.RegisterRequest) error {
	f.hit("Register", "")
	f.LastRegister = req
	if f.RegisterFn != nil {
		return f.RegisterFn(req)
	}
	return nil
}

func (f *fakeClient) Login(ctx context.Context, req client.LoginRequest) (*client.AuthResponse, error) {
	f.hit("Login", "")
	f.LastLogin = req
	if f.LoginFn != nil {
		return f.LoginFn(req)
	}
	return &client.AuthResponse{AccessToken: "at", RefreshToken: "rt", UserID: "u1", Role: "user"}, nil
}

func (f *fakeClient) Refresh(ctx context.Context, refreshToken string) (*client.AuthResponse, error) {
	f.hit("Refresh", "")
	if f.RefreshFn != nil {
		return f.RefreshFn(refreshToken)
	}
	return &client.AuthResponse{AccessToken: "at-new", RefreshToken: "rt-new"}, nil
}

func (f *fakeClient) SetPassword(ctx context.Context, token string, req client.SetPasswordRequest) error {
	f.hit("SetPassword", token)
	f.LastSetPassword = req
	if f.SetPasswordFn != nil {
		return f.SetPasswordFn(token, req)
	}
	return nil
}

func (f *fakeClient) ForgotPassword(ctx context.Context, email string) (string, error) {
	f.hit("ForgotPassword", "")
	f.LastForgotEmail = email
	if f.ForgotPasswordFn != nil {
		return f.ForgotPasswordFn(email)
	}
	return "Reset code sent", nil
}

func (f *fakeClient) ResetPassword(ctx context.Context, req client.ResetPasswordRequest) error {
	f.hit("ResetPassword", "")
	f.LastReset = req
	if f.ResetPasswordFn != nil {
		return f.ResetPasswordFn(req)
	}
	return nil
}

func (f *fakeClient) TwoFactorStatus(ctx context.Context, token string) (bool, error) {
	f.hit("TwoFactorStatus", token)
	if f.TwoFactorStatusFn != nil {
		return f.TwoFactorStatusFn(token)
	}
	return false, nil
}

func (f *fakeClient) EnableTwoFactor(ctx context.Context, token string) (*client.EnableTwoFactorResponse, error) {
	f.hit("EnableTwoFactor", token)
	if f.EnableTwoFactorFn != nil {
		return f.EnableTwoFactorFn(token)
	}
	return &client.EnableTwoFactorResponse{Secret: "JBSWY3DPEHPK3PXP"}, nil
}

func (f *fakeClient) DisableTwoFactor(ctx context.Context, token string) error {
	f.hit("DisableTwoFactor", token)
	if f.DisableTwoFactorFn != nil {
		return f.DisableTwoFactorFn(token)
	}
	return nil
}

func (f *fakeClient) VerifyTwoFactor(ctx context.Context, token string, req client.VerifyTwoFactorRequest) (*client.AuthResponse, error) {
	f.hit("VerifyTwoFactor", token)
	f.mu.Lock()
	f.LastVerify = req
	f.mu.Unlock()
	if f.VerifyTwoFactorFn != nil {
		return f.VerifyTwoFactorFn(token, req)
	}
	return &client.AuthResponse{}, nil
}

func (f *fakeClient) GetProfile(ctx context.Context, token string) (*models.Profile, error) {
	f.hit("GetProfile", token)
	if f.GetProfileFn != nil {
		return f.GetProfileFn(token)
	}
	return &models.Profile{ID: "u1"}, nil
}

func (f *fakeClient) UpdateProfile(ctx context.Context, token string, upd models.ProfileUpdate) error {
	f.hit("UpdateProfile", token)
	if f.UpdateProfileFn != nil {
		return f.UpdateProfileFn(token, upd)
	}
	return nil
}

func (f *fakeClient) UpdateName(ctx context.Context, token string, req client.UpdateNameRequest) error {
	f.hit("UpdateName", token)
	if f.UpdateNameFn != nil {
		return f.UpdateNameFn(token, req)
	}
	return nil
}

func (f *fakeClient) GetCart(ctx context.Context, token string) (*models.Cart, error) {
	f.hit("GetCart", token)
	if f.GetCartFn != nil {
		return f.GetCartFn(token)
	}
	return &models.Cart{}, nil
}

func (f *fakeClient) SetCartItem(ctx context.Context, token string, item models.CartItem) error {
	f.hit("SetCartItem", token)
	f.LastCartItem = item
	if f.SetCartItemFn != nil {
		return f.SetCartItemFn(token, item)
	}
	return nil
}

func (f *fakeClient) CartCount(ctx context.Context, token string) (int, error) {
	f.hit("CartCount", token)
	if f.CartCountFn != nil {
		return f.CartCountFn(token)
	}
	return 0, nil
}

// ---- helpers ----

func unauthorized() error {
	return &client.ServerError{Status: 401, Message: "jwt expired"}
}

func notFound(msg string) error {
	return &client.ServerError{Status: 404, Message: msg}
}

func newStore(t *testing.T) *credentials.SQLiteStore {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return credentials.NewSQLiteStore(db)
}

type harness struct {
	api     *fakeClient
	store   *credentials.SQLiteStore
	session *SessionService
	guard   *Guard
}

func newHarness(t *testing.T, opts ...SessionOption) *harness {
	t.Helper()
	api := newFakeClient()
	store := newStore(t)
	session := NewSessionService(api, store, opts...)
	return &harness{api: api, store: store, session: session, guard: NewGuard(session, api)}
}

// signIn seeds a stored record and restores the session from it.
func (h *harness) signIn(t *testing.T, rec models.Credentials) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.store.Save(ctx, rec))
	state, err := h.session.Restore(ctx)
	require.NoError(t, err)
	require.Equal(t, models.StateLoggedIn, state)
}

func userRecord() models.Credentials {
	return models.Credentials{AccessToken: "at", RefreshToken: "rt", UserID: "u1", Role: models.RoleUser}
}

// recorder collects session transitions.
type recorder struct {
	mu      sync.Mutex
	changes []models.StateChange
}

func (r *recorder) record(ch models.StateChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, ch)
}

func (r *recorder) states() []models.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.State, 0, len(r.changes)+1)
	for i, ch := range r.changes {
		if i == 0 {
			out = append(out, ch.From)
		}
		out = append(out, ch.To)
	}
	return out
}
