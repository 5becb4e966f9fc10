package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/bakerykit/internal/client/client"
	"github.com/dmitrijs2005/bakerykit/internal/client/config"
	"github.com/dmitrijs2005/bakerykit/internal/client/models"
	"github.com/dmitrijs2005/bakerykit/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/bakerykit/internal/client/services"
	"github.com/dmitrijs2005/bakerykit/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodPassword = "Passw0rd!"

// backend is a minimal in-memory bakery API.
type backend struct {
	mu          sync.Mutex
	hits        map[string]int
	cart        []models.CartItem
	profileGone bool
	resets      []client.ResetPasswordRequest
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *backend) hit(name string) {
	b.mu.Lock()
	b.hits[name]++
	b.mu.Unlock()
}

func (b *backend) Hits(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[name]
}

func (b *backend) routes(r chi.Router) {
	r.Post("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		b.hit("register")
		writeJSON(w, http.StatusCreated, map[string]any{"message": "created"})
	})
	r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		b.hit("login")
		var req client.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch {
		case req.Password != goodPassword:
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"})
		case req.Email == "2fa@bakery.com":
			writeJSON(w, http.StatusOK, map[string]any{"twoFactorRequired": true, "challengeId": "ch-1"})
		default:
			writeJSON(w, http.StatusOK, map[string]any{"accessToken": "at", "refreshToken": "rt", "userId": "u1"})
		}
	})
	r.Post("/2fa/verify", func(w http.ResponseWriter, r *http.Request) {
		b.hit("verify")
		var req client.VerifyTwoFactorRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Code != "123456" || req.ChallengeID != "ch-1" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid code"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"accessToken": "at2", "refreshToken": "rt2", "userId": "u2", "role": "admin"})
	})
	r.Post("/auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		b.hit("forgot")
		writeJSON(w, http.StatusOK, map[string]any{"message": "Code sent"})
	})
	r.Post("/auth/reset-password", func(w http.ResponseWriter, r *http.Request) {
		b.hit("reset")
		var req client.ResetPasswordRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.resets = append(b.resets, req)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok"})
	})
	r.Get("/user/profile", func(w http.ResponseWriter, r *http.Request) {
		b.hit("profile")
		b.mu.Lock()
		gone := b.profileGone
		b.mu.Unlock()
		if gone {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "User not found"})
			return
		}
		writeJSON(w, http.StatusOK, models.Profile{ID: "u1", FirstName: "Ann", LastName: "Baker", Email: "ann@bakery.com"})
	})
	r.Get("/cart", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, models.Cart{Items: b.cart})
	})
	r.Post("/cart", func(w http.ResponseWriter, r *http.Request) {
		var item models.CartItem
		_ = json.NewDecoder(r.Body).Decode(&item)
		b.mu.Lock()
		b.cart = []models.CartItem{item}
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok"})
	})
	r.Get("/cart/count", func(w http.ResponseWriter, r *http.Request) {
		b.hit("count")
		writeJSON(w, http.StatusOK, client.CartCountResponse{Count: 3})
	})
}

type testApp struct {
	*App
	backend *backend
	store   credentials.Store
	out     *bytes.Buffer
}

func newTestApp(t *testing.T, script string) *testApp {
	t.Helper()
	stubTerminal(t, false, nil)

	b := &backend{hits: map[string]int{}}
	r := chi.NewRouter()
	b.routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := credentials.NewSQLiteStore(db)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.CartPollInterval = 10 * time.Millisecond

	out := &bytes.Buffer{}
	api := client.NewHTTPClient(srv.URL, client.WithTimeout(2*time.Second))
	a := newApp(cfg, api, store, logging.Nop(), strings.NewReader(script), out)
	t.Cleanup(a.Close)

	return &testApp{App: a, backend: b, store: store, out: out}
}

func TestApp_Login_MountsSurfaceAndPollsCart(t *testing.T) {
	a := newTestApp(t, "ann@bakery.com\n"+goodPassword+"\n")
	ctx := context.Background()

	require.NoError(t, a.Login(ctx))
	assert.Contains(t, a.out.String(), "Welcome! Opening user.")
	assert.Equal(t, models.StateLoggedIn, a.session.State())

	require.Eventually(t, func() bool {
		return a.getStatus(ctx) == "(user, cart 3)"
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, a.Logout(ctx))
	assert.Equal(t, "", a.getStatus(ctx))

	rec, err := a.store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, rec.Empty())

	time.Sleep(20 * time.Millisecond)
	polls := a.backend.Hits("count")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, polls, a.backend.Hits("count"))
}

func TestApp_Login_WrongPassword(t *testing.T) {
	a := newTestApp(t, "ann@bakery.com\nnope\n")

	require.Error(t, a.Login(context.Background()))
	assert.Contains(t, a.out.String(), "Error: Invalid credentials")
	assert.Equal(t, models.StateLoggedOut, a.session.State())
}

func TestApp_Login_TwoFactorRetry(t *testing.T) {
	a := newTestApp(t, "2fa@bakery.com\n"+goodPassword+"\n000000\n123456\n")
	ctx := context.Background()

	require.Error(t, a.Login(ctx))
	assert.Contains(t, a.out.String(), "Two-factor verification required.")
	assert.Contains(t, a.out.String(), "Error: Invalid code")
	assert.Equal(t, models.StateTwoFactorPending, a.session.State())
	assert.Equal(t, "(2fa pending)", a.getStatus(ctx))

	rec, err := a.store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, rec.Empty())

	require.NoError(t, a.Verify(ctx))
	assert.Contains(t, a.out.String(), "Welcome! Opening admin.")

	rec, err = a.store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Credentials{AccessToken: "at2", RefreshToken: "rt2", UserID: "u2", Role: models.RoleAdmin}, rec)
}

func TestApp_Register_WeakPassword(t *testing.T) {
	a := newTestApp(t, "Ann\nBaker\nann@bakery.com\nweak\nweak\n")

	require.Error(t, a.Register(context.Background()))
	assert.Contains(t, a.out.String(), "Invalid input: "+services.MsgWeakPassword)
	assert.Zero(t, a.backend.Hits("register"))
}

func TestApp_Register(t *testing.T) {
	a := newTestApp(t, "Ann\nBaker\nann@bakery.com\n"+goodPassword+"\n"+goodPassword+"\n")

	require.NoError(t, a.Register(context.Background()))
	assert.Equal(t, 1, a.backend.Hits("register"))
	assert.Equal(t, models.StateLoggedOut, a.session.State())
}

func TestApp_ForgotAndReset(t *testing.T) {
	a := newTestApp(t, " Ann@Bakery.com\n654321\nN3w!Passw\nN3w!Passw\n")

	require.NoError(t, a.Forgot(context.Background()))
	assert.Contains(t, a.out.String(), "Code sent")
	assert.Contains(t, a.out.String(), "Password updated.")
	assert.Equal(t, services.RecoveryDone, a.recovery.State())
	assert.Equal(t, []client.ResetPasswordRequest{
		{Email: "ann@bakery.com", Code: "654321", NewPassword: "N3w!Passw"},
	}, a.backend.resets)
}

func TestApp_Reset_MismatchSendsNothing(t *testing.T) {
	a := newTestApp(t, "ann@bakery.com\n654321\nN3w!Passw\nOther!Pw1\n")

	require.Error(t, a.Reset(context.Background()))
	assert.Contains(t, a.out.String(), "Invalid input: "+services.MsgPasswordMismatch)
	assert.Zero(t, a.backend.Hits("reset"))
}

func TestApp_Profile_AccountGone(t *testing.T) {
	a := newTestApp(t, "ann@bakery.com\n"+goodPassword+"\n")
	ctx := context.Background()
	require.NoError(t, a.Login(ctx))

	a.backend.mu.Lock()
	a.backend.profileGone = true
	a.backend.mu.Unlock()

	require.Error(t, a.Profile(ctx))
	assert.Contains(t, a.out.String(), "Account unavailable:")
	assert.Equal(t, models.StateLoggedOut, a.session.State())
}

func TestApp_CommandsRequireSession(t *testing.T) {
	a := newTestApp(t, "")
	ctx := context.Background()

	require.Error(t, a.Cart(ctx))
	require.Error(t, a.TwoFactorStatus(ctx))
	assert.Contains(t, a.out.String(), "Not signed in: Please log in to continue.")
}

func TestApp_Run_RestoresSessionAndServesREPL(t *testing.T) {
	capturePrint(t)
	a := newTestApp(t, "whoami\nprofile\nadd p1 2 10\ncart\nlogout\nwhoami\nexit\n")
	ctx := context.Background()
	require.NoError(t, a.store.Save(ctx, models.Credentials{AccessToken: "at", RefreshToken: "rt", UserID: "u1", Role: models.RoleUser}))

	a.Run(ctx)

	out := a.out.String()
	assert.Contains(t, out, "user u1, role user, state logged_in")
	assert.Contains(t, out, "Ann Baker <ann@bakery.com>")
	assert.Contains(t, out, "p1 in cart: 2")
	assert.Contains(t, out, "Logged out.")
	assert.Contains(t, out, "Not signed in.")
	// Run fetches the profile once on restore and once for the command.
	assert.Equal(t, 2, a.backend.Hits("profile"))
}
