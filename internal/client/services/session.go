// Package services contains the session core of the bakery client: the
// token lifecycle, the session guard, recovery and two-factor flows, role
// routing and the user-scoped profile and cart services built on them.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/bakerykit/internal/client/client"
	"github.com/dmitrijs2005/bakerykit/internal/client/models"
	"github.com/dmitrijs2005/bakerykit/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/bakerykit/internal/common"
	"github.com/dmitrijs2005/bakerykit/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// ErrNoChallenge is returned when a two-factor step runs without a pending
// login challenge.
var ErrNoChallenge = errors.New("no two-factor challenge pending")

// DefaultRefreshLeeway is how long before expiry an access token is
// refreshed proactively.
const DefaultRefreshLeeway = 30 * time.Second

// RegisterInput is the registration form.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

type challenge struct {
	id    string
	token string
}

// SessionService is the token lifecycle manager. It is the only writer of
// the credential store and the single source of truth for the session state.
type SessionService struct {
	api    client.Client
	store  credentials.Store
	log    logging.Logger
	leeway time.Duration
	now    func() time.Time

	// writeMu serializes compound store updates.
	writeMu sync.Mutex

	mu        sync.Mutex
	state     models.State
	pending   *challenge
	listeners map[int]func(models.StateChange)
	nextID    int

	refreshes singleflight.Group
}

type SessionOption func(*SessionService)

func WithSessionLogger(l logging.Logger) SessionOption {
	return func(s *SessionService) { s.log = l }
}

// WithRefreshLeeway sets the proactive refresh window.
func WithRefreshLeeway(d time.Duration) SessionOption {
	return func(s *SessionService) { s.leeway = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionService) { s.now = now }
}

func NewSessionService(api client.Client, store credentials.Store, opts ...SessionOption) *SessionService {
	s := &SessionService{
		api:       api,
		store:     store,
		log:       logging.Nop(),
		leeway:    DefaultRefreshLeeway,
		now:       time.Now,
		state:     models.StateLoggedOut,
		listeners: map[int]func(models.StateChange){},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "session")
	return s
}

// Restore derives the state from the persisted record, e.g. on startup.
func (s *SessionService) Restore(ctx context.Context) (models.State, error) {
	rec, err := s.store.Load(ctx)
	if err != nil {
		return s.State(), err
	}
	switch {
	case rec.Authenticated():
		s.setState(models.StateLoggedIn, "restored")
	case !rec.Empty():
		// Partial record, e.g. a role left without a token.
		s.clear(ctx)
		s.setState(models.StateLoggedOut, "partial record cleared")
	default:
		s.setState(models.StateLoggedOut, "restored")
	}
	return s.State(), nil
}

func (s *SessionService) State() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for every state transition. fn runs synchronously
// on the goroutine that caused the transition.
func (s *SessionService) Subscribe(fn func(models.StateChange)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *SessionService) setState(to models.State, reason string) {
	s.mu.Lock()
	change := models.StateChange{From: s.state, To: to, Reason: reason}
	s.state = to
	if to != models.StateTwoFactorPending {
		s.pending = nil
	}
	fns := make([]func(models.StateChange), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

// Current returns the persisted credential record.
func (s *SessionService) Current(ctx context.Context) (models.Credentials, error) {
	return s.store.Load(ctx)
}

// CurrentRole reads the stored role. Read failures are logged and reported
// as RoleNone.
func (s *SessionService) CurrentRole(ctx context.Context) models.Role {
	role, ok, err := s.store.Get(ctx, credentials.KeyRole)
	if err != nil {
		s.log.Warn(ctx, "failed to read role", "error", err)
		return models.RoleNone
	}
	if !ok {
		return models.RoleNone
	}
	return models.ParseRole(role)
}

// Register creates an account. It does not sign in; the caller goes to the
// login screen on success.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) error {
	if blank(in.FirstName, in.LastName, in.Email, in.Password, in.ConfirmPassword) {
		return invalid(MsgFillAllFields)
	}
	if in.Password != in.ConfirmPassword {
		return invalid(MsgPasswordMismatch)
	}
	if err := ValidatePassword(in.Password); err != nil {
		return err
	}

	req := client.RegisterRequest{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     NormalizeEmail(in.Email),
		Password:  in.Password,
	}
	if err := s.api.Register(ctx, req); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	s.log.Info(ctx, "account registered", "email", req.Email)
	return nil
}

// Login authenticates with email and password. A login that needs a second
// factor persists nothing and leaves the session in TwoFactorPending.
func (s *SessionService) Login(ctx context.Context, email, password string) (models.LoginResult, error) {
	if blank(email) {
		return models.LoginResult{}, invalid(MsgEmailRequired)
	}
	if blank(password) {
		return models.LoginResult{}, invalid(MsgPasswordRequired)
	}

	// A new login replaces whatever session the device held.
	s.clear(ctx)
	s.setState(models.StateAuthenticating, "login")

	resp, err := s.api.Login(ctx, client.LoginRequest{Email: NormalizeEmail(email), Password: password})
	if err != nil {
		s.setState(models.StateLoggedOut, "login failed")
		return models.LoginResult{}, fmt.Errorf("login: %w", err)
	}

	if resp.TwoFactorRequired {
		s.mu.Lock()
		s.pending = &challenge{id: resp.ChallengeID, token: resp.AccessToken}
		s.mu.Unlock()
		s.setState(models.StateTwoFactorPending, "second factor required")
		return models.LoginResult{TwoFactorRequired: true, ChallengeID: resp.ChallengeID}, nil
	}

	rec := recordFromAuth(resp, models.Credentials{})
	if err := s.save(ctx, rec); err != nil {
		s.setState(models.StateLoggedOut, "login failed")
		return models.LoginResult{}, err
	}

	s.setState(models.StateLoggedIn, "login")
	s.log.Info(ctx, "logged in", "user_id", rec.UserID, "role", rec.Role.String())
	return models.LoginResult{Credentials: rec}, nil
}

// SetPassword sets the password of an invited or first-time account and
// returns the dashboard matching the stored role.
func (s *SessionService) SetPassword(ctx context.Context, userID, phone, newPassword, confirmPassword string) (models.Credentials, models.Destination, error) {
	if err := validateNewPassword(newPassword, confirmPassword, userID, phone); err != nil {
		return models.Credentials{}, models.RouteLogin, err
	}

	guard := NewGuard(s, s.api)
	err := guard.Do(ctx, func(ctx context.Context, token string) error {
		return s.api.SetPassword(ctx, token, client.SetPasswordRequest{
			UserID:      userID,
			Phone:       phone,
			NewPassword: newPassword,
		})
	})
	if err != nil {
		return models.Credentials{}, models.RouteLogin, fmt.Errorf("set password: %w", err)
	}

	rec, err := s.store.Load(ctx)
	if err != nil {
		return models.Credentials{}, models.RouteLogin, err
	}
	return rec, models.DestinationFor(rec.Role), nil
}

// Refresh exchanges the stored refresh token for a new access token.
// A missing or rejected refresh token invalidates the session and yields
// common.ErrSessionExpired. Transport failures are returned as is.
func (s *SessionService) Refresh(ctx context.Context) error {
	return s.refresh(ctx, "")
}

// refresh coalesces concurrent callers on one in-flight exchange. When
// stale is set and the stored access token already differs from it, a
// concurrent refresh has rotated the token and nothing is sent.
func (s *SessionService) refresh(ctx context.Context, stale string) error {
	rec, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if stale != "" && rec.AccessToken != "" && rec.AccessToken != stale {
		return nil
	}

	// The shared call must not be cut short by one caller going away.
	flightCtx := context.WithoutCancel(ctx)
	_, err, shared := s.refreshes.Do(rec.RefreshToken, func() (any, error) {
		return nil, s.exchange(flightCtx, stale)
	})
	if shared {
		s.log.Debug(ctx, "joined in-flight refresh")
	}
	return err
}

func (s *SessionService) exchange(ctx context.Context, stale string) error {
	rec, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if stale != "" && rec.AccessToken != "" && rec.AccessToken != stale {
		return nil
	}
	if rec.RefreshToken == "" {
		s.Invalidate(ctx, "no refresh token")
		return common.ErrSessionExpired
	}

	resp, err := s.api.Refresh(ctx, rec.RefreshToken)
	if err != nil {
		if !refreshRejected(err) {
			s.log.Warn(ctx, "refresh failed", "error", err)
			return fmt.Errorf("refresh: %w", err)
		}
		s.Invalidate(ctx, "refresh rejected")
		return fmt.Errorf("%w: %v", common.ErrSessionExpired, err)
	}

	s.writeMu.Lock()
	cur, err := s.store.Load(ctx)
	if err != nil {
		s.writeMu.Unlock()
		return err
	}
	if cur.RefreshToken != rec.RefreshToken {
		// Logged out or replaced while the request was in flight.
		s.writeMu.Unlock()
		return common.ErrSessionExpired
	}
	next := recordFromAuth(resp, rec)
	err = s.store.Save(ctx, next)
	s.writeMu.Unlock()
	if err != nil {
		return err
	}

	s.log.Debug(ctx, "access token refreshed", "user_id", next.UserID)
	return nil
}

// refreshRejected reports whether a refresh error means the refresh token
// is no longer usable, as opposed to a transient failure.
func refreshRejected(err error) bool {
	var se *client.ServerError
	if errors.As(err, &se) {
		return se.Status < 500
	}
	return errors.Is(err, client.ErrUnexpectedResponse)
}

// EnsureFresh refreshes ahead of time when the access token is a JWT
// expiring within the leeway. Opaque tokens are left to the reactive path.
func (s *SessionService) EnsureFresh(ctx context.Context) error {
	rec, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if !rec.Authenticated() || rec.RefreshToken == "" {
		return nil
	}

	exp, ok := tokenExpiry(rec.AccessToken)
	if !ok || s.now().Add(s.leeway).Before(exp) {
		return nil
	}
	return s.refresh(ctx, rec.AccessToken)
}

func tokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Logout clears the store. It never fails; store errors are logged.
func (s *SessionService) Logout(ctx context.Context) {
	s.clear(ctx)
	s.setState(models.StateLoggedOut, "logout")
	s.log.Info(ctx, "logged out")
}

// Invalidate performs full invalidation: the store is cleared and listeners
// see a transition to LoggedOut carrying reason.
func (s *SessionService) Invalidate(ctx context.Context, reason string) {
	s.clear(ctx)
	s.setState(models.StateLoggedOut, reason)
	s.log.Warn(ctx, "session invalidated", "reason", reason)
}

func (s *SessionService) clear(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.store.Clear(ctx); err != nil {
		s.log.Error(ctx, "failed to clear credentials", "error", err)
	}
}

func (s *SessionService) save(ctx context.Context, rec models.Credentials) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// accessToken returns the stored access token or "".
func (s *SessionService) accessToken(ctx context.Context) (string, error) {
	rec, err := s.store.Load(ctx)
	if err != nil {
		return "", err
	}
	if !rec.Authenticated() {
		return "", nil
	}
	return rec.AccessToken, nil
}

// syncRole stores a role observed on the user's own profile, so that a
// server-side promotion reaches the role router on its next focus.
func (s *SessionService) syncRole(ctx context.Context, userID string, role models.Role) {
	if role == models.RoleNone {
		return
	}

	s.writeMu.Lock()
	rec, err := s.store.Load(ctx)
	if err != nil || rec.UserID != userID || rec.Role == role {
		s.writeMu.Unlock()
		return
	}
	err = s.store.Set(ctx, credentials.KeyRole, role.String())
	s.writeMu.Unlock()
	if err != nil {
		s.log.Warn(ctx, "failed to update role", "error", err)
		return
	}

	s.log.Info(ctx, "role changed", "user_id", userID, "role", role.String())
	s.setState(models.StateLoggedIn, "role changed")
}

// PendingChallenge returns the outstanding login challenge, if any.
func (s *SessionService) PendingChallenge() (id string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return "", false
	}
	return s.pending.id, true
}

func (s *SessionService) pendingChallenge() *challenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// CompleteTwoFactor finalizes a pending login with the record issued by a
// successful verification.
func (s *SessionService) CompleteTwoFactor(ctx context.Context, rec models.Credentials) error {
	if s.State() != models.StateTwoFactorPending {
		return ErrNoChallenge
	}
	if !rec.Authenticated() {
		return fmt.Errorf("%w: verification did not issue a session", client.ErrUnexpectedResponse)
	}
	rec.Role = rec.Role.OrDefault()

	if err := s.save(ctx, rec); err != nil {
		return err
	}
	s.setState(models.StateLoggedIn, "second factor verified")
	s.log.Info(ctx, "logged in", "user_id", rec.UserID, "role", rec.Role.String())
	return nil
}

// AbandonTwoFactor drops a pending challenge and returns to LoggedOut.
func (s *SessionService) AbandonTwoFactor(ctx context.Context) {
	if s.State() != models.StateTwoFactorPending {
		return
	}
	s.setState(models.StateLoggedOut, "second factor cancelled")
}

// recordFromAuth builds a record from an auth response. Fields the response
// omits are carried over from prev; the role defaults to user.
func recordFromAuth(resp *client.AuthResponse, prev models.Credentials) models.Credentials {
	rec := models.Credentials{
		AccessToken:  resp.AccessToken,
		RefreshToken: prev.RefreshToken,
		UserID:       prev.UserID,
		Role:         prev.Role,
	}
	if resp.RefreshToken != "" {
		rec.RefreshToken = resp.RefreshToken
	}
	if resp.UserID != "" {
		rec.UserID = resp.UserID
	}
	if resp.Role != "" {
		rec.Role = models.ParseRole(resp.Role)
	}
	rec.Role = rec.Role.OrDefault()
	return rec
}
