// Package services contains the backend's business logic. UserService
// covers accounts: registration, password and two-factor login, token
// refresh, password recovery and the profile.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/bakerykit/internal/common"
	"github.com/dmitrijs2005/bakerykit/internal/dbx"
	"github.com/dmitrijs2005/bakerykit/internal/server/auth"
	"github.com/dmitrijs2005/bakerykit/internal/server/config"
	"github.com/dmitrijs2005/bakerykit/internal/server/models"
	"github.com/dmitrijs2005/bakerykit/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bakerykit/internal/shared"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
)

// ResetCodeDigits is the length of emailed reset codes.
const ResetCodeDigits = 6

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Session is an issued token pair together with the identity it belongs to.
type Session struct {
	TokenPair
	UserID string
	Role   string
}

// LoginResult is either a Session or, for accounts with two-factor
// authentication, the id of the challenge to answer.
type LoginResult struct {
	Session     *Session
	ChallengeID string
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// TwoFactorSetup is what an authenticator app needs to enrol.
type TwoFactorSetup struct {
	Secret     string
	OtpAuthURL string
}

// dummyHash is checked against when the email is unknown so both branches
// of Login cost one Argon2 run.
var dummyHash = sync.OnceValue(func() string {
	return auth.HashPassword("not-a-real-password")
})

type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	notifier                     Notifier
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	challengeValidityDuration    time.Duration
	resetCodeValidityDuration    time.Duration
	totpIssuer                   string
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, n Notifier) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		notifier:                     n,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		challengeValidityDuration:    cfg.ChallengeValidityDuration,
		resetCodeValidityDuration:    cfg.ResetCodeValidityDuration,
		totpIssuer:                   cfg.TOTPIssuer,
	}
}

// Register creates a user account with the default role.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	email := normalizeEmail(in.Email)
	if first == "" || last == "" || email == "" || in.Password == "" {
		return nil, invalid(MsgFieldsRequired)
	}
	if !validEmail(email) {
		return nil, invalid(MsgInvalidEmail)
	}
	if !shared.IsStrongPassword(in.Password) {
		return nil, invalid(MsgWeakPassword)
	}

	user := &models.User{
		FirstName:    first,
		LastName:     last,
		Email:        email,
		PasswordHash: auth.HashPassword(in.Password),
		Role:         models.RoleUser,
	}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login checks the password. Accounts with two-factor authentication get a
// challenge instead of tokens.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_, _ = auth.CheckPassword(password, dummyHash())
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrInternal
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, common.ErrInvalidCredentials
	}

	if user.TOTPEnabled {
		id := uuid.NewString()
		if err := s.repomanager.Challenges(s.db).Create(ctx, id, user.ID, s.challengeValidityDuration); err != nil {
			return nil, common.ErrInternal
		}
		return &LoginResult{ChallengeID: id}, nil
	}

	session, err := s.issueSession(ctx, user, s.db)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Session: session}, nil
}

// VerifyLogin answers a login challenge with a TOTP code. A wrong code keeps
// the challenge open until it expires.
func (s *UserService) VerifyLogin(ctx context.Context, challengeID, code string) (*Session, error) {
	challenges := s.repomanager.Challenges(s.db)

	ch, err := challenges.Find(ctx, challengeID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCode
		}
		return nil, common.ErrInternal
	}
	if ch.Expires.Before(time.Now()) {
		_ = challenges.Delete(ctx, challengeID)
		return nil, common.ErrInvalidCode
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, ch.UserID)
	if err != nil {
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	if user.TOTPSecret == "" || !totp.Validate(strings.TrimSpace(code), user.TOTPSecret) {
		return nil, common.ErrInvalidCode
	}

	var session *Session
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Challenges(tx).Delete(ctx, challengeID); err != nil {
			return fmt.Errorf("error deleting challenge: %w", err)
		}
		var genErr error
		session, genErr = s.issueSession(ctx, user, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return session, nil
}

// RefreshToken trades a refresh token for a fresh Session. The old token is
// consumed in the same transaction that issues the new one, so a token works
// once. Unknown and expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	var (
		session *Session
		expired bool
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		token, err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken)
		if err != nil {
			return err
		}
		if token.ExpiredAt(time.Now()) {
			// commit, so the stale row goes away
			expired = true
			return nil
		}

		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			return err
		}
		session, err = s.issueSession(ctx, user, tx)
		return err
	})

	switch {
	case errors.Is(err, common.ErrNotFound):
		return nil, common.ErrRefreshTokenExpired
	case err != nil:
		return nil, fmt.Errorf("error rotating refresh token: %w", err)
	case expired:
		return nil, common.ErrRefreshTokenExpired
	}
	return session, nil
}

// SetPassword sets the password and phone of a signed-in account.
func (s *UserService) SetPassword(ctx context.Context, userID, phone, password string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return invalid(MsgFieldsRequired)
	}
	if !shared.IsStrongPassword(password) {
		return invalid(MsgWeakPassword)
	}
	return s.repomanager.Users(s.db).SetPassword(ctx, userID, phone, auth.HashPassword(password))
}

// ForgotPassword issues a reset code and hands it to the notifier. Unknown
// emails succeed silently so the endpoint does not reveal which accounts exist.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return invalid(MsgFieldsRequired)
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return common.ErrInternal
	}

	code, err := shared.MakeNumericCode(ResetCodeDigits)
	if err != nil {
		return common.ErrInternal
	}
	if err := s.repomanager.ResetCodes(s.db).Save(ctx, user.Email, code, s.resetCodeValidityDuration); err != nil {
		return fmt.Errorf("error saving reset code: %w", err)
	}
	return s.notifier.SendResetCode(ctx, user.Email, code)
}

// ResetPassword replaces the password when code matches the one issued for
// email. The code is consumed and every refresh token of the account is
// revoked.
func (s *UserService) ResetPassword(ctx context.Context, email, code, password string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" || password == "" {
		return invalid(MsgFieldsRequired)
	}
	if !shared.IsStrongPassword(password) {
		return invalid(MsgWeakPassword)
	}

	stored, err := s.repomanager.ResetCodes(s.db).Find(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrInvalidCode
		}
		return common.ErrInternal
	}
	if stored.Expires.Before(time.Now()) || subtle.ConstantTimeCompare([]byte(stored.Code), []byte(code)) != 1 {
		return common.ErrInvalidCode
	}

	hash := auth.HashPassword(password)
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		userID, err := s.repomanager.Users(tx).SetPasswordByEmail(ctx, email, hash)
		if err != nil {
			return fmt.Errorf("error setting password: %w", err)
		}
		if err := s.repomanager.ResetCodes(tx).Delete(ctx, email); err != nil {
			return fmt.Errorf("error deleting reset code: %w", err)
		}
		if err := s.repomanager.RefreshTokens(tx).DeleteForUser(ctx, userID); err != nil {
			return fmt.Errorf("error revoking refresh tokens: %w", err)
		}
		return nil
	})
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// UpdateProfile changes the fields present in upd.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) error {
	upd.FirstName = strings.TrimSpace(upd.FirstName)
	upd.LastName = strings.TrimSpace(upd.LastName)
	upd.Phone = strings.TrimSpace(upd.Phone)
	upd.Email = normalizeEmail(upd.Email)
	if upd.Email != "" && !validEmail(upd.Email) {
		return invalid(MsgInvalidEmail)
	}
	return s.repomanager.Users(s.db).UpdateProfile(ctx, userID, upd)
}

func (s *UserService) UpdateName(ctx context.Context, userID, firstName, lastName string) error {
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return invalid(MsgFieldsRequired)
	}
	return s.repomanager.Users(s.db).UpdateProfile(ctx, userID, models.ProfileUpdate{FirstName: firstName, LastName: lastName})
}

func (s *UserService) TwoFactorStatus(ctx context.Context, userID string) (bool, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.TOTPEnabled, nil
}

// EnableTwoFactor generates a new TOTP secret and turns the second factor
// on at once, so the next Login is challenged. Enabling again replaces the
// secret.
func (s *UserService) EnableTwoFactor(ctx context.Context, userID string) (*TwoFactorSetup, error) {
	users := s.repomanager.Users(s.db)
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{Issuer: s.totpIssuer, AccountName: user.Email})
	if err != nil {
		return nil, common.ErrInternal
	}
	if err := users.SetTOTP(ctx, userID, key.Secret(), true); err != nil {
		return nil, err
	}
	return &TwoFactorSetup{Secret: key.Secret(), OtpAuthURL: key.URL()}, nil
}

// ConfirmTwoFactor checks code against the enrolled secret. It is
// idempotent and leaves the second factor enabled.
func (s *UserService) ConfirmTwoFactor(ctx context.Context, userID, code string) error {
	users := s.repomanager.Users(s.db)
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TOTPSecret == "" {
		return common.ErrTwoFactorNotEnrolled
	}
	if !totp.Validate(strings.TrimSpace(code), user.TOTPSecret) {
		return common.ErrInvalidCode
	}
	if user.TOTPEnabled {
		return nil
	}
	return users.SetTOTP(ctx, userID, user.TOTPSecret, true)
}

func (s *UserService) DisableTwoFactor(ctx context.Context, userID string) error {
	return s.repomanager.Users(s.db).SetTOTP(ctx, userID, "", false)
}

// --- helpers below ---

func (s *UserService) generateAccessToken(user *models.User) (string, error) {
	return auth.GenerateToken(user.ID, user.Role, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return shared.MakeRandHexString(32)
}

func (s *UserService) issueSession(ctx context.Context, user *models.User, tx dbx.DBTX) (*Session, error) {
	access, err := s.generateAccessToken(user)
	if err != nil {
		return nil, common.ErrInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrInternal
	}
	return &Session{
		TokenPair: TokenPair{AccessToken: access, RefreshToken: refresh},
		UserID:    user.ID,
		Role:      user.Role,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
