package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/bakerykit/internal/common"
	"github.com/dmitrijs2005/bakerykit/internal/dbx"
	"github.com/dmitrijs2005/bakerykit/internal/server/config"
	"github.com/dmitrijs2005/bakerykit/internal/server/models"
	"github.com/dmitrijs2005/bakerykit/internal/server/repositories/carts"
	"github.com/dmitrijs2005/bakerykit/internal/server/repositories/codes"
	"github.com/dmitrijs2005/bakerykit/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/bakerykit/internal/server/repositories/users"
)

// memStore backs every fake repository. Transactions are driven by sqlmock,
// the fakes ignore the DBTX they are handed.
type memStore struct {
	mu         sync.Mutex
	users      map[string]*models.User
	tokens     map[string]*models.RefreshToken
	resets     map[string]*models.ResetCode
	challenges map[string]*models.LoginChallenge
	carts      map[string][]models.CartItem
	failWith   error
	nextID     int
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]*models.User{},
		tokens:     map[string]*models.RefreshToken{},
		resets:     map[string]*models.ResetCode{},
		challenges: map[string]*models.LoginChallenge{},
		carts:      map[string][]models.CartItem{},
	}
}

func (m *memStore) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *memStore) Users(dbx.DBTX) users.Repository                 { return fakeUsers{m} }
func (m *memStore) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return fakeTokens{m} }
func (m *memStore) ResetCodes(dbx.DBTX) codes.ResetRepository       { return fakeResets{m} }
func (m *memStore) Challenges(dbx.DBTX) codes.ChallengeRepository   { return fakeChallenges{m} }
func (m *memStore) Carts(dbx.DBTX) carts.Repository                 { return fakeCarts{m} }

type fakeUsers struct{ m *memStore }

func (f fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return nil, f.m.failWith
	}
	for _, existing := range f.m.users {
		if existing.Email == u.Email {
			return nil, common.ErrAlreadyExists
		}
	}
	f.m.nextID++
	u.ID = fmt.Sprintf("u%d", f.m.nextID)
	cp := *u
	f.m.users[u.ID] = &cp
	return u, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.failWith != nil {
		return nil, f.m.failWith
	}
	for _, u := range f.m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	u, ok := f.m.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f fakeUsers) update(id string, fn func(u *models.User)) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	u, ok := f.m.users[id]
	if !ok {
		return common.ErrNotFound
	}
	fn(u)
	return nil
}

func (f fakeUsers) SetPassword(_ context.Context, id, phone, hash string) error {
	return f.update(id, func(u *models.User) { u.Phone, u.PasswordHash = phone, hash })
}

func (f fakeUsers) SetPasswordByEmail(ctx context.Context, email, hash string) (string, error) {
	u, err := f.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return u.ID, f.update(u.ID, func(u *models.User) { u.PasswordHash = hash })
}

func (f fakeUsers) UpdateProfile(_ context.Context, id string, upd models.ProfileUpdate) error {
	return f.update(id, func(u *models.User) {
		if upd.FirstName != "" {
			u.FirstName = upd.FirstName
		}
		if upd.LastName != "" {
			u.LastName = upd.LastName
		}
		if upd.Email != "" {
			u.Email = upd.Email
		}
		if upd.Phone != "" {
			u.Phone = upd.Phone
		}
	})
}

func (f fakeUsers) SetTOTP(_ context.Context, id, secret string, enabled bool) error {
	return f.update(id, func(u *models.User) { u.TOTPSecret, u.TOTPEnabled = secret, enabled })
}

type fakeTokens struct{ m *memStore }

func (f fakeTokens) Create(_ context.Context, userID, token string, validity time.Duration) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	f.m.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f fakeTokens) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	t, ok := f.m.tokens[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	delete(f.m.tokens, token)
	return t, nil
}

func (f fakeTokens) DeleteForUser(_ context.Context, userID string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for k, t := range f.m.tokens {
		if t.UserID == userID {
			delete(f.m.tokens, k)
		}
	}
	return nil
}

type fakeResets struct{ m *memStore }

func (f fakeResets) Save(_ context.Context, email, code string, validity time.Duration) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	f.m.resets[email] = &models.ResetCode{Email: email, Code: code, Expires: time.Now().Add(validity)}
	return nil
}

func (f fakeResets) Find(_ context.Context, email string) (*models.ResetCode, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	rc, ok := f.m.resets[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	return rc, nil
}

func (f fakeResets) Delete(_ context.Context, email string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	delete(f.m.resets, email)
	return nil
}

type fakeChallenges struct{ m *memStore }

func (f fakeChallenges) Create(_ context.Context, id, userID string, validity time.Duration) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	f.m.challenges[id] = &models.LoginChallenge{ID: id, UserID: userID, Expires: time.Now().Add(validity)}
	return nil
}

func (f fakeChallenges) Find(_ context.Context, id string) (*models.LoginChallenge, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	ch, ok := f.m.challenges[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return ch, nil
}

func (f fakeChallenges) Delete(_ context.Context, id string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	delete(f.m.challenges, id)
	return nil
}

type fakeCarts struct{ m *memStore }

func (f fakeCarts) List(_ context.Context, userID string) ([]models.CartItem, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return append([]models.CartItem(nil), f.m.carts[userID]...), nil
}

func (f fakeCarts) Set(_ context.Context, userID string, item models.CartItem) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	lines := f.m.carts[userID]
	for i, it := range lines {
		if it.ProductID == item.ProductID {
			if item.Quantity == 0 {
				f.m.carts[userID] = append(lines[:i], lines[i+1:]...)
			} else {
				lines[i].Quantity = item.Quantity
			}
			return nil
		}
	}
	if item.Quantity > 0 {
		f.m.carts[userID] = append(lines, item)
	}
	return nil
}

func (f fakeCarts) Count(_ context.Context, userID string) (int, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	n := 0
	for _, it := range f.m.carts[userID] {
		n += it.Quantity
	}
	return n, nil
}

type recordingNotifier struct {
	email, code string
	calls       int
}

func (n *recordingNotifier) SendResetCode(_ context.Context, email, code string) error {
	n.email, n.code = email, code
	n.calls++
	return nil
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.SecretKey = "k"
	return c
}

type serviceHarness struct {
	db       *sql.DB
	mock     sqlmock.Sqlmock
	store    *memStore
	notifier *recordingNotifier
	users    *UserService
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	h := &serviceHarness{db: db, mock: mock, store: newMemStore(), notifier: &recordingNotifier{}}
	h.users = NewUserService(db, h.store, testConfig(), h.notifier)
	return h
}

// expectTx queues one committed transaction.
func (h *serviceHarness) expectTx() {
	h.mock.ExpectBegin()
	h.mock.ExpectCommit()
}
