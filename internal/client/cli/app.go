package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/bakerykit/internal/client/client"
	"github.com/dmitrijs2005/bakerykit/internal/client/config"
	"github.com/dmitrijs2005/bakerykit/internal/client/models"
	"github.com/dmitrijs2005/bakerykit/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/bakerykit/internal/client/services"
	"github.com/dmitrijs2005/bakerykit/internal/logging"
)

type App struct {
	config *config.Config
	db     *sql.DB
	log    logging.Logger

	session   *services.SessionService
	guard     *services.Guard
	recovery  *services.RecoveryService
	twoFactor *services.TwoFactorService
	router    *services.RoleRouter
	profiles  *services.ProfileService
	cart      *services.CartService

	reader *bufio.Reader
	out    io.Writer

	watchMu     sync.Mutex
	stopWatcher context.CancelFunc
	cartCount   atomic.Int64
}

// NewApp opens the local database and builds the services against the
// configured backend.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	store, err := openStore(ctx, db, c.DeviceSecret)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	api := client.NewHTTPClient(c.BackendURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithRateLimit(c.RequestsPerSecond),
		client.WithLogger(log.With("component", "http")),
	)

	a := newApp(c, api, store, log, os.Stdin, os.Stdout)
	a.db = db
	return a, nil
}

func openStore(ctx context.Context, db *sql.DB, secret string) (credentials.Store, error) {
	if secret == "" {
		return credentials.NewSQLiteStore(db), nil
	}
	return credentials.NewSealedSQLiteStore(ctx, db, []byte(secret))
}

func newApp(c *config.Config, api client.Client, store credentials.Store, log logging.Logger, in io.Reader, out io.Writer) *App {
	session := services.NewSessionService(api, store,
		services.WithSessionLogger(log),
		services.WithRefreshLeeway(c.RefreshLeeway),
	)
	guard := services.NewGuard(session, api)

	a := &App{
		config:    c,
		log:       log,
		session:   session,
		guard:     guard,
		recovery:  services.NewRecoveryService(api, log),
		twoFactor: services.NewTwoFactorService(session, guard, api),
		router:    services.NewRoleRouter(session, log),
		profiles:  services.NewProfileService(guard, api),
		cart:      services.NewCartService(guard, api),
		reader:    bufio.NewReader(in),
		out:       out,
	}
	a.cartCount.Store(-1)
	a.router.OnChange(a.onSurfaceChange)
	return a
}

// Run restores the previous session, if any, and blocks in the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	state, err := a.session.Restore(ctx)
	if err != nil {
		a.log.Warn(ctx, "failed to restore session", "error", err)
	}
	a.router.Mount(ctx)

	if state == models.StateLoggedIn {
		if _, err := a.profiles.Get(ctx); err != nil {
			a.report(err)
		}
	}

	a.Root(ctx)
}

// Close stops background work and releases the database.
func (a *App) Close() {
	a.stopCartWatcher()
	a.router.Close()
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == models.StateLoggedIn
}

// onSurfaceChange keeps the cart counter running exactly while a
// navigation surface is mounted.
func (a *App) onSurfaceChange(s models.Surface) {
	if s == models.SurfaceNone {
		a.stopCartWatcher()
		return
	}
	a.startCartWatcher(a.config.CartPollInterval)
}

func (a *App) startCartWatcher(interval time.Duration) {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	if a.stopWatcher != nil || interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.stopWatcher = cancel

	go func() {
		_ = a.cart.WatchCount(ctx, interval, func(n int, err error) {
			if err != nil {
				a.log.Debug(ctx, "cart count failed", "error", err)
				return
			}
			a.cartCount.Store(int64(n))
		})
	}()
}

func (a *App) stopCartWatcher() {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	if a.stopWatcher != nil {
		a.stopWatcher()
		a.stopWatcher = nil
	}
	a.cartCount.Store(-1)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
