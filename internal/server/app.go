// Package server wires the reference backend together: it opens PostgreSQL,
// runs migrations, builds the services and serves the REST API until the
// context is cancelled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/bakerykit/internal/logging"
	"github.com/dmitrijs2005/bakerykit/internal/server/config"
	"github.com/dmitrijs2005/bakerykit/internal/server/httpapi"
	"github.com/dmitrijs2005/bakerykit/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bakerykit/internal/server/services"
)

// Seams for tests.
var (
	openDB               = repomanager.OpenPostgres
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	cartService *services.CartService
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	us := services.NewUserService(db, rm, c, services.NewLogNotifier(logger.With("module", "notifier")))
	cs := services.NewCartService(db, rm)

	return &App{config: c, logger: logger, db: db, userService: us, cartService: cs}, nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config.Address, app.logger, app.userService, app.cartService, app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled or the HTTP server fails, then closes
// the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
