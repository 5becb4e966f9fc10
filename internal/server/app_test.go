package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/bakerykit/internal/logging"
	"github.com/dmitrijs2005/bakerykit/internal/server/config"
	"github.com/dmitrijs2005/bakerykit/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// migrationsOnly wraps the real manager but stubs out migrations.
type migrationsOnly struct {
	repomanager.RepositoryManager
	err   error
	calls int
}

func (m *migrationsOnly) RunMigrations(context.Context, *sql.DB) error {
	m.calls++
	return m.err
}

func stubDeps(t *testing.T, migrateErr error) (sqlmock.Sqlmock, *migrationsOnly) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	rm := &migrationsOnly{RepositoryManager: repomanager.NewPostgresRepositoryManager(), err: migrateErr}

	origOpen, origRM := openDB, newRepositoryManager
	openDB = func(context.Context, string) (*sql.DB, error) { return db, nil }
	newRepositoryManager = func() repomanager.RepositoryManager { return rm }
	t.Cleanup(func() { openDB, newRepositoryManager = origOpen, origRM })

	return mock, rm
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.Address = "127.0.0.1:0"
	return c
}

func TestNewApp_OpenError(t *testing.T) {
	orig := openDB
	openDB = func(context.Context, string) (*sql.DB, error) { return nil, errors.New("refused") }
	defer func() { openDB = orig }()

	_, err := NewApp(context.Background(), testConfig(), logging.Nop())
	require.ErrorContains(t, err, "db init error")
}

func TestNewApp_MigrationError(t *testing.T) {
	mock, rm := stubDeps(t, errors.New("bad sql"))
	mock.ExpectClose()

	_, err := NewApp(context.Background(), testConfig(), logging.Nop())
	require.ErrorContains(t, err, "migrations error")
	assert.Equal(t, 1, rm.calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApp_RunUntilCancelled(t *testing.T) {
	mock, rm := stubDeps(t, nil)
	mock.ExpectClose()

	app, err := NewApp(context.Background(), testConfig(), logging.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, rm.calls)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}
