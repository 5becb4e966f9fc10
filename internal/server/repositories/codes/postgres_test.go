package codes

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/bakerykit/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func TestResetRepository_SaveUpserts(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresResetRepository(db)

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+reset_codes.*ON\s+CONFLICT\s+\(email\)\s+DO\s+UPDATE`).
		WithArgs("ann@bakery.com", "123456", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), "ann@bakery.com", "123456", time.Minute))
}

func TestResetRepository_Find(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresResetRepository(db)
	q := `SELECT\s+code,\s*expires_at\s+FROM\s+reset_codes\s+WHERE\s+email\s*=\s*\$1`

	exp := time.Now().Add(time.Minute)
	mock.ExpectQuery(q).WithArgs("ann@bakery.com").
		WillReturnRows(sqlmock.NewRows([]string{"code", "expires_at"}).AddRow("123456", exp))
	rc, err := repo.Find(context.Background(), "ann@bakery.com")
	require.NoError(t, err)
	assert.Equal(t, "ann@bakery.com", rc.Email)
	assert.Equal(t, "123456", rc.Code)
	assert.True(t, rc.Expires.Equal(exp))

	mock.ExpectQuery(q).WithArgs("nobody@bakery.com").WillReturnError(sql.ErrNoRows)
	_, err = repo.Find(context.Background(), "nobody@bakery.com")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestResetRepository_DeleteError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresResetRepository(db)

	mock.ExpectExec(`DELETE\s+FROM\s+reset_codes`).WithArgs("ann@bakery.com").WillReturnError(errors.New("db down"))
	err := repo.Delete(context.Background(), "ann@bakery.com")
	require.ErrorContains(t, err, "db error: db down")
}

func TestChallengeRepository_Lifecycle(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresChallengeRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`INSERT\s+INTO\s+login_challenges\s+\(id,\s*user_id,\s*expires_at\)`).
		WithArgs("ch-1", "u1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(ctx, "ch-1", "u1", time.Minute))

	exp := time.Now().Add(time.Minute)
	mock.ExpectQuery(`SELECT\s+user_id,\s*expires_at\s+FROM\s+login_challenges`).
		WithArgs("ch-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}).AddRow("u1", exp))
	c, err := repo.Find(ctx, "ch-1")
	require.NoError(t, err)
	assert.Equal(t, "ch-1", c.ID)
	assert.Equal(t, "u1", c.UserID)

	mock.ExpectExec(`DELETE\s+FROM\s+login_challenges\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("ch-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(ctx, "ch-1"))

	mock.ExpectQuery(`FROM\s+login_challenges`).WithArgs("ch-1").WillReturnError(sql.ErrNoRows)
	_, err = repo.Find(ctx, "ch-1")
	require.ErrorIs(t, err, common.ErrNotFound)
}
