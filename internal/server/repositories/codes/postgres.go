package codes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bakerykit/internal/common"
	"github.com/dmitrijs2005/bakerykit/internal/dbx"
	"github.com/dmitrijs2005/bakerykit/internal/server/models"
)

type PostgresResetRepository struct {
	db dbx.DBTX
}

func NewPostgresResetRepository(db dbx.DBTX) *PostgresResetRepository {
	return &PostgresResetRepository{db: db}
}

func (r *PostgresResetRepository) Save(ctx context.Context, email, code string, validity time.Duration) error {
	query := `
		INSERT INTO reset_codes (email, code, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at
	`
	if _, err := r.db.ExecContext(ctx, query, email, code, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresResetRepository) Find(ctx context.Context, email string) (*models.ResetCode, error) {
	query := `
		SELECT code, expires_at
		FROM reset_codes
		WHERE email = $1
	`
	rc := &models.ResetCode{Email: email}
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&rc.Code, &rc.Expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rc, nil
}

func (r *PostgresResetRepository) Delete(ctx context.Context, email string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reset_codes WHERE email = $1`, email); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

type PostgresChallengeRepository struct {
	db dbx.DBTX
}

func NewPostgresChallengeRepository(db dbx.DBTX) *PostgresChallengeRepository {
	return &PostgresChallengeRepository{db: db}
}

func (r *PostgresChallengeRepository) Create(ctx context.Context, id, userID string, validity time.Duration) error {
	query := `
		INSERT INTO login_challenges (id, user_id, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, id, userID, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresChallengeRepository) Find(ctx context.Context, id string) (*models.LoginChallenge, error) {
	query := `
		SELECT user_id, expires_at
		FROM login_challenges
		WHERE id = $1
	`
	c := &models.LoginChallenge{ID: id}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&c.UserID, &c.Expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresChallengeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM login_challenges WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
