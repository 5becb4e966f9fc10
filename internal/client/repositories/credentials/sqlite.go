package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bakerykit/internal/client/models"
	"github.com/dmitrijs2005/bakerykit/internal/common"
	"github.com/dmitrijs2005/bakerykit/internal/cryptox"
	"github.com/dmitrijs2005/bakerykit/internal/dbx"
)

const sealSaltKey = "seal_salt"

// SQLiteStore implements Store over the metadata table.
type SQLiteStore struct {
	db    *sql.DB
	codec codec
}

// NewSQLiteStore stores values as plain bytes.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, codec: plainCodec{}}
}

// NewSealedSQLiteStore seals values with a key derived from secret. The salt
// is created on first use and reused afterwards.
func NewSealedSQLiteStore(ctx context.Context, db *sql.DB, secret []byte) (*SQLiteStore, error) {
	salt, err := getRaw(ctx, db, sealSaltKey)
	if err != nil {
		return nil, err
	}
	if salt == nil {
		salt = common.GenerateRandByteArray(cryptox.SaltSize)
		if err := setRaw(ctx, db, sealSaltKey, salt); err != nil {
			return nil, err
		}
	}
	return &SQLiteStore{db: db, codec: sealCodec{key: cryptox.DeriveKey(secret, salt)}}, nil
}

func getRaw(ctx context.Context, q dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func setRaw(ctx context.Context, q dbx.DBTX, key string, value []byte) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func deleteRaw(ctx context.Context, q dbx.DBTX, key string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, key Key) (string, bool, error) {
	raw, err := getRaw(ctx, s.db, string(key))
	if err != nil || raw == nil {
		return "", false, err
	}
	v, err := s.codec.decode(raw)
	if err != nil {
		return "", false, fmt.Errorf("%w: %s", ErrUnreadable, key)
	}
	return v, true, nil
}

// Set upserts key. An empty value removes the key, since empty means absent.
func (s *SQLiteStore) Set(ctx context.Context, key Key, value string) error {
	if value == "" {
		return s.Remove(ctx, key)
	}
	raw, err := s.codec.encode(value)
	if err != nil {
		return err
	}
	return setRaw(ctx, s.db, string(key), raw)
}

func (s *SQLiteStore) Remove(ctx context.Context, key Key) error {
	return deleteRaw(ctx, s.db, string(key))
}

// Clear removes every credential key. Other metadata rows are kept.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM metadata WHERE key IN (?, ?, ?, ?)`,
		string(KeyAccessToken), string(KeyRefreshToken), string(KeyUserID), string(KeyRole))
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// Load reads the whole record. Absent keys become empty fields.
func (s *SQLiteStore) Load(ctx context.Context) (models.Credentials, error) {
	values := make(map[Key]string, len(Keys))
	for _, k := range Keys {
		v, ok, err := s.Get(ctx, k)
		if err != nil {
			return models.Credentials{}, err
		}
		if ok {
			values[k] = v
		}
	}
	return recordFrom(values), nil
}

// Save replaces the record in one transaction: present fields are upserted,
// empty ones removed.
func (s *SQLiteStore) Save(ctx context.Context, rec models.Credentials) error {
	values := recordValues(rec)

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, k := range Keys {
			v := values[k]
			if v == "" {
				if err := deleteRaw(ctx, tx, string(k)); err != nil {
					return err
				}
				continue
			}
			raw, err := s.codec.encode(v)
			if err != nil {
				return err
			}
			if err := setRaw(ctx, tx, string(k), raw); err != nil {
				return err
			}
		}
		return nil
	})
}
