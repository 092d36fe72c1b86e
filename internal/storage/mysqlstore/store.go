// Package mysqlstore keeps visitor state in a MySQL table, for deployments running several replicas.
package mysqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intdb "transfers/internal/db"
	"transfers/internal/storage"
)

const table = "visitor_state"

type Store struct {
	DB *sql.DB
}

// New wraps db and creates the visitor_state table when missing.
func New(db *sql.DB) (*Store, error) {
	s := &Store{DB: db}
	if err := s.ensureTable(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureTable(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("db not available")
	}
	if intdb.HasTable(ctx, s.DB, table) {
		return nil
	}
	ddl := `
CREATE TABLE IF NOT EXISTS visitor_state (
	visitor_id VARCHAR(64) NOT NULL,
	state_key VARCHAR(64) NOT NULL,
	state_value MEDIUMBLOB NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	PRIMARY KEY (visitor_id, state_key)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`
	_, err := s.DB.ExecContext(ctx, ddl)
	return err
}

func (s *Store) Get(ctx context.Context, visitor, key string) ([]byte, error) {
	var v []byte
	err := s.DB.QueryRowContext(ctx,
		`SELECT state_value FROM visitor_state WHERE visitor_id=? AND state_key=? LIMIT 1`,
		visitor, key,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Store) Put(ctx context.Context, visitor, key string, value []byte) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO visitor_state (visitor_id, state_key, state_value) VALUES (?,?,?)
		ON DUPLICATE KEY UPDATE state_value=VALUES(state_value)`,
		visitor, key, value,
	)
	return err
}

func (s *Store) Delete(ctx context.Context, visitor string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, 0, len(keys)+1)
	args = append(args, visitor)
	for _, k := range keys {
		args = append(args, k)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM visitor_state WHERE visitor_id=? AND state_key IN (`+placeholders+`)`,
		args...,
	)
	return err
}

// Claim inserts the key, or takes over a row whose updated_at is older than ttl. The upsert is
// one statement, so replicas racing for the same key see exactly one winner: MySQL reports one
// affected row for an insert, two for a takeover and zero when a live claim was left alone.
func (s *Store) Claim(ctx context.Context, visitor, key string, ttl time.Duration) (bool, error) {
	secs := int64(ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	stamp := []byte(time.Now().UTC().Format(time.RFC3339Nano))
	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO visitor_state (visitor_id, state_key, state_value) VALUES (?,?,?)
		ON DUPLICATE KEY UPDATE
			state_value=IF(updated_at < NOW() - INTERVAL ? SECOND, VALUES(state_value), state_value),
			updated_at=IF(updated_at < NOW() - INTERVAL ? SECOND, CURRENT_TIMESTAMP, updated_at)`,
		visitor, key, stamp, secs, secs,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}
