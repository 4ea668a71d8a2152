// Package postgres provides a cache.Store persisted in a PostgreSQL table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/adeilh/go-netcall/cache"
)

// Store implements cache.Store on top of a single table. Expired rows read as
// misses and are removed by Purge.
type Store struct {
	db    *sql.DB
	table string
	now   func() time.Time
	owned bool

	getQuery    string
	setQuery    string
	deleteQuery string
	purgeQuery  string
}

// NewStore wraps an existing *sql.DB connection. Only the table option is
// used and the caller keeps ownership of db.
func NewStore(db *sql.DB, opts ...Option) *Store {
	cfg := buildOptions(opts...)
	t := pq.QuoteIdentifier(cfg.Table)
	return &Store{
		db:          db,
		table:       cfg.Table,
		now:         time.Now,
		getQuery:    `SELECT value, expires_at FROM ` + t + ` WHERE key = $1`,
		setQuery:    `INSERT INTO ` + t + ` (key, value, expires_at) VALUES ($1, $2, $3) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
		deleteQuery: `DELETE FROM ` + t + ` WHERE key = $1`,
		purgeQuery:  `DELETE FROM ` + t + ` WHERE expires_at IS NOT NULL AND expires_at <= $1`,
	}
}

// WithClock overrides the time source (useful for tests).
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

// Close releases the connection pool when the store opened it itself.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// Migrate creates the cache table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	return ApplyMigrations(ctx, s.db, Schema(s.table)...)
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		value     []byte
		expiresAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, s.getQuery, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cache.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get: %w", err)
	}
	if expiresAt.Valid && !s.now().Before(expiresAt.Time) {
		return nil, cache.ErrNotFound
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: s.now().Add(ttl).UTC(), Valid: true}
	}
	if _, err := s.db.ExecContext(ctx, s.setQuery, key, value, expiresAt); err != nil {
		return fmt.Errorf("postgres: set: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, s.deleteQuery, key)
	if err != nil {
		return fmt.Errorf("postgres: delete: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return cache.ErrNotFound
	}
	return nil
}

// Purge removes expired rows and reports how many were deleted.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.purgeQuery, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("postgres: purge: %w", err)
	}
	return res.RowsAffected()
}
