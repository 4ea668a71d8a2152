package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrMissingDSN = errors.New("postgres: DSN is required")

// Open connects to PostgreSQL, applies pool settings and pings the server.
func Open(ctx context.Context, opts ...Option) (*sql.DB, error) {
	cfg := buildOptions(opts...)
	if cfg.DSN == "" {
		return nil, ErrMissingDSN
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	configurePool(db, cfg)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return db, nil
}

// Connect opens a pool, migrates the cache table and returns a Store that
// owns the pool. Release it with Close.
func Connect(ctx context.Context, opts ...Option) (*Store, error) {
	db, err := Open(ctx, opts...)
	if err != nil {
		return nil, err
	}
	s := NewStore(db, opts...)
	s.owned = true
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func configurePool(db *sql.DB, cfg Options) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}

func buildOptions(opts ...Option) Options {
	cfg := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
