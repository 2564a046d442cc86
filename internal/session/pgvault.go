// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	// DefaultPostgresTable is the session table used when none is configured.
	DefaultPostgresTable = "caterlink_sessions"

	pgOpTimeout = 10 * time.Second
)

var pgIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresVault is a durable session backend over a shared Postgres table,
// for deployments where several gateway hosts must observe the same session.
type PostgresVault struct {
	db    *sql.DB
	table string
}

// NewPostgresVault wraps an existing database handle. The table name must be
// a plain SQL identifier; it is interpolated into statements directly.
func NewPostgresVault(db *sql.DB, table string) (*PostgresVault, error) {
	if table == "" {
		table = DefaultPostgresTable
	}
	if !pgIdentifierRe.MatchString(table) {
		return nil, fmt.Errorf("invalid session table name: %q", table)
	}
	return &PostgresVault{db: db, table: table}, nil
}

// OpenPostgresVault connects to Postgres via the pgx stdlib driver and
// ensures the session table exists.
func OpenPostgresVault(ctx context.Context, dsn, table string) (*PostgresVault, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	v, err := NewPostgresVault(db, table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := v.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return v, nil
}

// EnsureSchema creates the session table if it does not exist.
func (v *PostgresVault) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pgOpTimeout)
	defer cancel()
	_, err := v.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, v.table))
	if err != nil {
		return fmt.Errorf("failed to create session table %s: %w", v.table, err)
	}
	return nil
}

// Name implements Store.
func (v *PostgresVault) Name() string { return "postgres" }

// Get implements Store.
func (v *PostgresVault) Get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), pgOpTimeout)
	defer cancel()
	var value string
	err := v.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, v.table), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session key %s: %w", key, err)
	}
	return value, nil
}

// Set implements Store.
func (v *PostgresVault) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), pgOpTimeout)
	defer cancel()
	_, err := v.db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, v.table), key, value)
	if err != nil {
		return fmt.Errorf("failed to write session key %s: %w", key, err)
	}
	return nil
}

// Remove implements Store.
func (v *PostgresVault) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), pgOpTimeout)
	defer cancel()
	if _, err := v.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, v.table), key); err != nil {
		return fmt.Errorf("failed to remove session key %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (v *PostgresVault) Close() error {
	return v.db.Close()
}
