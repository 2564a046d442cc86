// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/caterverse/caterlink/internal/config"
	"github.com/caterverse/caterlink/internal/session"
	"github.com/caterverse/caterlink/internal/util"
)

// BuildVault constructs the session vault: the durable backend selected by
// the configuration paired with an in-memory backend for non-remembered
// sessions. The returned cleanup closes whatever the backend holds open and
// is safe to call once.
func BuildVault(cfg *config.Config, sd *util.StateDir) (*session.Adapter, func(), error) {
	var durable session.Store
	cleanup := func() {}

	switch cfg.SessionBackend {
	case "", "file":
		durable = session.NewFileStore(sd)
	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = sd.ResolvePath("sessions.db")
		}
		store, err := session.OpenSQLiteStore(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite session store: %w", err)
		}
		durable = store
		cleanup = func() {
			if errClose := store.Close(); errClose != nil {
				log.Debugf("failed to close sqlite session store: %v", errClose)
			}
		}
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("postgres session backend selected but no DSN configured")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		vault, err := session.OpenPostgresVault(ctx, cfg.PostgresDSN, cfg.PostgresTable)
		cancel()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres session vault: %w", err)
		}
		durable = vault
		cleanup = func() {
			if errClose := vault.Close(); errClose != nil {
				log.Debugf("failed to close postgres session vault: %v", errClose)
			}
		}
		log.Infof("postgres-backed session vault enabled, table: %s", cfg.PostgresTable)
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q (expected file, sqlite, or postgres)", cfg.SessionBackend)
	}

	return session.NewAdapter(durable, session.NewMemStore()), cleanup, nil
}
