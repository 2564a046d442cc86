// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"BACKEND_ORIGIN", "backend_origin", "CATERLINK_STATE_DIR", "caterlink_state_dir", "CATERLINK_PG_DSN", "caterlink_pg_dsn"} {
		os.Unsetenv(key)
	}
}

func TestLoadConfig_Full(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
host: "127.0.0.1"
port: 9001
backend-origin: "https://erp.example.com"
session-backend: "sqlite"
sqlite-path: "/tmp/sessions.db"
debug: true
logging-to-file: true
logs-max-total-size-mb: 50
request-timeout-seconds: 45
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if cfg.Port != 9001 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.BackendOrigin != "https://erp.example.com" {
		t.Errorf("BackendOrigin = %q", cfg.BackendOrigin)
	}
	if cfg.SessionBackend != "sqlite" {
		t.Errorf("SessionBackend = %q", cfg.SessionBackend)
	}
	if !cfg.Debug || !cfg.LoggingToFile {
		t.Error("Debug and LoggingToFile should be true")
	}
	if cfg.ClientTimeout() != 45*time.Second {
		t.Errorf("ClientTimeout() = %v, want 45s", cfg.ClientTimeout())
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `backend-origin: "https://erp.example.com"`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Port != 8217 {
		t.Errorf("default Port = %d, want 8217", cfg.Port)
	}
	if cfg.SessionBackend != "file" {
		t.Errorf("default SessionBackend = %q, want file", cfg.SessionBackend)
	}
	if cfg.PostgresTable != "caterlink_sessions" {
		t.Errorf("default PostgresTable = %q", cfg.PostgresTable)
	}
	if cfg.ClientTimeout() != 30*time.Second {
		t.Errorf("default ClientTimeout() = %v, want 30s", cfg.ClientTimeout())
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	if _, err := LoadConfig(missing); err == nil {
		t.Error("LoadConfig() on missing file should error")
	}

	// Optional mode falls back to defaults instead.
	cfg, err := LoadConfigOptional(missing, true)
	if err != nil {
		t.Fatalf("LoadConfigOptional() failed: %v", err)
	}
	if cfg.Port != 8217 {
		t.Errorf("optional default Port = %d, want 8217", cfg.Port)
	}
}

func TestLoadConfigOptional_EmptyAndInvalid(t *testing.T) {
	clearEnv(t)

	empty := writeConfig(t, "")
	cfg, err := LoadConfigOptional(empty, true)
	if err != nil {
		t.Fatalf("LoadConfigOptional() on empty file failed: %v", err)
	}
	if cfg.Port != 8217 {
		t.Errorf("empty file should yield defaults, Port = %d", cfg.Port)
	}

	invalid := writeConfig(t, "port: [not an int")
	cfg, err = LoadConfigOptional(invalid, true)
	if err != nil {
		t.Fatalf("LoadConfigOptional() on invalid file failed: %v", err)
	}
	if cfg.Port != 8217 {
		t.Errorf("invalid file should yield defaults, Port = %d", cfg.Port)
	}

	// Strict mode reports the parse failure.
	if _, err = LoadConfigOptional(invalid, false); err == nil {
		t.Error("strict load of invalid YAML should error")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
backend-origin: "https://from-file.example.com"
session-backend: "file"
`)

	os.Setenv("BACKEND_ORIGIN", "https://from-env.example.com")
	os.Setenv("CATERLINK_PG_DSN", "postgres://u:p@db/caterlink")
	defer clearEnv(t)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.BackendOrigin != "https://from-env.example.com" {
		t.Errorf("BackendOrigin = %q, want env override", cfg.BackendOrigin)
	}
	// A Postgres DSN in the environment forces the postgres backend.
	if cfg.SessionBackend != "postgres" {
		t.Errorf("SessionBackend = %q, want postgres", cfg.SessionBackend)
	}
	if cfg.PostgresDSN != "postgres://u:p@db/caterlink" {
		t.Errorf("PostgresDSN = %q", cfg.PostgresDSN)
	}
}

func TestConfig_AuthURL(t *testing.T) {
	cfg := &Config{BackendOrigin: "https://erp.example.com/"}
	if got := cfg.AuthURL(); got != "https://erp.example.com/auth/login" {
		t.Errorf("AuthURL() = %q", got)
	}

	cfg.AuthEndpoint = "https://sso.example.com/token"
	if got := cfg.AuthURL(); got != "https://sso.example.com/token" {
		t.Errorf("AuthURL() with explicit endpoint = %q", got)
	}
}
