// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config provides configuration management for the caterlink
// gateway. It handles loading and parsing the YAML configuration file and
// applies environment variable overrides for deployment settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	// Host is the network host/interface on which the gateway will bind.
	// Empty binds all interfaces; use "127.0.0.1" for local-only access.
	Host string `yaml:"host"`

	// Port is the network port on which the gateway will listen.
	Port int `yaml:"port"`

	// BackendOrigin is the ERP backend origin (scheme and host) that
	// /api/v1 requests are forwarded to. The BACKEND_ORIGIN environment
	// variable overrides it.
	BackendOrigin string `yaml:"backend-origin"`

	// AuthEndpoint is the credential-exchange URL. When empty it defaults
	// to BackendOrigin + "/auth/login".
	AuthEndpoint string `yaml:"auth-endpoint"`

	// StateDir is the directory where persisted sessions and logs live.
	// Defaults to ~/.caterlink; CATERLINK_STATE_DIR overrides it.
	StateDir string `yaml:"state-dir"`

	// SessionBackend selects the durable session store: "file" (default),
	// "sqlite", or "postgres". Setting CATERLINK_PG_DSN forces "postgres".
	SessionBackend string `yaml:"session-backend"`

	// SQLitePath is the SQLite database path for the sqlite backend.
	// Defaults to <state-dir>/sessions.db.
	SQLitePath string `yaml:"sqlite-path"`

	// PostgresDSN is the connection string for the postgres backend. The
	// CATERLINK_PG_DSN environment variable overrides it.
	PostgresDSN string `yaml:"postgres-dsn"`

	// PostgresTable is the session table name for the postgres backend.
	PostgresTable string `yaml:"postgres-table"`

	// ManagementKey is the bcrypt hash guarding the management endpoints.
	// Empty disables the management surface.
	ManagementKey string `yaml:"management-key"`

	// Debug enables debug-level logging and gin debug mode.
	Debug bool `yaml:"debug"`

	// LoggingToFile controls whether logs go to rotating files or stdout.
	LoggingToFile bool `yaml:"logging-to-file"`

	// LogsMaxTotalSizeMB limits the total size (in MB) of log files under
	// the logs directory. 0 disables the cleaner.
	LogsMaxTotalSizeMB int `yaml:"logs-max-total-size-mb"`

	// RequestTimeoutSeconds bounds each outgoing API call made by the SDK
	// client and the login exchange. Defaults to 30.
	RequestTimeoutSeconds int `yaml:"request-timeout-seconds"`
}

// AuthURL resolves the credential-exchange endpoint.
func (c *Config) AuthURL() string {
	if c.AuthEndpoint != "" {
		return c.AuthEndpoint
	}
	return strings.TrimSuffix(c.BackendOrigin, "/") + "/auth/login"
}

// ClientTimeout resolves the per-request timeout.
func (c *Config) ClientTimeout() time.Duration {
	if c.RequestTimeoutSeconds > 0 {
		return time.Duration(c.RequestTimeoutSeconds) * time.Second
	}
	return 30 * time.Second
}

// LoadConfig reads a YAML configuration file from the given path, unmarshals
// it into a Config, and applies environment variable overrides.
func LoadConfig(configFile string) (*Config, error) {
	return LoadConfigOptional(configFile, false)
}

// LoadConfigOptional reads YAML from configFile. If optional is true and the
// file is missing or empty, it returns a default Config instead of an error.
func LoadConfigOptional(configFile string, optional bool) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		if optional && (os.IsNotExist(err) || errors.Is(err, syscall.EISDIR)) {
			return withDefaults(&Config{}), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if optional && len(data) == 0 {
		return withDefaults(&Config{}), nil
	}

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		if optional {
			return withDefaults(&Config{}), nil
		}
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return withDefaults(&cfg), nil
}

func withDefaults(cfg *Config) *Config {
	if cfg.Port == 0 {
		cfg.Port = 8217
	}
	if cfg.SessionBackend == "" {
		cfg.SessionBackend = "file"
	}
	if cfg.PostgresTable == "" {
		cfg.PostgresTable = "caterlink_sessions"
	}
	applyEnvOverrides(cfg)
	return cfg
}

// applyEnvOverrides lets deployment environment variables win over file
// values. Both upper- and lower-case variants are honored.
func applyEnvOverrides(cfg *Config) {
	if v, ok := lookupEnv("BACKEND_ORIGIN", "backend_origin"); ok {
		cfg.BackendOrigin = v
	}
	if v, ok := lookupEnv("CATERLINK_STATE_DIR", "caterlink_state_dir"); ok {
		cfg.StateDir = v
	}
	if v, ok := lookupEnv("CATERLINK_PG_DSN", "caterlink_pg_dsn"); ok {
		cfg.PostgresDSN = v
		cfg.SessionBackend = "postgres"
	}
}

func lookupEnv(keys ...string) (string, bool) {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed, true
			}
		}
	}
	return "", false
}
