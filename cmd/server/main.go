// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package main provides the entry point for the caterlink gateway. The
// gateway fronts the Caterverse ERP backend for on-premise deployments:
// it forwards /api/v1 traffic, keeps the operator's session in a local
// vault, and exposes health and management endpoints.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/caterverse/caterlink/internal/auth"
	"github.com/caterverse/caterlink/internal/buildinfo"
	"github.com/caterverse/caterlink/internal/cmd"
	"github.com/caterverse/caterlink/internal/config"
	"github.com/caterverse/caterlink/internal/logging"
	"github.com/caterverse/caterlink/internal/util"
)

var (
	Version           = "dev"
	Commit            = "none"
	BuildDate         = "unknown"
	DefaultConfigPath = ""
)

// init initializes the shared logger setup.
func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

// main parses command-line flags, loads configuration, and dispatches to
// sign-in, sign-out, or server mode.
func main() {
	fmt.Printf("caterlink Version: %s, Commit: %s, BuiltAt: %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)

	var login bool
	var logout bool
	var remember bool
	var email string
	var configPath string

	flag.BoolVar(&login, "login", false, "Sign in to the Caterverse backend")
	flag.BoolVar(&logout, "logout", false, "Sign out and clear the stored session")
	flag.BoolVar(&remember, "remember", false, "Persist the session across restarts (with -login)")
	flag.StringVar(&email, "email", "", "Account email (with -login, prompted when empty)")
	flag.StringVar(&configPath, "config", DefaultConfigPath, "Configure File Path")
	flag.Parse()

	wd, err := os.Getwd()
	if err != nil {
		log.Errorf("failed to get working directory: %v", err)
		return
	}

	// Load environment variables from .env if present.
	if errLoad := godotenv.Load(filepath.Join(wd, ".env")); errLoad != nil {
		if !errors.Is(errLoad, os.ErrNotExist) {
			log.WithError(errLoad).Warn("failed to load .env file")
		}
	}

	configFilePath := configPath
	if configFilePath == "" {
		configFilePath = filepath.Join(wd, "config.yaml")
	}
	cfg, err := config.LoadConfigOptional(configFilePath, true)
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		return
	}

	sd, err := util.NewStateDir(cfg.StateDir)
	if err != nil {
		log.Errorf("failed to prepare state directory: %v", err)
		return
	}

	if err = logging.ConfigureLogOutput(sd.LogsDir(), cfg.LoggingToFile, cfg.LogsMaxTotalSizeMB); err != nil {
		log.Errorf("failed to configure log output: %v", err)
		return
	}
	logging.SetLevel(cfg.Debug)

	log.Infof("caterlink Version: %s, Commit: %s, BuiltAt: %s", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)

	vault, cleanup, err := cmd.BuildVault(cfg, sd)
	if err != nil {
		log.Errorf("failed to build session vault: %v", err)
		return
	}
	defer cleanup()

	sessions := auth.NewStore(vault, cfg.AuthURL(), nil)
	sessions.Hydrate()

	switch {
	case login:
		cmd.DoLogin(sessions, &cmd.LoginOptions{Email: email, Remember: remember})
	case logout:
		cmd.DoLogout(sessions)
	default:
		if cfg.BackendOrigin == "" {
			log.Error("no backend origin configured; set backend-origin in the config file or the BACKEND_ORIGIN environment variable")
			return
		}
		cmd.StartService(cfg, configFilePath, sessions, sd)
	}
}
