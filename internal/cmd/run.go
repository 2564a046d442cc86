// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cmd provides command-line operations for the caterlink gateway:
// service startup, interactive sign-in and sign-out against the Caterverse
// backend, and the wiring between them.
package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/caterverse/caterlink/internal/auth"
	"github.com/caterverse/caterlink/internal/config"
	"github.com/caterverse/caterlink/internal/gateway"
	"github.com/caterverse/caterlink/internal/util"
	"github.com/caterverse/caterlink/internal/watcher"
)

// StartService builds and runs the gateway. It installs signal handling for
// graceful shutdown and a config watcher so backend origin changes in the
// config file take effect without a restart.
func StartService(cfg *config.Config, configPath string, sessions *auth.Store, sd *util.StateDir) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := gateway.New(cfg, sessions, sd)

	if configPath != "" {
		w, err := watcher.New(configPath, func(next *config.Config) {
			if next.BackendOrigin != "" && next.BackendOrigin != server.Proxy().Origin() {
				log.Infof("backend origin changed to %s", next.BackendOrigin)
				server.Proxy().SetOrigin(next.BackendOrigin)
			}
		})
		if err != nil {
			log.Warnf("config hot reload disabled: %v", err)
		} else {
			w.Start(ctx)
		}
	}

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("gateway exited with error: %v", err)
	}
}
