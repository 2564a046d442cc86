// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/caterverse/caterlink/internal/auth"
	"github.com/caterverse/caterlink/internal/buildinfo"
	"github.com/caterverse/caterlink/internal/config"
	"github.com/caterverse/caterlink/internal/util"
)

// Server hosts the gateway HTTP surface.
type Server struct {
	cfg      *config.Config
	proxy    *Proxy
	sessions *auth.Store
	stateDir *util.StateDir
	engine   *gin.Engine
}

// New wires the gin engine, the reverse proxy, and the management routes.
func New(cfg *config.Config, sessions *auth.Store, sd *util.StateDir) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      cfg,
		proxy:    NewProxy(cfg.BackendOrigin, nil),
		sessions: sessions,
		stateDir: sd,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestIDMiddleware())

	engine.GET("/health", s.healthHandler)
	engine.GET("/v0/management/status", s.managementGuard(), s.statusHandler)
	engine.Any("/api/v1/*path", s.proxy.Handler())

	s.engine = engine
	return s
}

// Proxy exposes the reverse proxy, primarily so config hot reload can swap
// the backend origin.
func (s *Server) Proxy() *Proxy {
	return s.proxy
}

// healthHandler reports liveness and build information.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"version":  buildinfo.Version,
		"commit":   buildinfo.Commit,
		"built_at": buildinfo.BuildDate,
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("gateway: listening on %s, backend origin %s", addr, s.proxy.Origin())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("gateway: shutdown failed: %w", err)
	}
	log.Info("gateway: shut down")
	return nil
}
