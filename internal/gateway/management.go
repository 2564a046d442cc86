// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// managementGuard protects management endpoints with the bcrypt-hashed key
// from config. An unset key disables the management surface entirely.
func (s *Server) managementGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		hash := s.cfg.ManagementKey
		if hash == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "management key not configured"})
			return
		}
		key := c.GetHeader("X-Management-Key")
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
			log.WithField("request_id", RequestID(c)).Warn("gateway: management request rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid management key"})
			return
		}
		c.Next()
	}
}

// statusHandler reports the gateway's session and configuration state for
// operators. Token material is never included.
func (s *Server) statusHandler(c *gin.Context) {
	var tenantID string
	if u := s.sessions.User(); u != nil {
		tenantID = u.TenantID
	}
	c.JSON(http.StatusOK, gin.H{
		"state_dir":      s.stateDir.RootPath(),
		"read_only":      s.stateDir.IsReadOnly(),
		"backend_origin": s.proxy.Origin(),
		"hydrated":       s.sessions.IsHydrated(),
		"authenticated":  s.sessions.IsAuthenticated(),
		"remember_me":    s.sessions.RememberMe(),
		"tenant_id":      tenantID,
	})
}
