// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package auth owns the signed-in session: the credential exchange against
// the backend's auth endpoint, the in-memory session state machine, and the
// persisted session record in the vault.
package auth

import (
	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"

	"github.com/caterverse/caterlink/internal/session"
)

// SessionKey is the vault key holding the serialized session record.
const SessionKey = "caterlink-session"

// User is the identity object returned by the auth endpoint.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id"`
	IsActive bool   `json:"is_active"`
}

// Record is the persisted session blob. IsAuthenticated is derived from the
// other fields but persisted anyway so hydration is a plain copy.
type Record struct {
	User            *User  `json:"user"`
	Token           string `json:"token"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	RememberMe      bool   `json:"rememberMe"`
}

// envelope nests the record under "state" with a schema version, so the
// on-disk format can evolve without the vault caring.
type envelope struct {
	State   Record `json:"state"`
	Version int    `json:"version"`
}

// ReadRecord fetches and decodes the session record through the vault's
// two-tier lookup. A missing or unparseable record reads as (nil, false).
func ReadRecord(vault *session.Adapter) (*Record, bool) {
	raw := vault.Get(SessionKey)
	if raw == "" {
		return nil, false
	}
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		log.Warnf("auth: failed to decode persisted session: %v", err)
		return nil, false
	}
	return &env.State, true
}

// writeRecord serializes the record and stores it at the vault's active
// backend.
func writeRecord(vault *session.Adapter, rec Record) {
	data, err := json.Marshal(envelope{State: rec})
	if err != nil {
		log.Errorf("auth: failed to encode session record: %v", err)
		return
	}
	vault.Set(SessionKey, string(data))
}

// ClearRecord removes the session record from both vault backends.
func ClearRecord(vault *session.Adapter) {
	vault.Remove(SessionKey)
}

// StorageCredentials supplies bearer token and tenant id for outgoing API
// calls, read fresh from the vault on every request rather than from any
// in-memory state, so a logout or login elsewhere is reflected on the next
// call.
type StorageCredentials struct {
	vault *session.Adapter
}

// NewStorageCredentials builds a credential source over the vault.
func NewStorageCredentials(vault *session.Adapter) *StorageCredentials {
	return &StorageCredentials{vault: vault}
}

// Bearer returns the current token and tenant id, either of which may be
// empty. Absence is not an error at this layer.
func (c *StorageCredentials) Bearer() (token, tenantID string) {
	rec, ok := ReadRecord(c.vault)
	if !ok {
		return "", ""
	}
	token = rec.Token
	if rec.User != nil {
		tenantID = rec.User.TenantID
	}
	return token, tenantID
}

// Invalidate removes the persisted session from both vault backends. Called
// by the API client when the backend rejects the session.
func (c *StorageCredentials) Invalidate() {
	ClearRecord(c.vault)
}
