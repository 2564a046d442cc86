// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package auth

import (
	"testing"

	"github.com/caterverse/caterlink/internal/session"
)

func TestStorageCredentials_BearerReadsFresh(t *testing.T) {
	durable := session.NewMemStore()
	vault := session.NewAdapter(durable, session.NewMemStore())
	creds := NewStorageCredentials(vault)

	token, tenant := creds.Bearer()
	if token != "" || tenant != "" {
		t.Errorf("Bearer() with no session = (%q, %q), want empty", token, tenant)
	}

	writeRecord(vault, Record{
		User:            &User{TenantID: "tenant-9", Email: "x@example.com"},
		Token:           "tok-abc",
		IsAuthenticated: true,
	})

	// No new StorageCredentials: the existing one must observe the write.
	token, tenant = creds.Bearer()
	if token != "tok-abc" {
		t.Errorf("Bearer() token = %q, want %q", token, "tok-abc")
	}
	if tenant != "tenant-9" {
		t.Errorf("Bearer() tenant = %q, want %q", tenant, "tenant-9")
	}

	ClearRecord(vault)
	token, tenant = creds.Bearer()
	if token != "" || tenant != "" {
		t.Errorf("Bearer() after clear = (%q, %q), want empty", token, tenant)
	}
}

func TestStorageCredentials_BearerWithoutUser(t *testing.T) {
	vault := session.NewAdapter(session.NewMemStore(), session.NewMemStore())
	writeRecord(vault, Record{Token: "tok-only"})

	creds := NewStorageCredentials(vault)
	token, tenant := creds.Bearer()
	if token != "tok-only" {
		t.Errorf("Bearer() token = %q, want %q", token, "tok-only")
	}
	if tenant != "" {
		t.Errorf("Bearer() tenant = %q, want empty", tenant)
	}
}

func TestStorageCredentials_Invalidate(t *testing.T) {
	durable := session.NewMemStore()
	ephemeral := session.NewMemStore()
	vault := session.NewAdapter(durable, ephemeral)

	// Seed both stores so invalidation must clear both.
	_ = durable.Set(SessionKey, `{"state":{"token":"a"}}`)
	_ = ephemeral.Set(SessionKey, `{"state":{"token":"b"}}`)

	NewStorageCredentials(vault).Invalidate()

	if v, _ := durable.Get(SessionKey); v != "" {
		t.Errorf("durable store should be empty after Invalidate, got %q", v)
	}
	if v, _ := ephemeral.Get(SessionKey); v != "" {
		t.Errorf("ephemeral store should be empty after Invalidate, got %q", v)
	}
}

func TestReadRecord_MissAndCorrupt(t *testing.T) {
	vault := session.NewAdapter(session.NewMemStore(), session.NewMemStore())

	if rec, ok := ReadRecord(vault); ok || rec != nil {
		t.Error("ReadRecord() on empty vault should report not found")
	}

	vault.Set(SessionKey, "{broken")
	if rec, ok := ReadRecord(vault); ok || rec != nil {
		t.Error("ReadRecord() on corrupt record should report not found")
	}
}
