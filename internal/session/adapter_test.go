// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package session

import (
	"errors"
	"testing"
)

// brokenStore fails every operation, simulating a dead backend.
type brokenStore struct{}

func (brokenStore) Name() string               { return "broken" }
func (brokenStore) Get(string) (string, error) { return "", errors.New("backend down") }
func (brokenStore) Set(string, string) error   { return errors.New("backend down") }
func (brokenStore) Remove(string) error        { return errors.New("backend down") }

func TestAdapter_RememberFlagRouting(t *testing.T) {
	durable := NewMemStore()
	ephemeral := NewMemStore()
	a := NewAdapter(durable, ephemeral)

	if a.Remember() {
		t.Error("Remember() should default to false")
	}
	if a.ActiveStore() != Store(ephemeral) {
		t.Error("active store should be ephemeral before remember is set")
	}

	a.SetRemember(true)
	if !a.Remember() {
		t.Error("Remember() should report true after SetRemember(true)")
	}
	if a.ActiveStore() != Store(durable) {
		t.Error("active store should be durable after SetRemember(true)")
	}

	// The flag lives in the durable store as the literal "true".
	if v, err := durable.Get(RememberKey); err != nil || v != "true" {
		t.Errorf("durable store should hold %q=%q, got %q (err %v)", RememberKey, "true", v, err)
	}

	// Setting it false removes the flag rather than storing "false".
	a.SetRemember(false)
	if v, err := durable.Get(RememberKey); err != nil || v != "" {
		t.Errorf("remember flag should be absent after SetRemember(false), got %q (err %v)", v, err)
	}
}

func TestAdapter_SetWritesActiveAndClearsInactive(t *testing.T) {
	durable := NewMemStore()
	ephemeral := NewMemStore()
	a := NewAdapter(durable, ephemeral)

	a.SetRemember(true)
	a.Set("session", "durable-record")

	if v, _ := durable.Get("session"); v != "durable-record" {
		t.Errorf("durable store should hold the record, got %q", v)
	}
	if v, _ := ephemeral.Get("session"); v != "" {
		t.Errorf("ephemeral store should be empty, got %q", v)
	}

	// Flip the preference and write again: the record moves and the stale
	// copy is deleted.
	a.SetRemember(false)
	a.Set("session", "ephemeral-record")

	if v, _ := ephemeral.Get("session"); v != "ephemeral-record" {
		t.Errorf("ephemeral store should hold the record, got %q", v)
	}
	if v, _ := durable.Get("session"); v != "" {
		t.Errorf("durable store should have been cleared, got %q", v)
	}
}

func TestAdapter_GetFallsBackWithoutPromotion(t *testing.T) {
	durable := NewMemStore()
	ephemeral := NewMemStore()
	a := NewAdapter(durable, ephemeral)

	// Record written while remembered, then the flag flips without a new
	// write. The next read must still find the durable record.
	a.SetRemember(true)
	a.Set("session", "old-record")
	a.SetRemember(false)

	if got := a.Get("session"); got != "old-record" {
		t.Fatalf("Get should fall back to the inactive store, got %q", got)
	}

	// The fallback hit must not be copied into the now-active store.
	if v, _ := ephemeral.Get("session"); v != "" {
		t.Errorf("fallback read must not promote the value, ephemeral holds %q", v)
	}
	if v, _ := durable.Get("session"); v != "old-record" {
		t.Errorf("fallback read must leave the source untouched, durable holds %q", v)
	}
}

func TestAdapter_ActiveStoreWinsOverFallback(t *testing.T) {
	durable := NewMemStore()
	ephemeral := NewMemStore()
	a := NewAdapter(durable, ephemeral)

	_ = durable.Set("session", "stale")
	_ = ephemeral.Set("session", "fresh")

	// Remember is false, so the ephemeral store is active and wins.
	if got := a.Get("session"); got != "fresh" {
		t.Errorf("active store should win, got %q", got)
	}
}

func TestAdapter_RemoveClearsBothStores(t *testing.T) {
	durable := NewMemStore()
	ephemeral := NewMemStore()
	a := NewAdapter(durable, ephemeral)

	_ = durable.Set("session", "a")
	_ = ephemeral.Set("session", "b")

	a.Remove("session")

	if v, _ := durable.Get("session"); v != "" {
		t.Errorf("durable store should be empty after Remove, got %q", v)
	}
	if v, _ := ephemeral.Get("session"); v != "" {
		t.Errorf("ephemeral store should be empty after Remove, got %q", v)
	}
	if got := a.Get("session"); got != "" {
		t.Errorf("Get should miss on both stores after Remove, got %q", got)
	}
}

func TestAdapter_BrokenBackendDegradesToMiss(t *testing.T) {
	a := NewAdapter(brokenStore{}, NewMemStore())

	// Every operation must swallow the backend failure.
	a.SetRemember(true)
	if a.Remember() {
		t.Error("Remember() should read false when the durable store fails")
	}
	a.Set("session", "value")
	a.Remove("session")

	if got := a.Get("session"); got != "" {
		t.Errorf("Get should miss when backends fail, got %q", got)
	}
}

func TestAdapter_NilStores(t *testing.T) {
	a := NewAdapter(nil, nil)

	a.SetRemember(true)
	a.Set("session", "value")
	a.Remove("session")

	if a.Remember() {
		t.Error("Remember() should be false with no durable store")
	}
	if got := a.Get("session"); got != "" {
		t.Errorf("Get should return empty with no stores, got %q", got)
	}
}
