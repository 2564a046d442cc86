// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package session

import (
	"path/filepath"
	"testing"
)

func TestSQLiteStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	s, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore() failed: %v", err)
	}
	defer s.Close()

	if err := s.Set("caterlink-session", "record-1"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	v, err := s.Get("caterlink-session")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if v != "record-1" {
		t.Errorf("Get() = %q, want %q", v, "record-1")
	}

	// Upsert overwrites in place.
	if err := s.Set("caterlink-session", "record-2"); err != nil {
		t.Fatalf("Set() overwrite failed: %v", err)
	}
	if v, _ = s.Get("caterlink-session"); v != "record-2" {
		t.Errorf("Get() after overwrite = %q, want %q", v, "record-2")
	}
}

func TestSQLiteStore_MissReadsEmpty(t *testing.T) {
	s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteStore() failed: %v", err)
	}
	defer s.Close()

	v, err := s.Get("nonexistent")
	if err != nil {
		t.Fatalf("Get() on missing key should not error, got %v", err)
	}
	if v != "" {
		t.Errorf("Get() on missing key = %q, want empty", v)
	}
}

func TestSQLiteStore_RemoveIsIdempotent(t *testing.T) {
	s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteStore() failed: %v", err)
	}
	defer s.Close()

	if err := s.Set("caterlink-remember", "true"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := s.Remove("caterlink-remember"); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if err := s.Remove("caterlink-remember"); err != nil {
		t.Errorf("Remove() on missing key should not error, got %v", err)
	}
	if v, _ := s.Get("caterlink-remember"); v != "" {
		t.Errorf("key should be gone after Remove, got %q", v)
	}
}

func TestSQLiteStore_ReopenSeesData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	s, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore() failed: %v", err)
	}
	if err := s.Set("caterlink-session", "persisted"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	reopened, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	if v, _ := reopened.Get("caterlink-session"); v != "persisted" {
		t.Errorf("Get() after reopen = %q, want %q", v, "persisted")
	}
}
