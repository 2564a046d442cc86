// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package session

import "sync"

// MemStore is the ephemeral session backend. Its contents live only as long
// as the process, which is the gateway's equivalent of a session-scoped store.
type MemStore struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string]string)}
}

// Name implements Store.
func (s *MemStore) Name() string { return "memory" }

// Get implements Store.
func (s *MemStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m[key], nil
}

// Set implements Store.
func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	s.m[key] = value
	s.mu.Unlock()
	return nil
}

// Remove implements Store.
func (s *MemStore) Remove(key string) error {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
	return nil
}

// Clear drops every key. Used by tests to simulate the end of a session.
func (s *MemStore) Clear() {
	s.mu.Lock()
	s.m = make(map[string]string)
	s.mu.Unlock()
}
