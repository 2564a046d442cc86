// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package session provides persistence of the signed-in session across
// restarts. One logical key-value vault is backed by two physical stores, a
// durable one and an ephemeral one, selected by the remember-me preference
// flag. The flag itself always lives in the durable store so it can be read
// before the session record is fetched.
package session

// Store is one physical key-value backend for session state.
//
// Get returns ("", nil) when the key is absent; an error is reserved for real
// backend failures. Set replaces any existing value. Remove is a no-op when
// the key is absent.
type Store interface {
	// Name identifies the backend in logs and status output.
	Name() string
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}
