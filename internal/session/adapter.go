// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package session

import (
	log "github.com/sirupsen/logrus"
)

// RememberKey holds the literal string "true" in the durable store when the
// user asked for a durable session. It lives outside the session record so it
// can be read before the record itself is fetched.
const RememberKey = "caterlink-remember"

// Adapter presents one logical key-value vault backed by a durable and an
// ephemeral store. The remember-me preference flag selects which store is
// authoritative for writes; reads fall back to the other store so a
// preference change cannot strand an existing session.
//
// Adapter methods never propagate backend errors: a failing or absent backend
// degrades to "no session", which the caller treats as signed out. There is
// no cross-process synchronization between the two physical stores;
// last-write-wins is accepted.
type Adapter struct {
	durable   Store
	ephemeral Store
}

// NewAdapter builds an adapter over the two physical stores. Either store may
// be nil, in which case operations against it are no-ops.
func NewAdapter(durable, ephemeral Store) *Adapter {
	return &Adapter{durable: durable, ephemeral: ephemeral}
}

// Remember reports the persisted durability preference. The flag always lives
// in the durable store; when that store is unavailable the preference reads
// false.
func (a *Adapter) Remember() bool {
	v, ok := lookup(a.durable, RememberKey)
	return ok && v == "true"
}

// SetRemember persists the durability preference. Setting it false removes
// the flag rather than storing "false", matching absence-means-default.
func (a *Adapter) SetRemember(remember bool) {
	if a.durable == nil {
		return
	}
	var err error
	if remember {
		err = a.durable.Set(RememberKey, "true")
	} else {
		err = a.durable.Remove(RememberKey)
	}
	if err != nil {
		log.Warnf("session: failed to persist remember flag: %v", err)
	}
}

// ActiveStore returns the store the preference flag currently selects for
// writes.
func (a *Adapter) ActiveStore() Store {
	if a.Remember() {
		return a.durable
	}
	return a.ephemeral
}

// InactiveStore returns the store the preference flag currently deselects.
func (a *Adapter) InactiveStore() Store {
	if a.Remember() {
		return a.ephemeral
	}
	return a.durable
}

// Get reads key as a two-tier lookup: the active store first, then the
// inactive store as a fallback. A fallback hit is returned without promoting
// the value into the active store, so the stores never diverge further than
// the caller left them. Returns "" when neither store has the key.
func (a *Adapter) Get(key string) string {
	if v, ok := lookup(a.ActiveStore(), key); ok {
		return v
	}
	if v, ok := lookup(a.InactiveStore(), key); ok {
		return v
	}
	return ""
}

// Set writes key into the active store and deletes it from the inactive one,
// so a stale duplicate cannot resurrect after a preference change. A crash
// between the two sub-operations can leave both stores populated; Get's
// fallback tolerates that state and Remove clears both on the next logout.
func (a *Adapter) Set(key, value string) {
	if active := a.ActiveStore(); active != nil {
		if err := active.Set(key, value); err != nil {
			log.Warnf("session: failed to write %s to %s store: %v", key, active.Name(), err)
		}
	}
	if inactive := a.InactiveStore(); inactive != nil {
		if err := inactive.Remove(key); err != nil {
			log.Warnf("session: failed to clear %s from %s store: %v", key, inactive.Name(), err)
		}
	}
}

// Remove deletes key from both stores unconditionally. Logout must be
// unambiguous regardless of which store was active.
func (a *Adapter) Remove(key string) {
	for _, s := range []Store{a.durable, a.ephemeral} {
		if s == nil {
			continue
		}
		if err := s.Remove(key); err != nil {
			log.Warnf("session: failed to remove %s from %s store: %v", key, s.Name(), err)
		}
	}
}

// lookup reads key from a single store, swallowing backend errors. The bool
// reports whether a non-empty value was found.
func lookup(s Store, key string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, err := s.Get(key)
	if err != nil {
		log.Debugf("session: read of %s from %s store failed: %v", key, s.Name(), err)
		return "", false
	}
	if v == "" {
		return "", false
	}
	return v, true
}
