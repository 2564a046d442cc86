// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/caterverse/caterlink/internal/session"
)

const loginTimeout = 30 * time.Second

// Store is the single source of truth for "who is signed in". It is an
// explicit dependency-injected container with lifecycle
// create -> Hydrate -> use -> Logout; nothing in this package holds global
// state.
//
// Hydration is tracked separately from authentication so callers can
// distinguish "not yet checked" from "checked and anonymous": until Hydrate
// has run, IsHydrated reports false and any sign-out decision should be
// deferred.
type Store struct {
	vault      *session.Adapter
	authURL    string
	httpClient *http.Client

	mu              sync.Mutex
	user            *User
	token           string
	isAuthenticated bool
	isLoading       bool
	rememberMe      bool
	isHydrated      bool
	errMsg          string
}

// NewStore builds a session state store. authURL is the credential-exchange
// endpoint; httpClient may be nil, in which case a client with a 30 second
// timeout is used.
func NewStore(vault *session.Adapter, authURL string, httpClient *http.Client) *Store {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: loginTimeout}
	}
	return &Store{
		vault:      vault,
		authURL:    authURL,
		httpClient: httpClient,
	}
}

// loginResponse is the auth endpoint's success payload.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user"`
}

// Login exchanges credentials for a session. On success the remember-me
// preference is persisted before the session record is written, so the vault
// already knows which backend the record belongs in. Login never returns an
// error; a failure leaves the store anonymous with a human-readable Err for
// the caller to surface.
func (s *Store) Login(ctx context.Context, email, password string, rememberMe bool) bool {
	s.mu.Lock()
	s.isLoading = true
	s.errMsg = ""
	s.mu.Unlock()

	resp, errMsg := s.exchangeCredentials(ctx, email, password)
	if errMsg != "" {
		s.mu.Lock()
		s.isLoading = false
		s.isAuthenticated = false
		s.errMsg = errMsg
		s.mu.Unlock()
		return false
	}

	// Order matters: the preference flag must land before the record write
	// so the adapter routes the record to the right backend.
	s.vault.SetRemember(rememberMe)
	rec := Record{
		User:            resp.User,
		Token:           resp.AccessToken,
		IsAuthenticated: true,
		RememberMe:      rememberMe,
	}
	writeRecord(s.vault, rec)

	s.mu.Lock()
	s.user = resp.User
	s.token = resp.AccessToken
	s.isAuthenticated = true
	s.isLoading = false
	s.rememberMe = rememberMe
	s.mu.Unlock()

	log.Infof("auth: signed in as %s", email)
	return true
}

// exchangeCredentials performs the form-encoded credential exchange. It
// returns either the decoded response or a human-readable failure message.
func (s *Store) exchangeCredentials(ctx context.Context, email, password string) (*loginResponse, string) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Sprintf("login request could not be built: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "login failed: could not reach the authentication service"
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "login failed: could not read the authentication response"
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := gjson.GetBytes(body, "detail").String()
		if detail == "" {
			detail = "invalid email or password"
		}
		log.Debugf("auth: credential exchange rejected with status %d", resp.StatusCode)
		return nil, detail
	}

	var decoded loginResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, "login failed: unexpected authentication response"
	}
	if decoded.AccessToken == "" {
		return nil, "login failed: authentication response carried no token"
	}
	return &decoded, ""
}

// Logout clears the preference flag, removes the session record from both
// vault backends unconditionally, and resets every in-memory field.
func (s *Store) Logout() {
	s.vault.SetRemember(false)
	ClearRecord(s.vault)

	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.isAuthenticated = false
	s.isLoading = false
	s.rememberMe = false
	s.errMsg = ""
	s.mu.Unlock()

	log.Info("auth: signed out")
}

// CheckAuth normalizes the authenticated flag from in-memory state only. It
// never reads storage (that is Hydrate's job) so it is safe to call on every
// route change.
func (s *Store) CheckAuth() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isAuthenticated = s.token != "" && s.user != nil
	return s.isAuthenticated
}

// Hydrate copies the persisted session record, if any, into memory and
// re-reads the preference flag. IsHydrated flips to true whether or not a
// record was found; callers treat false as "unknown" and defer sign-out
// decisions until hydration completes.
func (s *Store) Hydrate() {
	rec, found := ReadRecord(s.vault)
	remember := s.vault.Remember()

	s.mu.Lock()
	if found {
		s.user = rec.User
		s.token = rec.Token
		s.isAuthenticated = rec.IsAuthenticated && rec.Token != "" && rec.User != nil
	}
	s.rememberMe = remember
	s.isHydrated = true
	s.mu.Unlock()

	if found {
		log.Debug("auth: session restored from vault")
	} else {
		log.Debug("auth: no persisted session found")
	}
}

// ClearError resets the login failure message, typically before a retry.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}

// User returns the signed-in identity, or nil.
func (s *Store) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Token returns the current bearer token, or "".
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// IsAuthenticated reports whether the store currently holds a session.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isAuthenticated
}

// IsLoading reports whether a credential exchange is in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

// RememberMe reports the cached durability preference.
func (s *Store) RememberMe() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rememberMe
}

// IsHydrated reports whether Hydrate has completed at least once.
func (s *Store) IsHydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isHydrated
}

// Err returns the last login failure message, or "".
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}
