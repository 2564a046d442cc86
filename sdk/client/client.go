// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package client is the Go SDK for the Caterverse ERP REST API. It decorates
// every outgoing call with the session's bearer token and tenant id and
// centrally handles session-invalidating responses.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultTimeout bounds every API call. A timed-out call fails like any
// other network failure; there is no retry at this layer.
const DefaultTimeout = 30 * time.Second

// SessionSource supplies auth context for outgoing requests and tears the
// session down when the backend rejects it. Implementations must read
// persisted state fresh on every call, never a cached copy.
type SessionSource interface {
	// Bearer returns the current token and tenant id; either may be empty.
	Bearer() (token, tenantID string)
	// Invalidate removes the persisted session from every backend.
	Invalidate()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSessionExpiredHandler installs the callback invoked after a 401
// response has torn the session down. This is where an application forces
// its user back to the sign-in surface.
func WithSessionExpiredHandler(fn func()) Option {
	return func(c *Client) { c.onSessionExpired = fn }
}

// Client wraps an HTTP client with auth-context injection and central 401
// handling for the backend's /api/v1 surface.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	sessions         SessionSource
	onSessionExpired func()
}

// New builds a client rooted at baseURL (scheme and host, no trailing
// slash required).
func New(baseURL string, sessions SessionSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		sessions:   sessions,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET and decodes the JSON response into out when non-nil.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.call(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.call(ctx, http.MethodPost, path, in, out)
}

// Put issues a PUT with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.call(ctx, http.MethodPut, path, in, out)
}

// Patch issues a PATCH with a JSON body and decodes the response into out.
func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.call(ctx, http.MethodPatch, path, in, out)
}

// Delete issues a DELETE and decodes the JSON response into out when non-nil.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.call(ctx, http.MethodDelete, path, nil, out)
}

// Download issues a GET and returns the raw response bytes, for file exports
// (PDF quotes, spreadsheet reports) that must not pass through JSON decoding.
func (c *Client) Download(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}
	respBody, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response body: %w", err)
		}
	}
	return nil
}

// do dispatches one request with fresh auth context and unwraps the body on
// success. On 401 it clears the persisted session from both backends and
// invokes the session-expired handler before returning.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Read auth context fresh per request so a logout or login elsewhere
	// is reflected on the next call.
	token, tenantID := c.sessions.Bearer()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if tenantID != "" {
		req.Header.Set("X-Tenant-ID", tenantID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		log.Warn("client: session rejected by backend, clearing persisted session")
		c.sessions.Invalidate()
		if c.onSessionExpired != nil {
			c.onSessionExpired()
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: "session expired"}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: parseErrorDetail(respBody)}
	}

	return respBody, nil
}
