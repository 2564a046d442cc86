// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package gateway provides the caterlink HTTP surface: the /api/v1 reverse
// proxy to the ERP backend, health, and management endpoints.
package gateway

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const backendUnavailableDetail = "Backend service unavailable"

// hopRequestHeaders are stripped before forwarding; the outgoing request gets
// its own values for these.
var hopRequestHeaders = []string{"Host", "Connection", "Content-Length"}

// hopResponseHeaders are stripped from the backend response before copying
// headers back to the caller.
var hopResponseHeaders = []string{"Transfer-Encoding", "Content-Encoding", "Connection"}

// Proxy forwards /api/v1 requests to the configured backend origin. The
// backend expects some paths with a trailing slash and some without; the
// proxy masks that inconsistency by retrying a 404 exactly once with a
// trailing slash appended. It is a two-attempt state machine, never a retry
// loop, so sustained 404s cannot amplify traffic.
type Proxy struct {
	mu     sync.RWMutex
	origin string
	client *http.Client
}

// NewProxy builds a proxy for the given backend origin. httpClient may be
// nil, in which case a client without a global timeout is used (the caller's
// request context bounds each attempt).
func NewProxy(origin string, httpClient *http.Client) *Proxy {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Proxy{
		origin: strings.TrimSuffix(origin, "/"),
		client: httpClient,
	}
}

// Origin returns the current backend origin.
func (p *Proxy) Origin() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.origin
}

// SetOrigin swaps the backend origin; used by config hot reload.
func (p *Proxy) SetOrigin(origin string) {
	p.mu.Lock()
	p.origin = strings.TrimSuffix(origin, "/")
	p.mu.Unlock()
}

// Handler returns the gin handler forwarding every method and path it is
// mounted on.
func (p *Proxy) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Buffer the body once so a retry can replay it.
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"detail": backendUnavailableDetail})
			return
		}

		path := strings.TrimSuffix(c.Request.URL.Path, "/")
		query := c.Request.URL.RawQuery
		reqID := RequestID(c)

		resp, respBody, err := p.forward(c, c.Request.Method, path, query, c.Request.Header, body)
		if err != nil {
			log.WithField("request_id", reqID).Warnf("gateway: backend unreachable: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"detail": backendUnavailableDetail})
			return
		}

		// The backend routes some paths only with a trailing slash. Retry
		// exactly once; a 404 on both attempts is returned as-is.
		if resp.StatusCode == http.StatusNotFound {
			log.WithField("request_id", reqID).Debugf("gateway: %s %s returned 404, retrying with trailing slash", c.Request.Method, path)
			retryResp, retryBody, retryErr := p.forward(c, c.Request.Method, path+"/", query, c.Request.Header, body)
			if retryErr != nil {
				log.WithField("request_id", reqID).Warnf("gateway: backend unreachable on retry: %v", retryErr)
				c.JSON(http.StatusBadGateway, gin.H{"detail": backendUnavailableDetail})
				return
			}
			resp, respBody = retryResp, retryBody
		}

		writeBackendResponse(c, resp, respBody)
	}
}

// forward dispatches one attempt against origin+path?query and returns the
// response with its fully read body.
func (p *Proxy) forward(c *gin.Context, method, path, query string, header http.Header, body []byte) (*http.Response, []byte, error) {
	target := p.Origin() + path
	if query != "" {
		target += "?" + query
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), method, target, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header = cloneWithoutHeaders(header, hopRequestHeaders)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return resp, respBody, nil
}

// writeBackendResponse copies status, headers minus hop-by-hop ones, and the
// raw body bytes unmodified.
func writeBackendResponse(c *gin.Context, resp *http.Response, body []byte) {
	header := cloneWithoutHeaders(resp.Header, hopResponseHeaders)
	for k, vs := range header {
		for _, v := range vs {
			c.Writer.Header().Add(k, v)
		}
	}
	c.Status(resp.StatusCode)
	if len(body) > 0 {
		if _, err := c.Writer.Write(body); err != nil {
			log.Debugf("gateway: failed to write response body: %v", err)
		}
	}
}

func cloneWithoutHeaders(h http.Header, drop []string) http.Header {
	out := h.Clone()
	if out == nil {
		out = http.Header{}
	}
	for _, k := range drop {
		out.Del(k)
	}
	return out
}
