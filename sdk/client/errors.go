// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package client

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// APIError carries the backend status code and error detail for a failed
// call. Callers can branch on StatusCode for local handling; session
// invalidation (401) is already handled centrally before this error is
// returned.
type APIError struct {
	StatusCode int
	Detail     string
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
}

// parseErrorDetail extracts a human-readable message from a backend error
// body. The backend reports errors as {"detail": ...}; older endpoints use
// "message" or "error". Falls back to the raw body.
func parseErrorDetail(body []byte) string {
	for _, field := range []string{"detail", "message", "error"} {
		if v := gjson.GetBytes(body, field); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		detail = "request failed"
	}
	return detail
}
