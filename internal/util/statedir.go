// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// StateDir manages the canonical state directory for caterlink. It provides
// centralized path resolution for all mutable application data: persisted
// sessions, the session preference flag, and rotating log files.
type StateDir struct {
	rootPath string
	readOnly bool
	mu       sync.RWMutex
}

// NewStateDir creates a StateDir rooted at the given path. When path is empty
// it reads CATERLINK_STATE_DIR from the environment and falls back to
// ~/.caterlink. CATERLINK_READONLY=1 switches the StateDir to read-only mode.
func NewStateDir(path string) (*StateDir, error) {
	if path == "" {
		path = os.Getenv("CATERLINK_STATE_DIR")
	}
	if path == "" {
		path = "~/.caterlink"
	}

	resolved, err := ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve state directory: %w", err)
	}

	readOnly := os.Getenv("CATERLINK_READONLY") == "1"

	return &StateDir{
		rootPath: resolved,
		readOnly: readOnly,
	}, nil
}

// RootPath returns the resolved state directory root.
func (sd *StateDir) RootPath() string {
	sd.mu.RLock()
	defer sd.mu.RUnlock()
	return sd.rootPath
}

// IsReadOnly returns whether the state directory is in read-only mode.
func (sd *StateDir) IsReadOnly() bool {
	sd.mu.RLock()
	defer sd.mu.RUnlock()
	return sd.readOnly
}

// SessionsDir returns the path to the sessions subdirectory.
func (sd *StateDir) SessionsDir() string {
	return filepath.Join(sd.RootPath(), "sessions")
}

// LogsDir returns the path to the logs subdirectory.
func (sd *StateDir) LogsDir() string {
	return filepath.Join(sd.RootPath(), "logs")
}

// ResolvePath joins a relative path with the state directory root. Absolute
// and tilde-prefixed paths are returned as-is after cleaning.
func (sd *StateDir) ResolvePath(relativePath string) string {
	if relativePath == "" {
		return sd.RootPath()
	}
	if strings.HasPrefix(relativePath, "~") || filepath.IsAbs(relativePath) {
		cleaned, err := ExpandPath(relativePath)
		if err != nil {
			return filepath.Clean(relativePath)
		}
		return cleaned
	}
	return filepath.Join(sd.RootPath(), relativePath)
}

// EnsureDir creates a directory with 0700 permissions if it doesn't exist,
// including any parents.
func (sd *StateDir) EnsureDir(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("path exists but is not a directory: %s", path)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat directory %s: %w", path, err)
	}
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
