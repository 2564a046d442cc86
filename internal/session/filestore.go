// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caterverse/caterlink/internal/util"
)

// FileStore is the default durable session backend. Each key maps to one
// JSON file under the state directory's sessions subdirectory, written
// atomically with 0600 permissions so a crash mid-write cannot corrupt a
// persisted session.
type FileStore struct {
	dir string
	sd  *util.StateDir
}

// NewFileStore creates a file-backed store rooted at the given StateDir.
func NewFileStore(sd *util.StateDir) *FileStore {
	return &FileStore{dir: sd.SessionsDir(), sd: sd}
}

// Name implements Store.
func (s *FileStore) Name() string { return "file" }

// keyPath maps a key to a file path. The key is sanitized to prevent path
// traversal.
func (s *FileStore) keyPath(key string) string {
	sanitized := filepath.Base(key)
	if sanitized == "." || sanitized == ".." || sanitized == string(filepath.Separator) {
		sanitized = "unknown"
	}
	if !strings.HasSuffix(sanitized, ".json") {
		sanitized += ".json"
	}
	return filepath.Join(s.dir, sanitized)
}

// Get implements Store.
func (s *FileStore) Get(key string) (string, error) {
	data, err := os.ReadFile(s.keyPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read session file for %s: %w", key, err)
	}
	return string(data), nil
}

// Set implements Store.
func (s *FileStore) Set(key, value string) error {
	if err := s.sd.EnsureDir(s.dir); err != nil {
		return err
	}
	return util.SecureWrite(s.sd, s.keyPath(key), []byte(value), 0600)
}

// Remove implements Store.
func (s *FileStore) Remove(key string) error {
	if err := os.Remove(s.keyPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file for %s: %w", key, err)
	}
	return nil
}
