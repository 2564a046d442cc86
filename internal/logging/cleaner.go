// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logging

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
)

var cleanerStop chan struct{}

// configureLogDirCleanerLocked starts (or stops) the background log cleaner.
// The caller must hold writerMu. protectedPath is never deleted, since it is
// the file currently being written.
func configureLogDirCleanerLocked(logDir string, maxTotalSizeMB int, protectedPath string) {
	stopLogDirCleanerLocked()
	if maxTotalSizeMB <= 0 {
		return
	}

	stop := make(chan struct{})
	cleanerStop = stop
	limit := int64(maxTotalSizeMB) * 1024 * 1024

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		cleanLogDir(logDir, limit, protectedPath)
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				cleanLogDir(logDir, limit, protectedPath)
			}
		}
	}()
}

func stopLogDirCleanerLocked() {
	if cleanerStop != nil {
		close(cleanerStop)
		cleanerStop = nil
	}
}

// cleanLogDir deletes the oldest files in logDir until the total size is
// within limit.
func cleanLogDir(logDir string, limit int64, protectedPath string) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	type logFile struct {
		path    string
		size    int64
		modTime time.Time
	}
	var files []logFile
	var total int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(logDir, entry.Name())
		files = append(files, logFile{path: path, size: info.Size(), modTime: info.ModTime()})
		total += info.Size()
	}
	if total <= limit {
		return
	}

	sort.Slice(files, func(i, j int) bool { return files[i].modTime.Before(files[j].modTime) })
	for _, f := range files {
		if total <= limit {
			break
		}
		if f.path == protectedPath {
			continue
		}
		if err := os.Remove(f.path); err != nil {
			log.Debugf("logging: failed to remove old log file %s: %v", f.path, err)
			continue
		}
		total -= f.size
	}
}
