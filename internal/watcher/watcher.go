// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package watcher reloads the configuration file when it changes on disk,
// so backend origin changes take effect without a restart.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/caterverse/caterlink/internal/config"
)

const debounceDelay = 200 * time.Millisecond

// Watcher watches one config file and invokes the reload callback with the
// freshly parsed configuration after each change.
type Watcher struct {
	configPath string
	reload     func(*config.Config)
	fsWatcher  *fsnotify.Watcher
}

// New builds a watcher for configPath. Editors replace files rather than
// write them in place, so the watch is on the parent directory and events
// are filtered by name.
func New(configPath string, reload func(*config.Config)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: failed to create fs watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(configPath)); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("watcher: failed to watch config directory: %w", err)
	}
	return &Watcher{
		configPath: configPath,
		reload:     reload,
		fsWatcher:  fsWatcher,
	}, nil
}

// Start consumes events until ctx is cancelled. Rapid successive events are
// debounced into one reload.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		var timer *time.Timer
		defer w.fsWatcher.Close()
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-w.fsWatcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(w.configPath) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounceDelay, w.doReload)
			case err, ok := <-w.fsWatcher.Errors:
				if !ok {
					return
				}
				log.Warnf("watcher: fs watcher error: %v", err)
			}
		}
	}()
}

func (w *Watcher) doReload() {
	cfg, err := config.LoadConfigOptional(w.configPath, true)
	if err != nil {
		log.Errorf("watcher: failed to reload config: %v", err)
		return
	}
	log.Infof("watcher: configuration reloaded from %s", w.configPath)
	w.reload(cfg)
}
