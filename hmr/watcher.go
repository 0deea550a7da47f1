// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hmr

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceDelay is the time to wait for further changes before reporting a
// change; editors tend to write files in several steps.
const DebounceDelay = 100 * time.Millisecond

// WatchOption configures a watcher when calling Watch.
type WatchOption func(*watchConfig)

type watchConfig struct {
	skip     map[string]struct{} // absolute directory paths not to watch.
	debounce time.Duration
	log      *slog.Logger
}

// WithSkipDir excludes the specified directory and everything below it from
// being watched. Directories with a leading dot as well as "node_modules" are
// always skipped.
func WithSkipDir(dir string) WatchOption {
	return func(c *watchConfig) {
		if abs, err := filepath.Abs(dir); err == nil {
			c.skip[abs] = struct{}{}
		}
	}
}

// WithDebounce sets the debounce delay, defaulting to DebounceDelay.
func WithDebounce(d time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.debounce = d
	}
}

// WithWatchLogger sets the logger for watcher diagnostics.
func WithWatchLogger(log *slog.Logger) WatchOption {
	return func(c *watchConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// Watch watches the directory tree at root for changes until ctx gets
// cancelled. After changes have settled, onChange gets called with the path
// of the last file changed. Directories created later are watched too.
func Watch(ctx context.Context, root string, onChange func(path string), opts ...WatchOption) error {
	cfg := watchConfig{
		skip:     map[string]struct{}{},
		debounce: DebounceDelay,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := cfg.addTree(watcher, root); err != nil {
		watcher.Close()
		return err
	}
	go cfg.run(ctx, watcher, onChange)
	cfg.log.Info("watching sources for changes", slog.String("root", root))
	return nil
}

// skipped returns true for directories not to be watched.
func (c *watchConfig) skipped(dir string) bool {
	name := filepath.Base(dir)
	if name == "node_modules" || (strings.HasPrefix(name, ".") && len(name) > 1) {
		return true
	}
	_, ok := c.skip[dir]
	return ok
}

// addTree adds the directory at root and all its subdirectories to the
// watcher, except for skipped ones.
func (c *watchConfig) addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && c.skipped(path) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// run is the watcher's main loop, coalescing bursts of events into a single
// onChange call.
func (c *watchConfig) run(ctx context.Context, watcher *fsnotify.Watcher, onChange func(path string)) {
	defer watcher.Close()

	var mu sync.Mutex
	var pending *time.Timer
	changed := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if pending != nil {
			pending.Stop()
		}
		pending = time.AfterFunc(c.debounce, func() {
			c.log.Debug("sources changed", slog.String("path", path))
			onChange(path)
		})
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if pending != nil {
				pending.Stop()
			}
			mu.Unlock()
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !c.skipped(event.Name) {
					if err := c.addTree(watcher, event.Name); err != nil {
						c.log.Warn("cannot watch new directory",
							slog.String("dir", event.Name), slog.String("err", err.Error()))
					}
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				changed(event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.log.Warn("source watcher error", slog.String("err", err.Error()))
		}
	}
}
