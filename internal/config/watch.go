// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/genstudio-tui/internal/debounce"
)

// reloadDelay coalesces the several events editors emit for one save.
const reloadDelay = 100 * time.Millisecond

// Watch reloads path whenever it changes and passes the result to onChange.
// A reload that fails to parse or validate is reported as an error and the
// caller keeps its current config. Watching stops when ctx is cancelled.
//
// The parent directory is watched rather than the file, so saves that
// replace the file through a rename are still seen.
func Watch(ctx context.Context, path string, onChange func(*Config, error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	reload := debounce.New(reloadDelay, func(struct{}) {
		if ctx.Err() != nil {
			return
		}
		onChange(LoadFromPath(abs))
	})

	go func() {
		defer watcher.Close()
		defer reload.Cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					reload.Trigger(struct{}{})
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				onChange(nil, fmt.Errorf("config watcher: %w", err))
			}
		}
	}()
	return nil
}
