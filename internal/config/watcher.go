package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 150 * time.Millisecond

// Watch reloads the config file whenever it changes on disk and hands the
// new value to onChange. The parent directory is watched rather than the file
// itself so that editors which replace the file atomically are still seen.
// Parse errors are logged and the previous config stays in effect.
// Watch returns once the watcher is established; it stops when ctx is done.
func Watch(ctx context.Context, path string, onChange func(Config)) error {
	if path == "" {
		path = ConfigPath()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	target := filepath.Clean(path)

	go func() {
		defer watcher.Close()

		var (
			mu       sync.Mutex
			debounce *time.Timer
		)
		reload := func() {
			cfg, err := LoadFrom(target)
			if err != nil {
				log.Printf("[config] reload failed: %v", err)
				return
			}
			onChange(cfg)
		}

		for {
			select {
			case <-ctx.Done():
				mu.Lock()
				if debounce != nil {
					debounce.Stop()
				}
				mu.Unlock()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				mu.Lock()
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(watchDebounce, reload)
				mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[config] watcher error: %v", err)
			}
		}
	}()

	return nil
}
