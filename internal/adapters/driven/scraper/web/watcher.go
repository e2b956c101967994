package web

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/verdict-cli/internal/logger"
)

// watchSelectors reloads the selectors file whenever it is written or
// replaced, until ctx is cancelled. A file that fails to parse leaves the
// previous selectors active. The parent directory is watched so editors
// that save by rename are seen.
func watchSelectors(ctx context.Context, path string, set *selectorSet, reloaded func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating selectors watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watching selectors file: %w", err)
	}

	target := filepath.Clean(path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				sel, err := LoadSelectors(path)
				if err != nil {
					logger.Warn("Ignoring invalid selectors file %s: %v", path, err)
					continue
				}
				set.set(sel)
				logger.Info("Reloaded selectors from %s", path)
				if reloaded != nil {
					reloaded()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Selectors watcher error: %v", err)
			}
		}
	}()
	return nil
}
