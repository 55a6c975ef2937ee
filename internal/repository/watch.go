package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long WatchFile waits for writes to settle.
const DefaultDebounce = 150 * time.Millisecond

// WatchFile refreshes every live subscription when the database at dbPath, or
// its WAL, is written by another process. It blocks until ctx is cancelled.
func (st *Store) WatchFile(ctx context.Context, dbPath string, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", dbPath, err)
	}
	// Watch the directory: SQLite replaces the WAL file during checkpoints.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	watched := map[string]bool{abs: true, abs + "-wal": true}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timer.Reset(debounce)
			}

		case <-timer.C:
			st.RefreshAll()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching database: %w", err)
		}
	}
}
