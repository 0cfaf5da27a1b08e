package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 250 * time.Millisecond

// watchFiles calls onChange after any of paths is written, created or
// renamed. The parent directories are watched so that files replaced by
// rename are still seen. Events closer together than debounce collapse
// into one call. The watcher stops when ctx is done.
func watchFiles(ctx context.Context, logger *slog.Logger, paths []string, debounce time.Duration, onChange func()) error {
	targets := make(map[string]bool, len(paths))
	dirs := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	go func() {
		defer func() { _ = w.Close() }()

		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !targets[filepath.Clean(event.Name)] {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				logger.Debug("watched file changed", "path", event.Name, "op", event.Op.String())
				if timer == nil {
					timer = time.AfterFunc(debounce, onChange)
				} else {
					timer.Reset(debounce)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("error watching files", "error", err)
			}
		}
	}()
	return nil
}
