package messages

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 200 * time.Millisecond

// Watch reparses the file at path whenever it is written or replaced and
// passes the new document to onChange. Documents that fail to parse are
// logged and skipped. Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(*Document)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	// Editors often replace the file, so watch the directory.
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	var timer *time.Timer
	reload := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			data, err := os.ReadFile(abs)
			if err != nil {
				slog.Warn("messages: reload failed", "path", abs, "error", err)
				continue
			}
			doc, err := Parse(data)
			if err != nil {
				slog.Warn("messages: reloaded document is invalid, keeping previous", "path", abs, "error", err)
				continue
			}
			slog.Info("messages: reloaded", "path", abs)
			onChange(doc)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("messages: watcher error", "error", err)
		}
	}
}
