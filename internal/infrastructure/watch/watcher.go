package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FeedWatcher watches a drop directory for status feed files using fsnotify.
// Whenever a feed file is created or written it fires the callback with the
// file path, debounced so a file still being copied in is only reported once.
type FeedWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	debounce time.Duration
	onFile   func(path string)
}

// NewFeedWatcher creates a watcher over the given drop directory.
func NewFeedWatcher(dir string, debounce time.Duration, onFile func(path string)) (*FeedWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if debounce == 0 {
		debounce = 500 * time.Millisecond
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &FeedWatcher{
		watcher:  w,
		dir:      dir,
		debounce: debounce,
		onFile:   onFile,
	}, nil
}

// Run starts the event loop. It blocks until the context is cancelled.
func (w *FeedWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	debouncer := NewDebouncer(w.debounce, func(path string) {
		if w.onFile != nil {
			w.onFile(path)
		}
	})
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !isFeedFile(event.Name) {
				continue
			}
			debouncer.Trigger(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// isFeedFile reports whether the path looks like a dropped feed page.
func isFeedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonl":
		return true
	default:
		return false
	}
}
