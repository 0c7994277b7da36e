package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFeedWatcher_DetectsDroppedFeed(t *testing.T) {
	dir := t.TempDir()

	var eventCount atomic.Int32
	var mu sync.Mutex
	var lastPath string

	w, err := NewFeedWatcher(dir, 50*time.Millisecond, func(path string) {
		eventCount.Add(1)
		mu.Lock()
		lastPath = path
		mu.Unlock()
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = w.Run(ctx)
	}()

	// Give watcher time to start
	time.Sleep(50 * time.Millisecond)

	feedFile := filepath.Join(dir, "page-1.json")
	if err := os.WriteFile(feedFile, []byte("[]"), 0600); err != nil {
		t.Fatal(err)
	}

	// Wait for debounce
	time.Sleep(200 * time.Millisecond)
	cancel()

	if eventCount.Load() == 0 {
		t.Error("expected at least one feed file event")
	}
	mu.Lock()
	defer mu.Unlock()
	if lastPath != feedFile {
		t.Errorf("expected %s, got %s", feedFile, lastPath)
	}
}

func TestFeedWatcher_IgnoresNonFeedFiles(t *testing.T) {
	dir := t.TempDir()

	var eventCount atomic.Int32

	w, err := NewFeedWatcher(dir, 50*time.Millisecond, func(path string) {
		eventCount.Add(1)
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = w.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a feed"), 0600); err != nil {
		t.Fatal(err)
	}

	time.Sleep(200 * time.Millisecond)
	cancel()

	if got := eventCount.Load(); got != 0 {
		t.Errorf("expected no events for non-feed file, got %d", got)
	}
}

func TestFeedWatcher_ContextCancellation(t *testing.T) {
	dir := t.TempDir()

	w, err := NewFeedWatcher(dir, 50*time.Millisecond, func(path string) {})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("watcher did not stop after context cancellation")
	}
}

func TestIsFeedFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"drop/page-1.json", true},
		{"drop/feed.JSONL", true},
		{"drop/readme.md", false},
		{"drop/feed.json.tmp", false},
	}
	for _, tt := range tests {
		if got := isFeedFile(tt.path); got != tt.want {
			t.Errorf("isFeedFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
