package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/felixgeelhaar/onsite/pkg/domain/timesheet"
)

// FileFeedStore persists raw status events as a JSON Lines file, assigning
// each event a monotonic sequence on append. The feed is append-only;
// events are never updated in place.
type FileFeedStore struct {
	mu       sync.RWMutex
	path     string
	basePath string
	lastSeq  int64
}

// NewFileFeedStore creates a feed store over .onsite/feed.jsonl.
func NewFileFeedStore(basePath string) (*FileFeedStore, error) {
	store := &FileFeedStore{
		path:     filepath.Join(basePath, FeedFile),
		basePath: basePath,
	}

	existing, err := store.loadEvents()
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if e.Sequence > store.lastSeq {
			store.lastSeq = e.Sequence
		}
	}

	return store, nil
}

// Append stores new events, assigning each a monotonic sequence. The
// sequences are written back into the caller's slice so it can feed a
// ledger without re-reading the file.
func (s *FileFeedStore) Append(events []timesheet.StatusEvent) (err error) {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.basePath, 0750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open feed file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close feed file: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	for i := range events {
		s.lastSeq++
		events[i].Sequence = s.lastSeq

		data, err := json.Marshal(events[i])
		if err != nil {
			return fmt.Errorf("marshal feed event: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("write feed event: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush feed file: %w", err)
	}

	return nil
}

// LoadAll returns every stored event in append order.
func (s *FileFeedStore) LoadAll() ([]timesheet.StatusEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadEvents()
}

// LoadSince returns events with a sequence greater than the given one.
func (s *FileFeedStore) LoadSince(sequence int64) ([]timesheet.StatusEvent, error) {
	all, err := s.LoadAll()
	if err != nil {
		return nil, err
	}

	var result []timesheet.StatusEvent
	for _, e := range all {
		if e.Sequence > sequence {
			result = append(result, e)
		}
	}
	return result, nil
}

// LastSequence returns the highest assigned sequence.
func (s *FileFeedStore) LastSequence() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeq, nil
}

// Count returns the number of stored events.
func (s *FileFeedStore) Count() (int, error) {
	all, err := s.LoadAll()
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// loadEvents reads all feed events from the file. Malformed lines are
// skipped; a corrupt record must not sink the feed.
func (s *FileFeedStore) loadEvents() ([]timesheet.StatusEvent, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open feed file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	var result []timesheet.StatusEvent
	scanner := bufio.NewScanner(f)

	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event timesheet.StatusEvent
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		result = append(result, event)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan feed file: %w", err)
	}

	return result, nil
}
