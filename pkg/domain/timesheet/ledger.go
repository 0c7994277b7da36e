package timesheet

import (
	"sync"
	"time"
)

// Ledger is an in-memory accumulator of status events owned by the host
// process. Each host component holds its own instance; independent ingest
// sessions never interfere. It tracks the highest sequence seen so that a
// re-delivered feed page is absorbed without double counting.
type Ledger struct {
	mu         sync.RWMutex
	events     []StatusEvent
	lastSeq    int64
	aggregator *Aggregator
}

// NewLedger creates an empty ledger.
func NewLedger(aggregator *Aggregator) *Ledger {
	if aggregator == nil {
		aggregator = NewAggregator()
	}
	return &Ledger{aggregator: aggregator}
}

// Ingest appends events the ledger has not seen yet and returns how many
// were accepted. Events without a sequence (zero) are always accepted;
// sequenced events at or below the high-water mark are duplicates from a
// re-read feed and are dropped.
func (l *Ledger) Ingest(events []StatusEvent) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	accepted := 0
	for _, e := range events {
		if e.Sequence != 0 && e.Sequence <= l.lastSeq {
			continue
		}
		l.events = append(l.events, e)
		if e.Sequence > l.lastSeq {
			l.lastSeq = e.Sequence
		}
		accepted++
	}
	return accepted
}

// Events returns a copy of all accumulated events.
func (l *Ledger) Events() []StatusEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]StatusEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Count returns the number of accumulated events.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// LastSequence returns the highest sequence ingested so far.
func (l *Ledger) LastSequence() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastSeq
}

// Summaries aggregates the accumulated events at the current clock reading.
func (l *Ledger) Summaries() []ProjectSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.aggregator.Aggregate(l.events)
}

// SummariesAt aggregates the accumulated events at an explicit instant.
func (l *Ledger) SummariesAt(referenceNow time.Time) []ProjectSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.aggregator.AggregateAt(l.events, referenceNow)
}

// Rows aggregates and flattens in one step.
func (l *Ledger) Rows() []Row {
	return Rows(l.Summaries())
}

// Rebuild clears the ledger and re-ingests the given events from scratch.
func (l *Ledger) Rebuild(events []StatusEvent) {
	l.mu.Lock()
	l.events = nil
	l.lastSeq = 0
	l.mu.Unlock()

	l.Ingest(events)
}

// Reset clears all accumulated state.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
	l.lastSeq = 0
}
