// Package chrono provides the shared time primitives for the reconciliation
// cores: lenient timestamp parsing, rounded minute arithmetic, and an
// injectable clock so every computation is deterministic under test.
package chrono

import "time"

// Clock supplies the reference "now" for live-session extension and flag
// evaluation. Production code uses SystemClock; tests use FixedClock.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the wall-clock time.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.At
}
