// Package watch provides feed drop directory watching with debounce support.
package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid triggers per key into a single callback
// invocation. Separate keys debounce independently, so two files dropped
// at the same time each get their own callback.
type Debouncer struct {
	window   time.Duration
	mu       sync.Mutex
	timers   map[string]*time.Timer
	callback func(key string)
}

// NewDebouncer creates a debouncer with the given window duration.
func NewDebouncer(window time.Duration, callback func(key string)) *Debouncer {
	return &Debouncer{
		window:   window,
		timers:   make(map[string]*time.Timer),
		callback: callback,
	}
}

// Trigger resets the debounce timer for the key. The callback fires after
// the window elapses with no further triggers for that key.
func (d *Debouncer) Trigger(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.timers[key] = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()
		d.callback(key)
	})
}

// Stop cancels all pending callbacks.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
