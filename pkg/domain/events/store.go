package events

import (
	"time"
)

// EventStore provides persistence for domain events.
type EventStore interface {
	// Append adds a new event to the store, chaining it to the previous event.
	Append(event *BaseEvent) error

	// LoadAll returns all events in chronological order.
	LoadAll() ([]*BaseEvent, error)

	// LoadByAggregate returns events for a specific aggregate.
	LoadByAggregate(aggregateType, aggregateID string) ([]*BaseEvent, error)

	// LoadByType returns events of a specific type.
	LoadByType(eventType string) ([]*BaseEvent, error)

	// LoadSince returns events that occurred after the given timestamp.
	LoadSince(since time.Time) ([]*BaseEvent, error)

	// GetLastEvent returns the most recent event (for hash chaining).
	GetLastEvent() (*BaseEvent, error)

	// Count returns the total number of events.
	Count() (int, error)
}

// EventPublisher broadcasts events to subscribers.
type EventPublisher interface {
	// Publish sends an event to all registered subscribers.
	Publish(event *BaseEvent) error

	// Subscribe registers a handler for events.
	Subscribe(handler EventHandler)
}

// EventHandler processes published events.
type EventHandler func(event *BaseEvent) error
