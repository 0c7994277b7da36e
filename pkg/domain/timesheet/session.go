package timesheet

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/statekit"
)

// State constants for statekit integration.
// These must remain as untyped string constants for statekit.StateID compatibility.
const (
	StateOffsite = "offsite"
	StateOnsite  = "onsite"
)

// Session events.
const (
	EventArrive = "arrive"
	EventClose  = "close"
)

// SessionContext carries the identity of the bucket the session belongs to.
type SessionContext struct {
	WorkerID int64
	Key      WorkOrderKey
}

// SessionMachine tracks whether a worker currently has an open work session
// on one work-order bucket. Onsite opens a session; any other status closes
// it. Repeated onsite events while already onsite are heartbeats and do not
// restart the session.
type SessionMachine struct {
	interpreter *statekit.Interpreter[SessionContext]
	openedAt    time.Time
}

// NewSessionMachine creates a session machine starting offsite.
func NewSessionMachine(workerID int64, key WorkOrderKey) (*SessionMachine, error) {
	builder := statekit.NewMachine[SessionContext]("work-session").
		WithInitial(statekit.StateID(StateOffsite)).
		WithContext(SessionContext{
			WorkerID: workerID,
			Key:      key,
		})

	builder.State(StateOffsite).
		On(EventArrive).Target(StateOnsite).
		Done()

	builder.State(StateOnsite).
		On(EventClose).Target(StateOffsite).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build session machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &SessionMachine{interpreter: interpreter}, nil
}

// Current returns the current session state.
func (sm *SessionMachine) Current() string {
	return string(sm.interpreter.State().Value)
}

// IsOpen returns true while a work session is in progress.
func (sm *SessionMachine) IsOpen() bool {
	return sm.Current() == StateOnsite
}

// OpenedAt returns when the current session opened. Only meaningful while
// IsOpen is true.
func (sm *SessionMachine) OpenedAt() time.Time {
	return sm.openedAt
}

// Arrive opens a session at the given instant. A heartbeat while already
// onsite keeps the original opening time.
func (sm *SessionMachine) Arrive(at time.Time) {
	if sm.IsOpen() {
		return
	}
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(EventArrive)})
	sm.openedAt = at
}

// Close ends an open session and returns its duration. Closing while
// offsite is a no-op reporting zero.
func (sm *SessionMachine) Close(at time.Time) time.Duration {
	if !sm.IsOpen() {
		return 0
	}
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(EventClose)})
	elapsed := at.Sub(sm.openedAt)
	sm.openedAt = time.Time{}
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
