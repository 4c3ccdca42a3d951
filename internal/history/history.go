package history

import (
	"context"
	"time"
)

// EventType is the kind of supervision lifecycle event.
type EventType string

const (
	EventStart EventType = "start"
	EventReady EventType = "ready"
	EventError EventType = "error"
	EventStop  EventType = "stop"
)

// Record is the status snapshot attached to an event. It mirrors the
// supervisor's status record without importing it.
type Record struct {
	State string `json:"state"`
	PID   int    `json:"pid"`
	Port  int    `json:"port"`
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Event is a lifecycle transition to be exported to external systems.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Record     Record    `json:"record"`
}

// Sink is a destination for history events (analytics/statistics
// systems). Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}

// Nop discards events. Used when no history DSN is configured.
type Nop struct{}

func (Nop) Send(context.Context, Event) error { return nil }

func (Nop) Close() error { return nil }
