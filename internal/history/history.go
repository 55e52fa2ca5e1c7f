package history

import (
	"context"
	"time"
)

// EventType defines the kind of registry audit event.
type EventType string

const (
	EventRegistered EventType = "registered"
	EventUpdated    EventType = "updated"
	EventDeleted    EventType = "deleted"
	EventValidated  EventType = "validated"
	EventRendered   EventType = "rendered"
)

// Event represents one registry operation to be exported to external
// systems. Events are append-only; they never fail the operation that
// produced them.
type Event struct {
	Type       EventType `json:"type"`
	Name       string    `json:"name"`
	Revision   string    `json:"revision,omitempty"`
	OK         bool      `json:"ok"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Sink is a destination for audit events (analytics/statistics systems).
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
}
