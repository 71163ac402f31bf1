package events

import "time"

// Event is anything published onto the EVENTS stream. The type code
// doubles as the NATS subject suffix ("events.<EventType>").
type Event interface {
	// EventType returns the stable code, e.g. "QUESTION_ANSWERED".
	EventType() string

	// Payload returns the wire body of the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain carrier form. The subscriber reconstructs
// events in this form, with Type taken from the inbound subject.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
