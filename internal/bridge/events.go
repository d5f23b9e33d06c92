package bridge

// Event represents a bridge lifecycle event.
// Minimal and stable: name + current state and optional fields via key/values.
type Event struct {
	Name   string
	State  State
	Fields map[string]any
}

// EventPublisher receives events from the bridge. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
