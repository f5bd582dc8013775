package monitor

// Lifecycle event names.
const (
	EventSubscribe       = "subscribe"
	EventUnsubscribe     = "unsubscribe"
	EventCaptureAcquired = "capture_acquired"
	EventCaptureReleased = "capture_released"
	EventCaptureFailed   = "capture_failed"
	EventTickFailed      = "tick_failed"
)

// Event represents a monitor lifecycle event.
type Event struct {
	Name         string
	SubscriberID string
	Fields       map[string]any
}

// EventPublisher receives events from the monitor. Publish is called with the
// monitor lock held for registry events; implementations must not block or
// call back into the Monitor.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
