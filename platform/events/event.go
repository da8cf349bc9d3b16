// Package events is the in-process event bus the modules publish their
// domain events through. Event definitions live in internal/events; this
// package only knows how to route them.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event.
type Event interface {
	// EventName identifies the event type; subscriptions key on it.
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the occurrence timestamp shared by all events.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler processes events of one type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events to their subscribers.
type Bus interface {
	// Publish dispatches to every handler registered for the event's name.
	// Handlers run asynchronously; publish never blocks on them.
	Publish(ctx context.Context, event Event)

	// PublishSync dispatches and waits for every handler to finish.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler for the given EventName value.
	Subscribe(eventName string, handler Handler)
}
