package shared

import "context"

// EventHandler consumes domain events. EventTypes lists the types the
// handler wants; an empty slice subscribes it to everything.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher delivers domain events after an aggregate change has
// been persisted.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber registers handlers. Passing no event types subscribes
// the handler to all events.
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
}

// EventBus is both sides of the in-process event pipeline.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
