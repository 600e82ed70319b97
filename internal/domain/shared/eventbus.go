package shared

import "context"

// EventHandler handles domain events
type EventHandler interface {
	// Handle processes a domain event
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler is interested in.
	// An empty slice means the handler receives all events.
	EventTypes() []string
}

// EventPublisher publishes domain events once the unit of work that raised them has committed
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber subscribes to domain events
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus combines publisher and subscriber capabilities
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// EventCollector gathers events raised inside a transaction so they can be published after commit
type EventCollector struct {
	events []DomainEvent
}

// Collect appends events from one or more aggregates and clears them on the source
func (c *EventCollector) Collect(aggregates ...AggregateRoot) {
	for _, a := range aggregates {
		c.events = append(c.events, a.GetDomainEvents()...)
		a.ClearDomainEvents()
	}
}

// Add appends standalone events
func (c *EventCollector) Add(events ...DomainEvent) {
	c.events = append(c.events, events...)
}

// Events returns the collected events
func (c *EventCollector) Events() []DomainEvent {
	return c.events
}

// Reset drops collected events, used when a unit of work is retried
func (c *EventCollector) Reset() {
	c.events = nil
}
