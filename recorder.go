package shopstream

// EventSource is a write side aggregate that queues domain events as its
// business operations run. The queue is owned exclusively by the aggregate
// instance for the duration of one commit attempt.
type EventSource interface {
	AggregateId() AggregateId
	PendingEvents() []DomainEvent
	ClearPendingEvents()
}

// EventRecorder implements the pending event queue for an aggregate.
// Embed it in an aggregate struct and call Record from business operations.
type EventRecorder struct {
	pending []DomainEvent
}

func (r *EventRecorder) Record(events ...DomainEvent) {
	r.pending = append(r.pending, events...)
}

func (r *EventRecorder) PendingEvents() []DomainEvent {
	return r.pending
}

func (r *EventRecorder) ClearPendingEvents() {
	r.pending = nil
}
