package shopstream

import (
	"context"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

const tracerName = "shopstream"

type Handler interface {
	Handle(ctx context.Context, event Event) error
}

type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Dispatcher fans captured events out to the handlers registered for their
// type. Events of one aggregate are delivered in the order they were
// recorded; streams of different aggregates dispatch concurrently with no
// mutual ordering, as do the handlers of a single event.
type Dispatcher struct {
	handlers map[EventType][]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[EventType][]Handler),
	}
}

func (d *Dispatcher) Subscribe(eventType EventType, handler Handler) {
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

// Publish invokes every handler registered for each event's type, once per
// event, and waits for all invocations to settle. A failed invocation does
// not stop the batch: later events are still offered to their handlers, and
// side effects already applied are not undone. The first failure is
// returned.
func (d *Dispatcher) Publish(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "publish events")
	defer span.End()

	streams := make(map[AggregateId][]Event)
	var order []AggregateId
	for _, event := range events {
		if _, seen := streams[event.AggregateId]; !seen {
			order = append(order, event.AggregateId)
		}
		streams[event.AggregateId] = append(streams[event.AggregateId], event)
	}

	group := &errgroup.Group{}
	for _, id := range order {
		stream := streams[id]
		group.Go(func() error {
			return d.publishStream(ctx, stream)
		})
	}

	return group.Wait()
}

func (d *Dispatcher) publishStream(ctx context.Context, stream []Event) error {
	var first error
	for _, event := range stream {
		event := event
		handlers := d.handlers[event.EventType]
		if len(handlers) == 0 {
			continue
		}

		group := &errgroup.Group{}
		for _, handler := range handlers {
			handler := handler
			group.Go(func() error {
				return handler.Handle(ctx, event)
			})
		}

		if err := group.Wait(); err != nil && first == nil {
			first = err
		}
	}

	return first
}
