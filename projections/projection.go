package projections

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	ss "github.com/kestrelworks/shopstream"
	"github.com/kestrelworks/shopstream/cache"
)

// Mapper builds a read model record from a captured event.
type Mapper[T Keyed] func(event ss.Event) (T, error)

// KeyFunc names the record targeted by a delete event.
type KeyFunc func(event ss.Event) (string, error)

func UnexpectedEvent(event ss.Event) error {
	return &UnexpectedEventError{EventType: event.EventType}
}

type UnexpectedEventError struct {
	EventType ss.EventType
}

func (e *UnexpectedEventError) Error() string {
	return fmt.Sprintf("unexpected event %s", e.EventType)
}

// Projection keeps the read model of one aggregate type in step with its
// events. Created and updated events map into a record and upsert it;
// deleted events remove the record by its key. Every applied event also
// invalidates the cached list query and the cached point lookup for the
// record. Invalidation is best effort regardless of the invalidator's own
// behavior: a failure is logged, never propagated, since a stale cache
// entry must not fail the commit that produced the event.
//
// Projections tolerate at-least-once delivery: upserts replace the whole
// record and deletes by key are no-ops once the record is gone.
type Projection[T Keyed] struct {
	query   string
	store   ReadStore[T]
	cache   cache.Invalidator
	logger  zerolog.Logger
	upserts map[ss.EventType]Mapper[T]
	deletes map[ss.EventType]KeyFunc
}

func NewProjection[T Keyed](query string, store ReadStore[T], invalidator cache.Invalidator) *Projection[T] {
	return &Projection[T]{
		query:   query,
		store:   store,
		cache:   invalidator,
		logger:  zerolog.Nop(),
		upserts: make(map[ss.EventType]Mapper[T]),
		deletes: make(map[ss.EventType]KeyFunc),
	}
}

func (p *Projection[T]) WithLogger(logger zerolog.Logger) *Projection[T] {
	p.logger = logger
	return p
}

// OnCreated maps a creation event into an upsert.
func (p *Projection[T]) OnCreated(eventType ss.EventType, mapper Mapper[T]) *Projection[T] {
	p.upserts[eventType] = mapper
	return p
}

// OnUpdated maps an update event into an upsert, same as OnCreated; the
// distinction is the caller's, not the store's.
func (p *Projection[T]) OnUpdated(eventType ss.EventType, mapper Mapper[T]) *Projection[T] {
	p.upserts[eventType] = mapper
	return p
}

// OnDeleted removes the record named by key when the event arrives.
func (p *Projection[T]) OnDeleted(eventType ss.EventType, key KeyFunc) *Projection[T] {
	p.deletes[eventType] = key
	return p
}

// Subscribe registers the projection with the dispatcher for every event
// type it is configured to apply.
func (p *Projection[T]) Subscribe(dispatcher *ss.Dispatcher) *Projection[T] {
	for eventType := range p.upserts {
		dispatcher.Subscribe(eventType, p)
	}
	for eventType := range p.deletes {
		dispatcher.Subscribe(eventType, p)
	}

	return p
}

func (p *Projection[T]) Handle(ctx context.Context, event ss.Event) error {
	if mapper, ok := p.upserts[event.EventType]; ok {
		record, err := mapper(event)
		if err != nil {
			return err
		}

		if err := p.store.Upsert(ctx, record); err != nil {
			return err
		}

		p.invalidate(ctx, record.RecordKey())

		return nil
	}

	if key, ok := p.deletes[event.EventType]; ok {
		target, err := key(event)
		if err != nil {
			return err
		}

		if err := p.store.Delete(ctx, target); err != nil {
			return err
		}

		p.invalidate(ctx, target)

		return nil
	}

	return UnexpectedEvent(event)
}

func (p *Projection[T]) invalidate(ctx context.Context, id string) {
	if err := p.cache.Invalidate(ctx, cache.ListKey(p.query), cache.IDKey(p.query, id)); err != nil {
		p.logger.Warn().Err(err).Str("query", p.query).Str("id", id).Msg("cache invalidation failed")
	}
}
