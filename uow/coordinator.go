package uow

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	ss "github.com/kestrelworks/shopstream"
)

const tracerName = "shopstream-uow"

// Coordinator is the unit of work for one write request. It commits the
// write store change set under the store's execution strategy, then carries
// the captured events to the event log and out to subscribers.
//
// The write side is authoritative: once the transaction commits, failures
// while storing or publishing events are reported to the caller but never
// roll the commit back. The commit is durable and propagation is best
// effort; a reported post commit failure means the event log or the read
// side needs out of band reconciliation.
type Coordinator struct {
	store      WriteStore
	log        ss.EventLog
	dispatcher *ss.Dispatcher
	gen        *ss.RecordIdGenerator
	logger     zerolog.Logger
	clock      func() time.Time
}

type CoordinatorOption func(*Coordinator)

func WithLogger(logger zerolog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

func WithClock(clock func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		c.clock = clock
	}
}

func NewCoordinator(store WriteStore, log ss.EventLog, dispatcher *ss.Dispatcher, options ...CoordinatorOption) *Coordinator {
	coordinator := &Coordinator{
		store:      store,
		log:        log,
		dispatcher: dispatcher,
		gen:        ss.NewRecordIdGenerator(),
		logger:     zerolog.Nop(),
		clock:      time.Now,
	}

	for _, option := range options {
		option(coordinator)
	}

	return coordinator
}

// Commit runs the commit protocol against the tracked change set.
//
// Each attempt begins a read committed transaction, captures the pending
// events of the tracked aggregates, flushes the change set and commits.
// Capture drains the aggregate queues unconditionally; the harvest
// accumulates across attempts of the strategy, so a retried attempt neither
// loses the events of a rolled back predecessor nor publishes them twice.
//
// After the commit succeeds the harvested records are appended to the event
// log and the events are published. A commit with an empty harvest skips
// both stages.
func (c *Coordinator) Commit(ctx context.Context) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "commit unit of work")
	defer span.End()

	var events []ss.Event
	var records []ss.Record

	// carries the committed attempt's tx id into the post commit logs
	logger := c.logger

	attempt := func(ctx context.Context) error {
		tx, err := c.store.Begin(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to begin transaction")
		}

		logger = c.logger.With().Str("tx", tx.ID().String()).Logger()
		logger.Info().Msg("transaction begun")

		captured, harvested, err := ss.Capture(c.gen, c.clock(), c.store.Tracked()...)
		if err != nil {
			c.rollback(ctx, logger, tx)
			return err
		}

		events = append(events, captured...)
		records = append(records, harvested...)

		if err := tx.Flush(ctx); err != nil {
			c.rollback(ctx, logger, tx)
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			c.rollback(ctx, logger, tx)
			return err
		}

		logger.Info().Msg("transaction committed")

		return nil
	}

	if err := c.store.Strategy().Execute(ctx, attempt); err != nil {
		return err
	}

	if len(records) == 0 {
		return nil
	}

	if err := c.log.Append(ctx, records); err != nil {
		logger.Error().Err(err).Msg("unexpected failure: write committed but events were not stored")
		return errors.Wrap(err, "write committed but events were not stored")
	}

	if err := c.dispatcher.Publish(ctx, events); err != nil {
		logger.Error().Err(err).Msg("unexpected failure: write committed but events were not fully published")
		return errors.Wrap(err, "write committed but events were not fully published")
	}

	return nil
}

func (c *Coordinator) rollback(ctx context.Context, logger zerolog.Logger, tx Tx) {
	if err := tx.Rollback(ctx); err != nil {
		logger.Error().Err(err).Msg("transaction rollback failed")
		return
	}

	logger.Info().Msg("transaction rolled back")
}

// Close releases the write store and event log handles the coordinator owns.
func (c *Coordinator) Close() error {
	var failure error

	if closer, ok := c.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			failure = errors.Wrap(err, "failed to close write store")
		}
	}

	if closer, ok := c.log.(io.Closer); ok {
		if err := closer.Close(); err != nil && failure == nil {
			failure = errors.Wrap(err, "failed to close event log")
		}
	}

	return failure
}
