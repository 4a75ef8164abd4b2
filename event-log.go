package shopstream

import (
	"context"
	"errors"
)

var ErrEmptyAppend = errors.New("attempted to append empty list of records")

// EventLog is an append-only durable log of event records, keyed by the
// owning aggregate. Append must preserve the order of the batch and must
// not retry internally; a failure part way through may leave a prefix of
// the batch persisted.
type EventLog interface {
	Append(ctx context.Context, records []Record) error
	Read(ctx context.Context, id AggregateId) ([]Record, error)
}
