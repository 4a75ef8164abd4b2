package uow

import (
	"context"

	"github.com/oklog/ulid/v2"

	ss "github.com/kestrelworks/shopstream"
)

// TxID traces one write store commit attempt through the logs.
type TxID string

func NewTxID() TxID {
	return TxID(ulid.Make().String())
}

func (id TxID) String() string {
	return string(id)
}

// WriteStore is the transactional write side store. It tracks the mutated
// aggregates of the current unit of work and opens read committed
// transactions over them.
type WriteStore interface {
	Strategy() ExecutionStrategy
	Tracked() []ss.EventSource
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one write store transaction. Flush applies the tracked change set;
// Commit and Rollback end the transaction. Rollback after a successful
// Commit is invalid and must not be attempted.
type Tx interface {
	ID() TxID
	Flush(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
