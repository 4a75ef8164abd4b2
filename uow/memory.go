package uow

import (
	"context"
	"sync"

	ss "github.com/kestrelworks/shopstream"
)

// MemoryStore is an in-process WriteStore for tests and local wiring. State
// becomes visible only when a transaction commits; a rolled back attempt
// leaves no trace.
type MemoryStore struct {
	strategy ExecutionStrategy

	lk            sync.Mutex
	changes       []change
	state         map[ss.EncodedAggregateId]ss.EventSource
	nextFlushFail error
}

type MemoryOption func(*MemoryStore)

func WithMemoryStrategy(strategy ExecutionStrategy) MemoryOption {
	return func(s *MemoryStore) {
		s.strategy = strategy
	}
}

func NewMemoryStore(options ...MemoryOption) *MemoryStore {
	store := &MemoryStore{
		strategy: OnceStrategy{},
		state:    make(map[ss.EncodedAggregateId]ss.EventSource),
	}

	for _, option := range options {
		option(store)
	}

	return store
}

func (s *MemoryStore) Save(source ss.EventSource) {
	s.lk.Lock()
	defer s.lk.Unlock()

	s.changes = append(s.changes, change{kind: changeSave, source: source})
}

func (s *MemoryStore) Delete(source ss.EventSource) {
	s.lk.Lock()
	defer s.lk.Unlock()

	s.changes = append(s.changes, change{kind: changeDelete, source: source})
}

func (s *MemoryStore) Tracked() []ss.EventSource {
	s.lk.Lock()
	defer s.lk.Unlock()

	tracked := make([]ss.EventSource, len(s.changes))
	for i, c := range s.changes {
		tracked[i] = c.source
	}

	return tracked
}

func (s *MemoryStore) Strategy() ExecutionStrategy {
	return s.strategy
}

// FailNextFlush makes the next flush fail with err, simulating a constraint
// violation or a dropped connection.
func (s *MemoryStore) FailNextFlush(err error) {
	s.lk.Lock()
	defer s.lk.Unlock()

	s.nextFlushFail = err
}

func (s *MemoryStore) Get(id ss.AggregateId) (ss.EventSource, bool) {
	s.lk.Lock()
	defer s.lk.Unlock()

	source, ok := s.state[id.Encode()]
	return source, ok
}

func (s *MemoryStore) Len() int {
	s.lk.Lock()
	defer s.lk.Unlock()

	return len(s.state)
}

func (s *MemoryStore) Begin(ctx context.Context) (Tx, error) {
	return &memoryStoreTx{id: NewTxID(), store: s}, nil
}

type memoryStoreTx struct {
	id     TxID
	store  *MemoryStore
	staged []change
}

func (t *memoryStoreTx) ID() TxID {
	return t.id
}

func (t *memoryStoreTx) Flush(ctx context.Context) error {
	t.store.lk.Lock()
	defer t.store.lk.Unlock()

	if err := t.store.nextFlushFail; err != nil {
		t.store.nextFlushFail = nil
		return err
	}

	t.staged = make([]change, len(t.store.changes))
	copy(t.staged, t.store.changes)

	return nil
}

func (t *memoryStoreTx) Commit(ctx context.Context) error {
	t.store.lk.Lock()
	defer t.store.lk.Unlock()

	for _, c := range t.staged {
		key := c.source.AggregateId().Encode()
		switch c.kind {
		case changeSave:
			t.store.state[key] = c.source
		case changeDelete:
			delete(t.store.state, key)
		}
	}

	t.store.changes = nil

	return nil
}

func (t *memoryStoreTx) Rollback(ctx context.Context) error {
	t.staged = nil
	return nil
}
