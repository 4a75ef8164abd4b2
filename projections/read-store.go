package projections

import (
	"context"
	"sort"
	"sync"
)

// Keyed is a read model record identified by its own key. The key is the
// record's identity in the read store and need not match the identifier of
// the aggregate it was projected from.
type Keyed interface {
	RecordKey() string
}

// ReadStore holds the denormalized records of one projection. Upsert
// replaces the record with the target key entirely, inserting when absent,
// which keeps projection application idempotent under redelivery.
type ReadStore[T Keyed] interface {
	Upsert(ctx context.Context, record T) error
	Delete(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (T, bool, error)
	List(ctx context.Context) ([]T, error)
}

// MemoryReadStore is an in-process ReadStore for tests and local wiring.
type MemoryReadStore[T Keyed] struct {
	lk      sync.Mutex
	records map[string]T
}

func NewMemoryReadStore[T Keyed]() *MemoryReadStore[T] {
	return &MemoryReadStore[T]{records: make(map[string]T)}
}

func (s *MemoryReadStore[T]) Upsert(ctx context.Context, record T) error {
	s.lk.Lock()
	defer s.lk.Unlock()

	s.records[record.RecordKey()] = record

	return nil
}

func (s *MemoryReadStore[T]) Delete(ctx context.Context, key string) error {
	s.lk.Lock()
	defer s.lk.Unlock()

	delete(s.records, key)

	return nil
}

func (s *MemoryReadStore[T]) Get(ctx context.Context, key string) (T, bool, error) {
	s.lk.Lock()
	defer s.lk.Unlock()

	record, ok := s.records[key]
	return record, ok, nil
}

// List returns every record ordered by key.
func (s *MemoryReadStore[T]) List(ctx context.Context) ([]T, error) {
	s.lk.Lock()
	defer s.lk.Unlock()

	keys := make([]string, 0, len(s.records))
	for key := range s.records {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	records := make([]T, len(keys))
	for i, key := range keys {
		records[i] = s.records[key]
	}

	return records, nil
}

func (s *MemoryReadStore[T]) Len() int {
	s.lk.Lock()
	defer s.lk.Unlock()

	return len(s.records)
}
