package shopstream

import (
	"context"
	"sync"
)

// MemoryEventLog is an in-process EventLog for tests and local wiring.
type MemoryEventLog struct {
	lk      sync.Mutex
	streams map[EncodedAggregateId][]Record
	order   []Record
}

func NewMemoryEventLog() *MemoryEventLog {
	return &MemoryEventLog{
		streams: make(map[EncodedAggregateId][]Record),
	}
}

func (l *MemoryEventLog) Append(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return ErrEmptyAppend
	}

	l.lk.Lock()
	defer l.lk.Unlock()

	for _, record := range records {
		key := record.AggregateId.Encode()
		l.streams[key] = append(l.streams[key], record)
		l.order = append(l.order, record)
	}

	return nil
}

func (l *MemoryEventLog) Read(ctx context.Context, id AggregateId) ([]Record, error) {
	l.lk.Lock()
	defer l.lk.Unlock()

	stream := l.streams[id.Encode()]
	records := make([]Record, len(stream))
	copy(records, stream)

	return records, nil
}

// All returns every appended record in append order.
func (l *MemoryEventLog) All() []Record {
	l.lk.Lock()
	defer l.lk.Unlock()

	records := make([]Record, len(l.order))
	copy(records, l.order)

	return records
}
