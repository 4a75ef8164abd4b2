package shopstream

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type RecordId string

func (id RecordId) String() string {
	return string(id)
}

// Record is the durable form of a captured event. Records are append-only:
// once written to an event log they are never updated or deleted.
type Record struct {
	RecordId    RecordId    `json:"id"`
	AggregateId AggregateId `json:"aggregate"`
	EventType   EventType   `json:"type"`
	Data        Data        `json:"data"`
	Timestamp   Timestamp   `json:"timestamp"`
}

// RecordIdGenerator issues lexically ordered record ids. Ids generated from
// the same generator sort in issue order, which keeps a batch of records
// ordered under keys derived from their ids.
type RecordIdGenerator struct {
	lk      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewRecordIdGenerator() *RecordIdGenerator {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)

	return &RecordIdGenerator{
		entropy: entropy,
	}
}

func (g *RecordIdGenerator) NewRecordId(t time.Time) RecordId {
	g.lk.Lock()
	defer g.lk.Unlock()

	return RecordId(ulid.MustNew(ulid.Timestamp(t), g.entropy).String())
}
