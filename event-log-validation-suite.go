package shopstream

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/jaswdr/faker"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
)

var entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)

// NewEventLogValidationSuite exercises the EventLog contract against any
// backend. Backends run it from their own tests.
func NewEventLogValidationSuite(ctx context.Context, log EventLog) *EventLogValidationSuite {
	return &EventLogValidationSuite{
		log:   log,
		ctx:   ctx,
		faker: faker.New(),
		gen:   NewRecordIdGenerator(),
	}
}

type EventLogValidationSuite struct {
	log   EventLog
	ctx   context.Context
	faker faker.Faker
	gen   *RecordIdGenerator
}

type logValidationEvent struct {
	TestStringValue string `json:"test_string_value"`
	TestIntValue    int    `json:"test_int_value"`
}

func (s *EventLogValidationSuite) Run(t *testing.T) {
	t.Run("reads an empty stream", s.ReadsEmptyStream)
	t.Run("rejects an empty append", s.RejectsEmptyAppend)
	t.Run("appends a single record", s.AppendsSingleRecord)
	t.Run("appends a batch in order", s.AppendsBatchInOrder)
	t.Run("keeps streams separate per aggregate", s.SeparatesStreams)
}

func (s *EventLogValidationSuite) MakeTestAggregateId() AggregateId {
	return AggregateId{
		Type: "go-test",
		Key:  ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String(),
	}
}

func (s *EventLogValidationSuite) MakeTestRecord(id AggregateId) Record {
	payload := logValidationEvent{
		TestStringValue: s.faker.Lorem().Sentence(10),
		TestIntValue:    s.faker.Int(),
	}

	data, _ := MarshalToData(payload)
	now := time.Now()

	return Record{
		RecordId:    s.gen.NewRecordId(now),
		AggregateId: id,
		EventType:   EventTypeOf(payload),
		Data:        data,
		Timestamp:   TimestampFromTime(now),
	}
}

func (s *EventLogValidationSuite) MakeTestRecords(id AggregateId, count int) []Record {
	records := make([]Record, count)
	for i := 0; i < count; i++ {
		records[i] = s.MakeTestRecord(id)
	}

	return records
}

func (s *EventLogValidationSuite) ReadsEmptyStream(t *testing.T) {
	records, err := s.log.Read(s.ctx, s.MakeTestAggregateId())

	if !assert.Nil(t, err) {
		return
	}

	assert.Empty(t, records)
}

func (s *EventLogValidationSuite) RejectsEmptyAppend(t *testing.T) {
	err := s.log.Append(s.ctx, nil)

	assert.ErrorIs(t, err, ErrEmptyAppend)
}

func (s *EventLogValidationSuite) AppendsSingleRecord(t *testing.T) {
	id := s.MakeTestAggregateId()
	record := s.MakeTestRecord(id)

	err := s.log.Append(s.ctx, []Record{record})
	if !assert.Nil(t, err) {
		return
	}

	records, err := s.log.Read(s.ctx, id)
	if !assert.Nil(t, err) {
		return
	}

	if !assert.Len(t, records, 1) {
		return
	}

	assert.Equal(t, record.RecordId, records[0].RecordId)
	assert.Equal(t, record.EventType, records[0].EventType)
	assert.Equal(t, record.Data, records[0].Data)
}

func (s *EventLogValidationSuite) AppendsBatchInOrder(t *testing.T) {
	id := s.MakeTestAggregateId()
	batch := s.MakeTestRecords(id, 17)

	err := s.log.Append(s.ctx, batch)
	if !assert.Nil(t, err) {
		return
	}

	records, err := s.log.Read(s.ctx, id)
	if !assert.Nil(t, err) {
		return
	}

	if !assert.Len(t, records, len(batch)) {
		return
	}

	for i, record := range batch {
		assert.Equal(t, record.RecordId, records[i].RecordId)
	}
}

func (s *EventLogValidationSuite) SeparatesStreams(t *testing.T) {
	first := s.MakeTestAggregateId()
	second := s.MakeTestAggregateId()

	err := s.log.Append(s.ctx, s.MakeTestRecords(first, 3))
	if !assert.Nil(t, err) {
		return
	}

	err = s.log.Append(s.ctx, s.MakeTestRecords(second, 2))
	if !assert.Nil(t, err) {
		return
	}

	records, err := s.log.Read(s.ctx, first)
	if !assert.Nil(t, err) {
		return
	}

	assert.Len(t, records, 3)
	for _, record := range records {
		assert.Equal(t, first, record.AggregateId)
	}
}
