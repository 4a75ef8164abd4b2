package shopstream

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Capture drains the pending event queues of the given sources and returns
// the captured events alongside their durable records, one record per event
// in the same order. Queue order is preserved within each source; the order
// of the sources themselves carries no meaning.
//
// Queues are cleared unconditionally, whether or not the surrounding commit
// attempt goes on to succeed. Other than the queues, capture touches nothing.
func Capture(gen *RecordIdGenerator, now time.Time, sources ...EventSource) ([]Event, []Record, error) {
	var events []Event
	var records []Record

	timestamp := TimestampFromTime(now)

	for _, source := range sources {
		pending := source.PendingEvents()
		source.ClearPendingEvents()

		for _, payload := range pending {
			eventType := EventTypeOf(payload)

			data, err := MarshalToData(payload)
			if err != nil {
				return nil, nil, errors.Wrap(
					err,
					fmt.Sprintf("failed to capture %s", eventType),
				)
			}

			events = append(events, Event{
				AggregateId: source.AggregateId(),
				EventType:   eventType,
				Timestamp:   timestamp,
				Payload:     payload,
			})

			records = append(records, Record{
				RecordId:    gen.NewRecordId(now),
				AggregateId: source.AggregateId(),
				EventType:   eventType,
				Data:        data,
				Timestamp:   timestamp,
			})
		}
	}

	return events, records, nil
}
