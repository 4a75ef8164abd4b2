package jetstream

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	ss "github.com/kestrelworks/shopstream"
)

const prefix = "records."

// EventLog persists records on a NATS JetStream stream, one message per
// record, on a subject per aggregate. JetStream assigns every message a
// stream sequence, so a subject reads back in append order.
type EventLog struct {
	name    string
	manager nats.JetStreamManager
	stream  nats.JetStream
}

func NewEventLog(name string, connection *nats.Conn) (*EventLog, error) {
	stream, err := connection.JetStream()
	if err != nil {
		return nil, err
	}

	_, err = stream.AddStream(&nats.StreamConfig{
		Name:        name,
		Description: "record stream for " + name,
		Subjects:    []string{prefix + ">"},
	})
	if err != nil {
		return nil, err
	}

	return &EventLog{
		name:    name,
		manager: stream,
		stream:  stream,
	}, nil
}

func subject(id ss.AggregateId) string {
	return prefix + id.Encode().String()
}

type message struct {
	RecordId    ss.RecordId    `json:"id"`
	AggregateId ss.AggregateId `json:"aggregate"`
	EventType   ss.EventType   `json:"type"`
	Data        ss.Data        `json:"data"`
	Timestamp   ss.Timestamp   `json:"timestamp"`
}

func (l *EventLog) Append(ctx context.Context, records []ss.Record) error {
	if len(records) == 0 {
		return ss.ErrEmptyAppend
	}

	for _, record := range records {
		bytes, err := json.Marshal(message{
			RecordId:    record.RecordId,
			AggregateId: record.AggregateId,
			EventType:   record.EventType,
			Data:        record.Data,
			Timestamp:   record.Timestamp,
		})
		if err != nil {
			return err
		}

		if _, err := l.stream.Publish(subject(record.AggregateId), bytes, nats.Context(ctx)); err != nil {
			return err
		}
	}

	return nil
}

func (l *EventLog) Read(ctx context.Context, id ss.AggregateId) ([]ss.Record, error) {
	latest, err := l.latest(ctx, subject(id))
	if err != nil {
		return nil, err
	}

	if latest == nil {
		return nil, nil
	}

	subscription, err := l.stream.SubscribeSync(subject(id), nats.DeliverAll(), nats.OrderedConsumer())
	if err != nil {
		return nil, err
	}
	defer func(subscription *nats.Subscription) {
		if err := subscription.Unsubscribe(); err != nil {
			log.Err(err).Msg("ephemeral stream subscription failed to unsubscribe cleanly")
		}
	}(subscription)

	var records []ss.Record
	for {
		msg, err := subscription.NextMsgWithContext(ctx)
		if err != nil {
			return nil, err
		}

		metadata, err := msg.Metadata()
		if err != nil {
			return nil, err
		}

		var decoded message
		if err := json.Unmarshal(msg.Data, &decoded); err != nil {
			return nil, err
		}

		records = append(records, ss.Record{
			RecordId:    decoded.RecordId,
			AggregateId: decoded.AggregateId,
			EventType:   decoded.EventType,
			Data:        decoded.Data,
			Timestamp:   decoded.Timestamp,
		})

		if metadata.Sequence.Stream >= *latest {
			break
		}
	}

	return records, nil
}

func (l *EventLog) latest(ctx context.Context, subject string) (*uint64, error) {
	msg, err := l.manager.GetLastMsg(l.name, subject, nats.Context(ctx))
	if err != nil {
		if err == nats.ErrMsgNotFound {
			return nil, nil
		}

		return nil, err
	}

	return &msg.Sequence, nil
}
