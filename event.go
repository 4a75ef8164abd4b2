package shopstream

import (
	"errors"
	"strings"
)

type EventType string

func (et EventType) String() string {
	return string(et)
}

// DomainEvent is the application supplied payload of an event. Payloads are
// immutable facts; they are never modified after an aggregate records them.
type DomainEvent any

func EventTypeOf(event DomainEvent) EventType {
	return EventType(NameOf(event))
}

type AggregateId struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

type EncodedAggregateId string

func (id AggregateId) Encode() EncodedAggregateId {
	return EncodedAggregateId(strings.Join([]string{id.Type, id.Key}, "."))
}

func (id EncodedAggregateId) String() string {
	return string(id)
}

func (id EncodedAggregateId) Decode() (*AggregateId, error) {
	seperated := strings.Split(string(id), ".")
	if len(seperated) < 2 {
		return nil, errors.New("expected . delimiter in aggregate id")
	}

	return &AggregateId{
		Type: seperated[0],
		Key:  strings.Join(seperated[1:], "."),
	}, nil
}

// Event is a captured domain event. The envelope is built once, during
// capture, and carries everything the dispatcher and its subscribers need.
type Event struct {
	AggregateId AggregateId `json:"aggregate"`
	EventType   EventType   `json:"type"`
	Timestamp   Timestamp   `json:"timestamp"`
	Payload     DomainEvent `json:"payload"`
}
