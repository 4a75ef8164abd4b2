package shopstream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingHandler struct {
	lk     sync.Mutex
	seen   []Event
	fail   error
	settle time.Duration
}

func (h *countingHandler) Handle(ctx context.Context, event Event) error {
	if h.settle > 0 {
		time.Sleep(h.settle)
	}

	h.lk.Lock()
	h.seen = append(h.seen, event)
	h.lk.Unlock()

	return h.fail
}

func (h *countingHandler) count() int {
	h.lk.Lock()
	defer h.lk.Unlock()
	return len(h.seen)
}

func makeEvents(count int) []Event {
	events := make([]Event, count)
	for i := range events {
		events[i] = Event{
			AggregateId: AggregateId{Type: "thing", Key: "1"},
			EventType:   "thing:happened",
			Timestamp:   TimestampFromTime(time.Now()),
			Payload:     somethingHappened{Sequence: i},
		}
	}

	return events
}

func TestPublishInvokesEveryHandlerOncePerEvent(t *testing.T) {
	dispatcher := NewDispatcher()

	first := &countingHandler{}
	second := &countingHandler{}
	dispatcher.Subscribe("thing:happened", first)
	dispatcher.Subscribe("thing:happened", second)

	err := dispatcher.Publish(context.Background(), makeEvents(5))

	assert.Nil(t, err)
	assert.Equal(t, 5, first.count())
	assert.Equal(t, 5, second.count())
}

func TestPublishSkipsEventsWithoutHandlers(t *testing.T) {
	dispatcher := NewDispatcher()

	handler := &countingHandler{}
	dispatcher.Subscribe("other:happened", handler)

	err := dispatcher.Publish(context.Background(), makeEvents(3))

	assert.Nil(t, err)
	assert.Equal(t, 0, handler.count())
}

func TestPublishEmptyIsNoop(t *testing.T) {
	dispatcher := NewDispatcher()

	err := dispatcher.Publish(context.Background(), nil)

	assert.Nil(t, err)
}

func TestPublishDeliversAnAggregatesEventsInOrder(t *testing.T) {
	dispatcher := NewDispatcher()

	handler := &countingHandler{}
	dispatcher.Subscribe("thing:happened", handler)

	err := dispatcher.Publish(context.Background(), makeEvents(6))

	assert.Nil(t, err)
	for i, event := range handler.seen {
		assert.Equal(t, i, event.Payload.(somethingHappened).Sequence)
	}
	assert.Equal(t, 6, handler.count())
}

func TestPublishKeepsInterleavedStreamsInPerAggregateOrder(t *testing.T) {
	dispatcher := NewDispatcher()

	handler := &countingHandler{}
	dispatcher.Subscribe("thing:happened", handler)

	var events []Event
	for i := 0; i < 4; i++ {
		for _, key := range []string{"1", "2"} {
			events = append(events, Event{
				AggregateId: AggregateId{Type: "thing", Key: key},
				EventType:   "thing:happened",
				Timestamp:   TimestampFromTime(time.Now()),
				Payload:     somethingHappened{Sequence: i},
			})
		}
	}

	err := dispatcher.Publish(context.Background(), events)

	assert.Nil(t, err)
	assert.Equal(t, 8, handler.count())

	sequences := map[string][]int{}
	for _, event := range handler.seen {
		sequences[event.AggregateId.Key] = append(sequences[event.AggregateId.Key], event.Payload.(somethingHappened).Sequence)
	}

	assert.Equal(t, []int{0, 1, 2, 3}, sequences["1"])
	assert.Equal(t, []int{0, 1, 2, 3}, sequences["2"])
}

func TestPublishContinuesPastAFailedEvent(t *testing.T) {
	dispatcher := NewDispatcher()

	boom := errors.New("projection unavailable")
	handler := &countingHandler{}
	dispatcher.Subscribe("thing:happened", handler)
	dispatcher.Subscribe("thing:happened", HandlerFunc(func(ctx context.Context, event Event) error {
		if event.Payload.(somethingHappened).Sequence == 0 {
			return boom
		}
		return nil
	}))

	err := dispatcher.Publish(context.Background(), makeEvents(3))

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, handler.count())
}

func TestPublishReportsFailureAfterAllHandlersSettle(t *testing.T) {
	dispatcher := NewDispatcher()

	boom := errors.New("projection unavailable")
	failing := &countingHandler{fail: boom}
	slow := &countingHandler{settle: 20 * time.Millisecond}
	dispatcher.Subscribe("thing:happened", failing)
	dispatcher.Subscribe("thing:happened", slow)

	err := dispatcher.Publish(context.Background(), makeEvents(4))

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 4, failing.count())
	assert.Equal(t, 4, slow.count())
}
