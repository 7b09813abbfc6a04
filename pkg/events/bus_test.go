package events

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscribers(t *testing.T) {
	bus := NewEventBus()

	received := make(chan Event, 1)
	bus.Subscribe(EventCallEnded, func(event Event) error {
		received <- event
		return nil
	})

	bus.Publish(Event{
		Type:   EventCallEnded,
		Source: "test",
		Data:   map[string]interface{}{"sessionId": "call-1"},
	})

	select {
	case event := <-received:
		assert.Equal(t, "call-1", event.Data["sessionId"])
		assert.False(t, event.Timestamp.IsZero(), "publish stamps a missing timestamp")
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestWildcardSubscription(t *testing.T) {
	bus := NewEventBus()

	var mu sync.Mutex
	var seen []string
	done := make(chan struct{}, 2)
	bus.Subscribe("*", func(event Event) error {
		mu.Lock()
		seen = append(seen, event.Type)
		mu.Unlock()
		done <- struct{}{}
		return nil
	})

	bus.Publish(Event{Type: EventCallStarted})
	bus.Publish(Event{Type: EventCallEnded})

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("wildcard handler missed an event")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{EventCallStarted, EventCallEnded}, seen)
}

func TestUnsubscribeRemovesHandlers(t *testing.T) {
	bus := NewEventBus()

	invoked := make(chan struct{}, 1)
	bus.Subscribe(EventCallLogged, func(Event) error {
		invoked <- struct{}{}
		return nil
	})
	bus.Unsubscribe(EventCallLogged)

	bus.Publish(Event{Type: EventCallLogged})
	select {
	case <-invoked:
		t.Fatal("handler fired after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandlerErrorDoesNotBlockOthers(t *testing.T) {
	bus := NewEventBus()

	bus.Subscribe(EventCallEnded, func(Event) error {
		return errors.New("delivery failed")
	})
	ok := make(chan struct{}, 1)
	bus.Subscribe(EventCallEnded, func(Event) error {
		ok <- struct{}{}
		return nil
	})

	bus.Publish(Event{Type: EventCallEnded})
	select {
	case <-ok:
	case <-time.After(time.Second):
		t.Fatal("second handler was not invoked")
	}
}

func TestGetEventBusSingleton(t *testing.T) {
	require.Same(t, GetEventBus(), GetEventBus())
}
