package events

import (
	"testing"
	"time"

	"github.com/ternarybob/pursuit/internal/common"
	"github.com/ternarybob/pursuit/internal/interfaces"
)

func TestPublishReachesTypedAndAllSubscribers(t *testing.T) {
	s := NewService(common.GetLogger())
	defer s.Close()

	var typed, all int
	s.Subscribe(interfaces.EventIngestStarted, func(e interfaces.Event) { typed++ })
	s.SubscribeAll(func(e interfaces.Event) { all++ })

	s.Publish(interfaces.Event{Type: interfaces.EventIngestStarted, Timestamp: time.Now()})
	s.Publish(interfaces.Event{Type: interfaces.EventIngestCompleted, Timestamp: time.Now()})

	if typed != 1 {
		t.Errorf("typed handler called %d times, want 1", typed)
	}
	if all != 2 {
		t.Errorf("all handler called %d times, want 2", all)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := NewService(common.GetLogger())
	defer s.Close()

	var calls int
	cancel := s.Subscribe(interfaces.EventJobStatusChanged, func(e interfaces.Event) { calls++ })
	s.Publish(interfaces.Event{Type: interfaces.EventJobStatusChanged})
	cancel()
	s.Publish(interfaces.Event{Type: interfaces.EventJobStatusChanged})

	if calls != 1 {
		t.Errorf("handler called %d times after unsubscribe, want 1", calls)
	}
}

func TestClosedServiceDropsEvents(t *testing.T) {
	s := NewService(common.GetLogger())

	var calls int
	s.SubscribeAll(func(e interfaces.Event) { calls++ })
	s.Close()
	s.Publish(interfaces.Event{Type: interfaces.EventIngestStarted})

	if calls != 0 {
		t.Errorf("closed bus delivered %d events, want 0", calls)
	}
}
