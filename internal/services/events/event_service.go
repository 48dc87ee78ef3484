package events

import (
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/pursuit/internal/interfaces"
)

type subscriber struct {
	id      int
	handler func(interfaces.Event)
}

// Service implements the in-process pub/sub bus. Handlers run on the
// publisher's goroutine and must not block; the websocket layer buffers on
// its own side.
type Service struct {
	mu     sync.RWMutex
	nextID int
	byType map[interfaces.EventType][]subscriber
	all    []subscriber
	closed bool
	logger arbor.ILogger
}

func NewService(logger arbor.ILogger) interfaces.EventService {
	return &Service{
		byType: make(map[interfaces.EventType][]subscriber),
		logger: logger,
	}
}

func (s *Service) Publish(event interfaces.Event) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return
	}
	handlers := make([]subscriber, 0, len(s.byType[event.Type])+len(s.all))
	handlers = append(handlers, s.byType[event.Type]...)
	handlers = append(handlers, s.all...)
	s.mu.RUnlock()

	s.logger.Debug().
		Str("event_type", string(event.Type)).
		Int("subscriber_count", len(handlers)).
		Msg("Publishing event")

	for _, sub := range handlers {
		sub.handler(event)
	}
}

func (s *Service) Subscribe(eventType interfaces.EventType, handler func(interfaces.Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.byType[eventType] = append(s.byType[eventType], subscriber{id: id, handler: handler})
	return func() { s.unsubscribe(eventType, id) }
}

func (s *Service) SubscribeAll(handler func(interfaces.Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.all = append(s.all, subscriber{id: id, handler: handler})
	return func() { s.unsubscribeAll(id) }
}

func (s *Service) unsubscribe(eventType interfaces.EventType, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := s.byType[eventType]
	for i, sub := range subs {
		if sub.id == id {
			s.byType[eventType] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (s *Service) unsubscribeAll(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.all {
		if sub.id == id {
			s.all = append(s.all[:i], s.all[i+1:]...)
			return
		}
	}
}

func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.byType = make(map[interfaces.EventType][]subscriber)
	s.all = nil
	return nil
}
