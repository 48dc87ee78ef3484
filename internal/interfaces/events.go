package interfaces

import "time"

// EventType identifies a published event
type EventType string

const (
	EventIngestStarted     EventType = "ingest_started"
	EventIngestCompany     EventType = "ingest_company"
	EventIngestCompleted   EventType = "ingest_completed"
	EventSweeperFlagged    EventType = "sweeper_flagged"
	EventJobStatusChanged  EventType = "job_status_changed"
	EventAutofillStarted   EventType = "autofill_started"
	EventAutofillProgress  EventType = "autofill_progress"
	EventAutofillCompleted EventType = "autofill_completed"
)

// Event is one published message on the in-process bus
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// EventService is a lightweight in-process pub/sub bus. Handlers run on the
// publisher's goroutine; they must not block.
type EventService interface {
	Publish(event Event)
	Subscribe(eventType EventType, handler func(Event)) func()
	SubscribeAll(handler func(Event)) func()
	Close() error
}
