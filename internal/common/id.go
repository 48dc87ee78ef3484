package common

import (
	"github.com/google/uuid"
)

// NewSessionID generates a unique autofill session ID with the "session_" prefix
// Format: session_<uuid>
func NewSessionID() string {
	return "session_" + uuid.New().String()
}

// NewEventID generates a unique event ID with the "evt_" prefix
func NewEventID() string {
	return "evt_" + uuid.New().String()
}
