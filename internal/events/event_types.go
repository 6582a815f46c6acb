package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionRestored        EventType = "session.restored"
	EventSessionRestoreRejected EventType = "session.restore_rejected"
	EventSessionLogin           EventType = "session.login"
	EventSessionLoginRejected   EventType = "session.login_rejected"
	EventSessionLogout          EventType = "session.logout"
)

// Event represents a session transition.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id,omitempty"`
	Role      string    `json:"role,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent stamps a new event with an id and the current time.
func NewEvent(eventType EventType) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}
