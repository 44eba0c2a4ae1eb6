package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType tags an analytics event row.
type EventType string

const (
	EventSent    EventType = "sent"
	EventOpened  EventType = "opened"
	EventClicked EventType = "clicked"
	EventReplied EventType = "replied"
)

// Valid reports whether the value is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventSent, EventOpened, EventClicked, EventReplied:
		return true
	}
	return false
}

// AnalyticsEvent is an append-only row recording something that happened to an
// email. Events are never mutated or deleted; they feed aggregate rollups only.
type AnalyticsEvent struct {
	ID        uuid.UUID       `json:"id"`
	EmailID   uuid.UUID       `json:"email_id"`
	EventType EventType       `json:"event_type"`
	EventData json.RawMessage `json:"event_data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
