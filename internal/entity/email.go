package entity

import (
	"time"

	"github.com/google/uuid"
)

// SendStatus is the delivery lifecycle state of an email.
type SendStatus string

const (
	SendStatusDraft  SendStatus = "draft"
	SendStatusSent   SendStatus = "sent"
	SendStatusFailed SendStatus = "failed"
)

// Valid reports whether the value is a known send status.
func (s SendStatus) Valid() bool {
	switch s {
	case SendStatusDraft, SendStatusSent, SendStatusFailed:
		return true
	}
	return false
}

// ResponseStatus tracks the recipient reply outcome, independent of delivery.
//
// The enum is four-state: "unsent" is the initial value for drafts,
// "no_response" means delivered with nothing back yet, and the send path flips
// unsent to no_response on successful delivery. This keeps no_response from
// doubling as "never sent".
type ResponseStatus string

const (
	ResponseStatusUnsent ResponseStatus = "unsent"
	ResponseStatusNone   ResponseStatus = "no_response"
	ResponseStatusGood   ResponseStatus = "good_response"
	ResponseStatusBad    ResponseStatus = "bad_response"
)

// Valid reports whether the value is a known response status.
func (s ResponseStatus) Valid() bool {
	switch s {
	case ResponseStatusUnsent, ResponseStatusNone, ResponseStatusGood, ResponseStatusBad:
		return true
	}
	return false
}

// Email is one outreach message tied to exactly one business.
type Email struct {
	ID             uuid.UUID      `json:"id"`
	BusinessID     uuid.UUID      `json:"business_id"`
	Subject        string         `json:"subject"`
	HTMLContent    string         `json:"html_content"`
	PersonalNotes  *string        `json:"personal_notes,omitempty"`
	SendStatus     SendStatus     `json:"send_status"`
	ResponseStatus ResponseStatus `json:"response_status"`
	SentAt         *time.Time     `json:"sent_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
