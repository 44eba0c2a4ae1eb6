package dto

import "encoding/json"

// EmailRequest is the payload for creating a draft email. When TemplateID is
// set, HTMLContent is treated as generated text and rendered into that
// template's shell.
type EmailRequest struct {
	BusinessID    string `json:"businessId"`
	Subject       string `json:"subject"`
	HTMLContent   string `json:"htmlContent"`
	PersonalNotes string `json:"personalNotes,omitempty"`
	TemplateID    string `json:"templateId,omitempty"`
}

// EmailStatusPatch updates the reply outcome of an email.
type EmailStatusPatch struct {
	ResponseStatus string `json:"responseStatus"`
}

// SendRequest carries optional overrides for the send path.
type SendRequest struct {
	Recipient string `json:"recipient,omitempty"`
}

// NoteRequest is the payload for creating or updating a note.
type NoteRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
}

// EventRequest appends an analytics event to an email.
type EventRequest struct {
	EventType string          `json:"eventType"`
	EventData json.RawMessage `json:"eventData,omitempty"`
}
