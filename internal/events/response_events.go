package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of events published by the form service
type EventType string

const (
	// Response events
	EventResponseSubmitted EventType = "response.submitted"
	EventResponseFailed    EventType = "response.failed"

	// Form events
	EventFormCreated       EventType = "form.created"
	EventFormAccessChanged EventType = "form.access_changed"
	EventFormDeleted       EventType = "form.deleted"
)

const (
	DefaultSource  = "form-service"
	DefaultVersion = "1.0"
)

// Event is the envelope for every published event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewEvent wraps data in an envelope with a fresh id and timestamp
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    DefaultSource,
		Version:   DefaultVersion,
		Data:      data,
	}
}

// Response event payloads

type ResponseSubmittedEvent struct {
	FormID       string    `json:"form_id"`
	ResponseID   string    `json:"response_id"`
	RespondentID string    `json:"respondent_id,omitempty"`
	AnswerCount  int       `json:"answer_count"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

type ResponseFailedEvent struct {
	FormID      string `json:"form_id"`
	AnswerCount int    `json:"answer_count"`
	Error       string `json:"error"`
}

// Form event payloads

type FormCreatedEvent struct {
	FormID        string `json:"form_id"`
	OwnerID       string `json:"owner_id"`
	Title         string `json:"title"`
	QuestionCount int    `json:"question_count"`
}

type FormAccessChangedEvent struct {
	FormID  string `json:"form_id"`
	OwnerID string `json:"owner_id"`
	Access  string `json:"access"`
}

type FormDeletedEvent struct {
	FormID  string `json:"form_id"`
	OwnerID string `json:"owner_id"`
}
