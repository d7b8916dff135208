package event

import (
	"time"

	"github.com/google/uuid"
)

// NoIndex marks events that do not refer to a product line
const NoIndex = -1

// Event describes one committed change to the invoice record
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Field     string    `json:"field,omitempty"`
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates a change event with auto-generated ID and timestamp
func NewEvent(eventType Type) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Index:     NoIndex,
		Timestamp: time.Now(),
	}
}

// NewFieldEvent creates an event for an edit of a single record field
func NewFieldEvent(field string) *Event {
	e := NewEvent(TypeFieldChanged)
	e.Field = field
	return e
}

// NewLineEvent creates an event for a change to the product line at index
func NewLineEvent(eventType Type, index int, field string) *Event {
	e := NewEvent(eventType)
	e.Index = index
	e.Field = field
	return e
}
