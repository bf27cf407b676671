package event

import (
	"time"

	"github.com/google/uuid"
)

// Payload keys shared by producers and subscribers
const (
	KeyActor          = "actor"
	KeyPreviousStatus = "previous_status"
	KeyNewStatus      = "new_status"
	KeyTrigger        = "trigger"
	KeyStep           = "step"
	KeyDecision       = "decision"
	KeyDerivedID      = "derived_id"
)

// Event is a notification that something happened to a purchase request
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	RequestID     string                 `json:"request_id"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// NewEvent creates an event with a fresh id that starts its own correlation chain
func NewEvent(eventType Type, requestID string, payload map[string]interface{}) *Event {
	id := uuid.NewString()
	return &Event{
		ID:            id,
		Type:          eventType,
		RequestID:     requestID,
		Payload:       payload,
		Timestamp:     time.Now().UTC(),
		CorrelationID: id,
	}
}

// Follow creates an event that shares the correlation chain of e
func (e *Event) Follow(eventType Type, requestID string, payload map[string]interface{}) *Event {
	next := NewEvent(eventType, requestID, payload)
	next.CorrelationID = e.CorrelationID
	return next
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// GetPayloadInt retrieves an integer value from the payload
func (e *Event) GetPayloadInt(key string) int64 {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case int64:
			return v
		case int:
			return int64(v)
		case float64:
			return int64(v)
		}
	}
	return 0
}
