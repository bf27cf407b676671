package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SystemActor is recorded on events the service produces on its own
const SystemActor = "System"

// Timeline actions
const (
	ActionCreated         = "Created request"
	ActionSubmitted       = "Submitted for approval"
	ActionApproved        = "Request approved"
	ActionRejected        = "Request rejected"
	ActionCompleted       = "Marked as completed"
	ActionReturned        = "Returned for clarification"
	ActionCreatedFromPrev = "Created from returned request"
	ActionStepApproved    = "Approved"
	ActionStepRejected    = "Rejected"
	ActionCommented       = "Commented"
)

// TimelineEvent is an immutable entry of a request's history
type TimelineEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Comment   *string   `json:"comment"`
}

// NewTimelineEvent creates an event. A blank comment is stored as nil and a blank actor as SystemActor.
func NewTimelineEvent(at time.Time, actor, action, comment string) TimelineEvent {
	evt := TimelineEvent{
		ID:        uuid.NewString(),
		Timestamp: at.UTC(),
		Actor:     strings.TrimSpace(actor),
		Action:    action,
	}
	if evt.Actor == "" {
		evt.Actor = SystemActor
	}
	if c := strings.TrimSpace(comment); c != "" {
		evt.Comment = &c
	}
	return evt
}

// Equal compares two events field by field
func (e TimelineEvent) Equal(other TimelineEvent) bool {
	if e.ID != other.ID || e.Actor != other.Actor || e.Action != other.Action {
		return false
	}
	if !e.Timestamp.Equal(other.Timestamp) {
		return false
	}
	switch {
	case e.Comment == nil && other.Comment == nil:
		return true
	case e.Comment == nil || other.Comment == nil:
		return false
	default:
		return *e.Comment == *other.Comment
	}
}
