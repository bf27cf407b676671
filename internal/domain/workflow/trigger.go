package workflow

import "github.com/garyjia/procurement-hub/internal/domain/entity"

// Trigger is an action that moves a request between states
type Trigger string

const (
	TriggerSubmit   Trigger = "SUBMIT"
	TriggerApprove  Trigger = "APPROVE"
	TriggerReject   Trigger = "REJECT"
	TriggerComplete Trigger = "COMPLETE"
	TriggerReturn   Trigger = "RETURN"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}

// Action is the timeline wording recorded when the trigger fires
func (t Trigger) Action() string {
	switch t {
	case TriggerSubmit:
		return entity.ActionSubmitted
	case TriggerApprove:
		return entity.ActionApproved
	case TriggerReject:
		return entity.ActionRejected
	case TriggerComplete:
		return entity.ActionCompleted
	case TriggerReturn:
		return entity.ActionReturned
	default:
		return string(t)
	}
}
