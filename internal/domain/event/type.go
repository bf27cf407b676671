package event

// Type identifies the type of domain event
type Type string

const (
	TypeRequestCreated   Type = "request.created"
	TypeRequestSubmitted Type = "request.submitted"
	TypeStepDecided      Type = "request.step_decided"
	TypeStatusChanged    Type = "request.status_changed"
	TypeRequestReturned  Type = "request.returned"
	TypeRequestCommented Type = "request.commented"
	TypeRequestDeleted   Type = "request.deleted"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeRequestCreated,
		TypeRequestSubmitted,
		TypeStepDecided,
		TypeStatusChanged,
		TypeRequestReturned,
		TypeRequestCommented,
		TypeRequestDeleted:
		return true
	default:
		return false
	}
}
