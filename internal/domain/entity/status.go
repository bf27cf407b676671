package entity

// Status is the lifecycle status of a purchase request
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// Statuses lists every request status in lifecycle order
var Statuses = []Status{
	StatusDraft,
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusCompleted,
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is one of the lifecycle statuses
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	default:
		return false
	}
}

// StepStatus is the status of a single approval step
type StepStatus string

const (
	StepWaiting  StepStatus = "waiting"
	StepPending  StepStatus = "pending"
	StepApproved StepStatus = "approved"
	StepRejected StepStatus = "rejected"
)

// String returns the string representation of the step status
func (s StepStatus) String() string {
	return string(s)
}

// IsValid returns true if the step status is known
func (s StepStatus) IsValid() bool {
	switch s {
	case StepWaiting, StepPending, StepApproved, StepRejected:
		return true
	default:
		return false
	}
}

// IsDecided reports whether an approver has acted on the step
func (s StepStatus) IsDecided() bool {
	return s == StepApproved || s == StepRejected
}

// Badge is the display descriptor for a status
type Badge struct {
	Label string `json:"label"`
	Tone  string `json:"tone"`
	Icon  string `json:"icon"`
}

// Badge returns the display badge for the request status
func (s Status) Badge() Badge {
	switch s {
	case StatusDraft:
		return Badge{Label: "Draft", Tone: "neutral", Icon: "file-edit"}
	case StatusPending:
		return Badge{Label: "Pending", Tone: "warning", Icon: "clock"}
	case StatusApproved:
		return Badge{Label: "Approved", Tone: "success", Icon: "check-circle"}
	case StatusRejected:
		return Badge{Label: "Rejected", Tone: "danger", Icon: "x-circle"}
	case StatusCompleted:
		return Badge{Label: "Completed", Tone: "info", Icon: "package-check"}
	default:
		return Badge{Label: "Unknown", Tone: "neutral", Icon: "help-circle"}
	}
}

// Badge returns the display badge for the step status
func (s StepStatus) Badge() Badge {
	switch s {
	case StepWaiting:
		return Badge{Label: "Waiting", Tone: "neutral", Icon: "hourglass"}
	case StepPending:
		return Badge{Label: "Pending", Tone: "warning", Icon: "clock"}
	case StepApproved:
		return Badge{Label: "Approved", Tone: "success", Icon: "check-circle"}
	case StepRejected:
		return Badge{Label: "Rejected", Tone: "danger", Icon: "x-circle"}
	default:
		return Badge{Label: "Unknown", Tone: "neutral", Icon: "help-circle"}
	}
}
