package workflow

import "github.com/garyjia/procurement-hub/internal/domain/entity"

// State is a node of the purchase request lifecycle
type State string

const (
	StateDraft     State = State(entity.StatusDraft)
	StatePending   State = State(entity.StatusPending)
	StateApproved  State = State(entity.StatusApproved)
	StateRejected  State = State(entity.StatusRejected)
	StateCompleted State = State(entity.StatusCompleted)
)

var validStates = map[State]bool{
	StateDraft:     true,
	StatePending:   true,
	StateApproved:  true,
	StateRejected:  true,
	StateCompleted: true,
}

// A rejected request can still be returned for clarification, so only completed is final.
var terminalStates = map[State]bool{
	StateCompleted: true,
}

// IsTerminal returns true if no transition leaves the state
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is part of the lifecycle
func (s State) IsValid() bool {
	return validStates[s]
}

// Status converts the state to the entity status it mirrors
func (s State) Status() entity.Status {
	return entity.Status(s)
}
