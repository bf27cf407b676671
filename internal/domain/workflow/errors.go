package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when a state transition is not allowed
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a state is not valid
	ErrInvalidState = errors.New("invalid state")

	// ErrGuardFailed is returned when a guard condition fails
	ErrGuardFailed = errors.New("guard condition failed")
)

// InvalidTransitionError describes a trigger that cannot fire from a state
type InvalidTransitionError struct {
	From    State
	Trigger Trigger
	Reason  string
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("%s: cannot fire %s from %s", ErrInvalidTransition, e.Trigger, e.From)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
