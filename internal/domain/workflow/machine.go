package workflow

import (
	"context"
	"fmt"
	"sort"
)

// StateMachine tracks the current state and validates transitions out of it
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if any transition is declared for trigger in the current state.
	// Guards are not evaluated.
	CanFire(trigger Trigger) bool

	// Fire moves to the first permitted target state for trigger
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers lists the triggers declared for the current state, sorted
	PermittedTriggers() []Trigger
}

type stateMachine struct {
	currentState   State
	configurations map[State]*stateConfig
}

func (m *stateMachine) State() State {
	return m.currentState
}

func (m *stateMachine) CanFire(trigger Trigger) bool {
	config, exists := m.configurations[m.currentState]
	if !exists {
		return false
	}
	return len(config.transitions[trigger]) > 0
}

func (m *stateMachine) Fire(ctx context.Context, trigger Trigger) error {
	if !m.currentState.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidState, m.currentState)
	}

	config, exists := m.configurations[m.currentState]
	if !exists || len(config.transitions[trigger]) == 0 {
		return &InvalidTransitionError{From: m.currentState, Trigger: trigger}
	}

	var lastErr error
	for _, t := range config.transitions[trigger] {
		if t.guard == nil {
			m.currentState = t.toState
			return nil
		}
		if err := t.guard(ctx); err != nil {
			lastErr = err
			continue
		}
		m.currentState = t.toState
		return nil
	}

	return fmt.Errorf("%w: %s from %s: %w", ErrGuardFailed, trigger, m.currentState, lastErr)
}

func (m *stateMachine) PermittedTriggers() []Trigger {
	config, exists := m.configurations[m.currentState]
	if !exists {
		return []Trigger{}
	}

	triggers := make([]Trigger, 0, len(config.transitions))
	for trigger := range config.transitions {
		triggers = append(triggers, trigger)
	}
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })
	return triggers
}
