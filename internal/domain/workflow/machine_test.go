package workflow

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateDraft, false},
		{StatePending, false},
		{StateApproved, false},
		{StateRejected, false},
		{StateCompleted, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"draft", StateDraft, true},
		{"completed", StateCompleted, true},
		{"uppercase", State("DRAFT"), false},
		{"empty", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_ConfigureReturnsSameConfiguration(t *testing.T) {
	builder := NewBuilder()

	first := builder.Configure(StateDraft)
	second := builder.Configure(StateDraft)

	if first != second {
		t.Error("Configure() returned a different configuration for the same state")
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Configure() did not panic on an invalid state")
		}
	}()
	NewBuilder().Configure(State("bogus"))
}

func TestStateConfiguration_PermitPanicsOnInvalidTarget(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Permit() did not panic on an invalid target")
		}
	}()
	NewBuilder().Configure(StateDraft).Permit(TriggerSubmit, State("bogus"))
}

func TestStateMachine_Fire(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateDraft).Permit(TriggerSubmit, StatePending)
	machine := builder.Build(StateDraft)

	if err := machine.Fire(context.Background(), TriggerSubmit); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if machine.State() != StatePending {
		t.Errorf("State() = %v, want %v", machine.State(), StatePending)
	}
}

func TestStateMachine_Fire_InvalidTransition(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateDraft).Permit(TriggerSubmit, StatePending)
	machine := builder.Build(StateDraft)

	err := machine.Fire(context.Background(), TriggerComplete)

	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Fire() error = %v, want ErrInvalidTransition", err)
	}
	var terr *InvalidTransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("Fire() error is not an InvalidTransitionError: %v", err)
	}
	if terr.From != StateDraft || terr.Trigger != TriggerComplete {
		t.Errorf("InvalidTransitionError = %+v", terr)
	}
	if machine.State() != StateDraft {
		t.Errorf("State() changed to %v after a failed fire", machine.State())
	}
}

func TestStateMachine_Fire_GuardFails(t *testing.T) {
	guardErr := errors.New("not ready")
	builder := NewBuilder()
	builder.Configure(StateDraft).PermitIf(TriggerSubmit, StatePending, func(ctx context.Context) error {
		return guardErr
	})
	machine := builder.Build(StateDraft)

	err := machine.Fire(context.Background(), TriggerSubmit)

	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() error = %v, want ErrGuardFailed", err)
	}
	if !errors.Is(err, guardErr) {
		t.Errorf("Fire() error = %v, want it to wrap the guard error", err)
	}
	if machine.State() != StateDraft {
		t.Errorf("State() = %v, want %v", machine.State(), StateDraft)
	}
}

func TestStateMachine_Fire_FirstPassingGuardWins(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).
		PermitIf(TriggerApprove, StateApproved, func(ctx context.Context) error { return errors.New("no") }).
		PermitIf(TriggerApprove, StateRejected, func(ctx context.Context) error { return nil })
	machine := builder.Build(StatePending)

	if err := machine.Fire(context.Background(), TriggerApprove); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if machine.State() != StateRejected {
		t.Errorf("State() = %v, want %v", machine.State(), StateRejected)
	}
}

func TestStateMachine_Fire_InvalidInitialState(t *testing.T) {
	machine := NewBuilder().Build(State("archived"))

	if err := machine.Fire(context.Background(), TriggerSubmit); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Fire() error = %v, want ErrInvalidState", err)
	}
}

func TestStateMachine_CanFireAndPermittedTriggers(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePending).
		Permit(TriggerReject, StateRejected).
		Permit(TriggerApprove, StateApproved)
	machine := builder.Build(StatePending)

	if !machine.CanFire(TriggerApprove) || machine.CanFire(TriggerSubmit) {
		t.Error("CanFire() reported wrong triggers")
	}

	want := []Trigger{TriggerApprove, TriggerReject}
	if got := machine.PermittedTriggers(); !reflect.DeepEqual(got, want) {
		t.Errorf("PermittedTriggers() = %v, want %v", got, want)
	}

	empty := NewBuilder().Build(StateCompleted)
	if got := empty.PermittedTriggers(); len(got) != 0 {
		t.Errorf("PermittedTriggers() = %v, want none", got)
	}
}

func TestStateMachine_BuildIsolatesLaterConfiguration(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateDraft).Permit(TriggerSubmit, StatePending)
	machine := builder.Build(StateDraft)

	builder.Configure(StateDraft).Permit(TriggerComplete, StateCompleted)

	if machine.CanFire(TriggerComplete) {
		t.Error("machine picked up configuration added after Build()")
	}
}
