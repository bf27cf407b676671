package workflow

import (
	"context"

	"github.com/garyjia/procurement-hub/internal/domain/approval"
	"github.com/garyjia/procurement-hub/internal/domain/entity"
)

// NewRequestMachine builds the lifecycle machine positioned at the request's status.
// Guards read req, so the machine is only valid for the call that built it.
func NewRequestMachine(req *entity.Request) StateMachine {
	builder := NewBuilder()

	builder.Configure(StateDraft).
		PermitIf(TriggerSubmit, StatePending, func(ctx context.Context) error {
			return req.ValidateForSubmission()
		})

	builder.Configure(StatePending).
		PermitIf(TriggerApprove, StateApproved, func(ctx context.Context) error {
			if approval.Aggregate(req.Approvers) != entity.StatusApproved {
				return &InvalidTransitionError{
					From:    StatePending,
					Trigger: TriggerApprove,
					Reason:  "approval chain is not fully approved",
				}
			}
			return nil
		}).
		Permit(TriggerReject, StateRejected)

	builder.Configure(StateApproved).
		Permit(TriggerComplete, StateCompleted)

	// RETURN validates the move only; the engine leaves the rejected request
	// in place and creates a derived draft instead.
	builder.Configure(StateRejected).
		Permit(TriggerReturn, StateDraft)

	// COMPLETED has no outgoing transitions

	return builder.Build(State(req.Status))
}

// Validate reports the state trigger would move req into, without changing req
func Validate(ctx context.Context, req *entity.Request, trigger Trigger) (State, error) {
	machine := NewRequestMachine(req)
	if err := machine.Fire(ctx, trigger); err != nil {
		return "", err
	}
	return machine.State(), nil
}

// TriggerFor maps a requested target status onto the trigger that reaches it
func TriggerFor(target entity.Status) (Trigger, bool) {
	switch target {
	case entity.StatusPending:
		return TriggerSubmit, true
	case entity.StatusApproved:
		return TriggerApprove, true
	case entity.StatusRejected:
		return TriggerReject, true
	case entity.StatusCompleted:
		return TriggerComplete, true
	case entity.StatusDraft:
		return TriggerReturn, true
	default:
		return "", false
	}
}
