// Package approval folds an ordered approval chain into an overall status
// and enforces the order in which approvers may act.
package approval

import (
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/procurement-hub/internal/domain/entity"
)

var (
	// ErrStepOutOfRange is returned when a step index does not exist
	ErrStepOutOfRange = errors.New("approval step out of range")

	// ErrStepNotActive is returned when deciding a step that is not awaiting a decision
	ErrStepNotActive = errors.New("approval step is not awaiting a decision")
)

// Decision is an approver's verdict on the active step
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// IsValid returns true for a known decision
func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// Aggregate derives the overall status of a chain.
// The first step that is not approved decides; an all-approved chain is approved.
func Aggregate(steps []entity.ApprovalStep) entity.Status {
	for _, step := range steps {
		switch step.Status {
		case entity.StepApproved:
			continue
		case entity.StepRejected:
			return entity.StatusRejected
		default:
			return entity.StatusPending
		}
	}
	return entity.StatusApproved
}

// Active returns the index of the step awaiting a decision
func Active(steps []entity.ApprovalStep) (int, bool) {
	for i, step := range steps {
		if step.Status == entity.StepPending {
			return i, true
		}
	}
	return -1, false
}

// Activate resets the chain for a fresh submission: the first step becomes
// pending and every later step waits.
func Activate(steps []entity.ApprovalStep) []entity.ApprovalStep {
	out := make([]entity.ApprovalStep, len(steps))
	for i, step := range steps {
		step.DecidedAt = nil
		step.Comment = ""
		step.Status = entity.StepWaiting
		if i == 0 {
			step.Status = entity.StepPending
		}
		out[i] = step
	}
	return out
}

// Decide applies a decision to the step at index and returns the updated chain.
// The input slice is not modified. Approving activates the next step; rejecting
// leaves every later step waiting.
func Decide(steps []entity.ApprovalStep, index int, decision Decision, comment string, at time.Time) ([]entity.ApprovalStep, error) {
	if !decision.IsValid() {
		return nil, fmt.Errorf("unknown decision %q", decision)
	}
	if index < 0 || index >= len(steps) {
		return nil, fmt.Errorf("%w: step %d of %d", ErrStepOutOfRange, index, len(steps))
	}
	if steps[index].Status != entity.StepPending {
		return nil, fmt.Errorf("%w: step %d is %s", ErrStepNotActive, index, steps[index].Status)
	}

	out := append([]entity.ApprovalStep(nil), steps...)
	decidedAt := at.UTC()
	out[index].DecidedAt = &decidedAt
	out[index].Comment = comment

	switch decision {
	case DecisionApprove:
		out[index].Status = entity.StepApproved
		if next := index + 1; next < len(out) && out[next].Status == entity.StepWaiting {
			out[next].Status = entity.StepPending
		}
	case DecisionReject:
		out[index].Status = entity.StepRejected
	}

	return out, nil
}
