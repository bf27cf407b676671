package approval

import (
	"errors"
	"testing"
	"time"

	"github.com/garyjia/procurement-hub/internal/domain/entity"
)

func chain(statuses ...entity.StepStatus) []entity.ApprovalStep {
	steps := make([]entity.ApprovalStep, len(statuses))
	for i, s := range statuses {
		steps[i] = entity.ApprovalStep{ApproverName: "approver", Role: "role", Status: s}
	}
	return steps
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		steps    []entity.ApprovalStep
		expected entity.Status
	}{
		{"empty chain", nil, entity.StatusApproved},
		{"all approved", chain(entity.StepApproved, entity.StepApproved), entity.StatusApproved},
		{"first pending", chain(entity.StepPending, entity.StepWaiting), entity.StatusPending},
		{"waiting counts as pending", chain(entity.StepApproved, entity.StepWaiting), entity.StatusPending},
		{"rejected in middle", chain(entity.StepApproved, entity.StepRejected, entity.StepWaiting), entity.StatusRejected},
		{"first non-approved decides", chain(entity.StepPending, entity.StepRejected), entity.StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Aggregate(tt.steps); got != tt.expected {
				t.Errorf("Aggregate() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestActivate(t *testing.T) {
	decided := time.Now()
	steps := chain(entity.StepRejected, entity.StepApproved, entity.StepWaiting)
	steps[0].DecidedAt = &decided

	got := Activate(steps)

	if got[0].Status != entity.StepPending || got[0].DecidedAt != nil {
		t.Errorf("first step = %+v, want pending and undecided", got[0])
	}
	for i := 1; i < len(got); i++ {
		if got[i].Status != entity.StepWaiting {
			t.Errorf("step %d = %s, want waiting", i, got[i].Status)
		}
	}
	if steps[0].Status != entity.StepRejected {
		t.Error("Activate() modified its input")
	}
}

func TestDecide_ApproveActivatesNext(t *testing.T) {
	at := time.Date(2023, 6, 16, 10, 0, 0, 0, time.UTC)
	steps := Activate(chain(entity.StepWaiting, entity.StepWaiting, entity.StepWaiting))

	got, err := Decide(steps, 0, DecisionApprove, "", at)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	if got[0].Status != entity.StepApproved || got[0].DecidedAt == nil || !got[0].DecidedAt.Equal(at) {
		t.Errorf("step 0 = %+v", got[0])
	}
	if got[1].Status != entity.StepPending {
		t.Errorf("step 1 = %s, want pending", got[1].Status)
	}
	if got[2].Status != entity.StepWaiting {
		t.Errorf("step 2 = %s, want waiting", got[2].Status)
	}
	if steps[0].Status != entity.StepPending {
		t.Error("Decide() modified its input")
	}
}

func TestDecide_RejectionIsMonotonic(t *testing.T) {
	steps := Activate(chain(entity.StepWaiting, entity.StepWaiting, entity.StepWaiting))
	steps, err := Decide(steps, 0, DecisionApprove, "", time.Now())
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	steps, err = Decide(steps, 1, DecisionReject, "over budget", time.Now())
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	if Aggregate(steps) != entity.StatusRejected {
		t.Errorf("Aggregate() = %s, want rejected", Aggregate(steps))
	}
	if steps[2].Status != entity.StepWaiting {
		t.Errorf("step after rejection = %s, want waiting", steps[2].Status)
	}
	if _, ok := Active(steps); ok {
		t.Error("rejected chain still has an active step")
	}

	for i := range steps {
		for _, d := range []Decision{DecisionApprove, DecisionReject} {
			if _, err := Decide(steps, i, d, "", time.Now()); !errors.Is(err, ErrStepNotActive) {
				t.Errorf("Decide(%d, %s) error = %v, want ErrStepNotActive", i, d, err)
			}
		}
	}
}

func TestDecide_OutOfOrder(t *testing.T) {
	steps := Activate(chain(entity.StepWaiting, entity.StepWaiting))

	if _, err := Decide(steps, 1, DecisionApprove, "", time.Now()); !errors.Is(err, ErrStepNotActive) {
		t.Errorf("error = %v, want ErrStepNotActive", err)
	}
	if _, err := Decide(steps, 2, DecisionApprove, "", time.Now()); !errors.Is(err, ErrStepOutOfRange) {
		t.Errorf("error = %v, want ErrStepOutOfRange", err)
	}
	if _, err := Decide(steps, 0, Decision("maybe"), "", time.Now()); err == nil {
		t.Error("expected error for unknown decision")
	}
}

func TestDecide_FullChainApproves(t *testing.T) {
	steps := Activate(chain(entity.StepWaiting, entity.StepWaiting, entity.StepWaiting))
	var err error
	for i := range steps {
		if Aggregate(steps) != entity.StatusPending {
			t.Fatalf("before step %d aggregate = %s", i, Aggregate(steps))
		}
		steps, err = Decide(steps, i, DecisionApprove, "", time.Now())
		if err != nil {
			t.Fatalf("Decide(%d) error = %v", i, err)
		}
	}
	if Aggregate(steps) != entity.StatusApproved {
		t.Errorf("Aggregate() = %s, want approved", Aggregate(steps))
	}
}
