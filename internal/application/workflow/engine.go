package workflow

import (
	"context"

	"github.com/garyjia/procurement-hub/internal/domain/approval"
	"github.com/garyjia/procurement-hub/internal/domain/entity"
	domainwf "github.com/garyjia/procurement-hub/internal/domain/workflow"
)

// WorkflowEngine drives purchase requests through their lifecycle.
// Every status transition appends exactly one timeline event and is persisted in one transaction.
type WorkflowEngine interface {
	// Create persists a new draft and announces it
	Create(ctx context.Context, req *entity.Request) error

	// Fire applies a lifecycle trigger. RETURN creates a derived draft and returns it.
	Fire(ctx context.Context, id string, trigger domainwf.Trigger, actor, comment string) (*entity.Request, error)

	// DecideStep records an approver's decision on the active step and settles the overall status
	DecideStep(ctx context.Context, id string, step int, decision approval.Decision, actor, comment string) (*entity.Request, error)

	// ReturnForClarification leaves the rejected request in place and opens a new draft derived from it
	ReturnForClarification(ctx context.Context, id, actor, comment string) (original, draft *entity.Request, err error)

	// GetCurrentState returns the lifecycle state of a request
	GetCurrentState(ctx context.Context, id string) (domainwf.State, error)
}
