package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/procurement-hub/internal/application/dispatcher"
	"github.com/garyjia/procurement-hub/internal/application/port"
	"github.com/garyjia/procurement-hub/internal/domain/approval"
	"github.com/garyjia/procurement-hub/internal/domain/entity"
	"github.com/garyjia/procurement-hub/internal/domain/event"
	domainwf "github.com/garyjia/procurement-hub/internal/domain/workflow"
)

type engineImpl struct {
	repo       port.RequestRepository
	txManager  port.TransactionManager
	dispatcher dispatcher.Dispatcher
	now        func() time.Time
}

// EngineOption configures the workflow engine
type EngineOption func(*engineImpl)

// WithDispatcher sets the event dispatcher for emitting events
func WithDispatcher(d dispatcher.Dispatcher) EngineOption {
	return func(e *engineImpl) {
		e.dispatcher = d
	}
}

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) EngineOption {
	return func(e *engineImpl) {
		e.now = now
	}
}

// NewEngine creates a new workflow engine
func NewEngine(repo port.RequestRepository, txManager port.TransactionManager, opts ...EngineOption) WorkflowEngine {
	e := &engineImpl{
		repo:      repo,
		txManager: txManager,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// statusChange is a committed transition, announced after the transaction
type statusChange struct {
	from    domainwf.State
	to      domainwf.State
	trigger domainwf.Trigger
	actor   string
}

func (e *engineImpl) Create(ctx context.Context, req *entity.Request) error {
	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := e.repo.Create(txCtx, req); err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.emit(ctx, event.NewEvent(event.TypeRequestCreated, req.ID, map[string]interface{}{
		event.KeyActor:     lastActor(req),
		event.KeyNewStatus: req.Status.String(),
	}))
	return nil
}

func (e *engineImpl) Fire(ctx context.Context, id string, trigger domainwf.Trigger, actor, comment string) (*entity.Request, error) {
	if trigger == domainwf.TriggerReturn {
		_, draft, err := e.ReturnForClarification(ctx, id, actor, comment)
		return draft, err
	}

	var (
		result  *entity.Request
		changes []statusChange
	)
	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := e.load(txCtx, id)
		if err != nil {
			return err
		}
		now := e.now()

		change, err := e.transition(txCtx, req, trigger, actor, comment, now)
		if err != nil {
			return err
		}
		changes = append(changes, change)

		switch trigger {
		case domainwf.TriggerSubmit:
			req.Approvers = approval.Activate(req.Approvers)
			// an empty chain has nobody left to ask
			if approval.Aggregate(req.Approvers) == entity.StatusApproved {
				change, err := e.transition(txCtx, req, domainwf.TriggerApprove, entity.SystemActor, "", now)
				if err != nil {
					return err
				}
				changes = append(changes, change)
			}
		case domainwf.TriggerReject:
			// an override closes the active step so the chain agrees with the status
			if idx, ok := approval.Active(req.Approvers); ok {
				steps, err := approval.Decide(req.Approvers, idx, approval.DecisionReject, comment, now)
				if err != nil {
					return err
				}
				req.Approvers = steps
			}
		}

		if err := e.repo.Update(txCtx, req); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.announce(ctx, id, changes)
	return result, nil
}

func (e *engineImpl) DecideStep(ctx context.Context, id string, step int, decision approval.Decision, actor, comment string) (*entity.Request, error) {
	trigger := domainwf.TriggerApprove
	action := entity.ActionStepApproved
	if decision == approval.DecisionReject {
		trigger = domainwf.TriggerReject
		action = entity.ActionStepRejected
	}

	var (
		result  *entity.Request
		changes []statusChange
		decider string
	)
	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := e.load(txCtx, id)
		if err != nil {
			return err
		}
		if req.Status != entity.StatusPending {
			return &domainwf.InvalidTransitionError{
				From:    domainwf.State(req.Status),
				Trigger: trigger,
				Reason:  "request is not awaiting approval",
			}
		}

		now := e.now()
		steps, err := approval.Decide(req.Approvers, step, decision, comment, now)
		switch {
		case errors.Is(err, approval.ErrStepOutOfRange):
			return entity.NewValidationError("step", err.Error())
		case errors.Is(err, approval.ErrStepNotActive):
			return &domainwf.InvalidTransitionError{From: domainwf.StatePending, Trigger: trigger, Reason: err.Error()}
		case err != nil:
			return entity.NewValidationError("decision", err.Error())
		}
		req.Approvers = steps

		decider = strings.TrimSpace(actor)
		if decider == "" {
			decider = steps[step].ApproverName
		}
		req.AppendEvent(entity.NewTimelineEvent(now, decider, action, comment))
		req.UpdatedAt = now.UTC()

		switch approval.Aggregate(steps) {
		case entity.StatusApproved:
			change, err := e.transition(txCtx, req, domainwf.TriggerApprove, entity.SystemActor, "", now)
			if err != nil {
				return err
			}
			changes = append(changes, change)
		case entity.StatusRejected:
			change, err := e.transition(txCtx, req, domainwf.TriggerReject, entity.SystemActor, "", now)
			if err != nil {
				return err
			}
			changes = append(changes, change)
		}

		if err := e.repo.Update(txCtx, req); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, event.NewEvent(event.TypeStepDecided, id, map[string]interface{}{
		event.KeyActor:    decider,
		event.KeyStep:     step,
		event.KeyDecision: string(decision),
	}))
	e.announce(ctx, id, changes)
	return result, nil
}

func (e *engineImpl) ReturnForClarification(ctx context.Context, id, actor, comment string) (*entity.Request, *entity.Request, error) {
	var original, draft *entity.Request
	err := e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := e.load(txCtx, id)
		if err != nil {
			return err
		}
		if _, err := domainwf.Validate(txCtx, req, domainwf.TriggerReturn); err != nil {
			return err
		}

		now := e.now()
		derivedActor := strings.TrimSpace(actor)
		if derivedActor == "" {
			derivedActor = req.Requester
		}
		d := req.DeriveDraft(derivedActor, now)
		if err := e.repo.Create(txCtx, d); err != nil {
			return fmt.Errorf("failed to create derived draft: %w", err)
		}

		note := "Continued as " + d.ID
		if c := strings.TrimSpace(comment); c != "" {
			note = c + " (continued as " + d.ID + ")"
		}
		req.AppendEvent(entity.NewTimelineEvent(now, actor, domainwf.TriggerReturn.Action(), note))
		req.UpdatedAt = now.UTC()
		if err := e.repo.Update(txCtx, req); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}

		original, draft = req, d
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	returned := event.NewEvent(event.TypeRequestReturned, id, map[string]interface{}{
		event.KeyActor:     lastActor(original),
		event.KeyDerivedID: draft.ID,
	})
	e.emit(ctx, returned)
	e.emit(ctx, returned.Follow(event.TypeRequestCreated, draft.ID, map[string]interface{}{
		event.KeyActor:     lastActor(draft),
		event.KeyNewStatus: draft.Status.String(),
	}))
	return original, draft, nil
}

func (e *engineImpl) GetCurrentState(ctx context.Context, id string) (domainwf.State, error) {
	req, err := e.load(ctx, id)
	if err != nil {
		return "", err
	}
	return domainwf.State(req.Status), nil
}

// transition fires trigger on a machine built for req and records the result on req
func (e *engineImpl) transition(ctx context.Context, req *entity.Request, trigger domainwf.Trigger, actor, comment string, now time.Time) (statusChange, error) {
	machine := domainwf.NewRequestMachine(req)
	from := machine.State()
	if err := machine.Fire(ctx, trigger); err != nil {
		return statusChange{}, err
	}

	evt := entity.NewTimelineEvent(now, actor, trigger.Action(), comment)
	req.Status = machine.State().Status()
	req.UpdatedAt = now.UTC()
	req.AppendEvent(evt)

	return statusChange{from: from, to: machine.State(), trigger: trigger, actor: evt.Actor}, nil
}

func (e *engineImpl) load(ctx context.Context, id string) (*entity.Request, error) {
	req, err := e.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch request: %w", err)
	}
	if req == nil {
		return nil, fmt.Errorf("%w: %s", port.ErrRequestNotFound, id)
	}
	return req, nil
}

func (e *engineImpl) announce(ctx context.Context, id string, changes []statusChange) {
	for _, c := range changes {
		payload := map[string]interface{}{
			event.KeyActor:          c.actor,
			event.KeyPreviousStatus: c.from.String(),
			event.KeyNewStatus:      c.to.String(),
			event.KeyTrigger:        c.trigger.String(),
		}
		if c.trigger == domainwf.TriggerSubmit {
			e.emit(ctx, event.NewEvent(event.TypeRequestSubmitted, id, payload))
		}
		e.emit(ctx, event.NewEvent(event.TypeStatusChanged, id, payload))
	}
}

// emit dispatches evt once the caller's enclosing transaction, if any, commits
func (e *engineImpl) emit(ctx context.Context, evt *event.Event) {
	if e.dispatcher == nil {
		return
	}
	port.AfterCommit(ctx, func(ctx context.Context) {
		e.dispatcher.DispatchAsync(ctx, evt)
	})
}

func lastActor(req *entity.Request) string {
	if len(req.Timeline) == 0 {
		return entity.SystemActor
	}
	return req.Timeline[len(req.Timeline)-1].Actor
}
