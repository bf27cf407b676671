package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/procurement-hub/internal/application/port"
	"github.com/garyjia/procurement-hub/internal/application/workflow"
	"github.com/garyjia/procurement-hub/internal/domain/approval"
	"github.com/garyjia/procurement-hub/internal/domain/entity"
	"github.com/garyjia/procurement-hub/internal/domain/filter"
	domainwf "github.com/garyjia/procurement-hub/internal/domain/workflow"
)

// Page size limits for request listings
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// CreateRequestInput carries a new draft
type CreateRequestInput struct {
	Metadata       entity.Metadata
	Items          []entity.LineItem
	Actor          string
	IdempotencyKey string
}

// CreateResult is the outcome of a create call
type CreateResult struct {
	Request *entity.Request
	// Replayed is set when the idempotency key matched an earlier create
	Replayed bool
}

// UpdateRequestInput carries a partial update. A status change cannot be combined with edits.
type UpdateRequestInput struct {
	Patch   entity.MetadataPatch
	Items   *[]entity.LineItem
	Status  *entity.Status
	Actor   string
	Comment string
}

// ListRequestsInput selects one page of requests
type ListRequestsInput struct {
	Query filter.Query
	Page  int
	Limit int
}

// RequestPage is one page of a filtered listing
type RequestPage struct {
	Data  []*entity.Request
	Total int
	Page  int
	Limit int
	Pages int
}

// RequestService manages purchase requests
type RequestService interface {
	Create(ctx context.Context, in CreateRequestInput) (*CreateResult, error)
	Get(ctx context.Context, id string) (*entity.Request, error)
	List(ctx context.Context, in ListRequestsInput) (*RequestPage, error)
	// Filter returns every request matching q, newest first
	Filter(ctx context.Context, q filter.Query) ([]*entity.Request, error)
	Update(ctx context.Context, id string, in UpdateRequestInput) (*entity.Request, error)
	Delete(ctx context.Context, id string) error

	AddItem(ctx context.Context, id string, item entity.LineItem) (*entity.Request, error)
	RemoveItem(ctx context.Context, id string, index int) (*entity.Request, error)
	Comment(ctx context.Context, id, actor, comment string) (*entity.Request, error)

	Transition(ctx context.Context, id string, trigger domainwf.Trigger, actor, comment string) (*entity.Request, error)
	DecideStep(ctx context.Context, id string, step int, decision approval.Decision, actor, comment string) (*entity.Request, error)
	// Return opens a new draft from a rejected request and returns the draft
	Return(ctx context.Context, id, actor, comment string) (*entity.Request, error)
}

type requestServiceImpl struct {
	repo        port.RequestRepository
	idempotency port.IdempotencyRepository
	engine      workflow.WorkflowEngine
	txManager   port.TransactionManager
	chain       ChainResolver
	logger      Logger
	now         func() time.Time

	orders       port.PurchaseOrderRepository
	negotiations port.NegotiationRepository
}

// RequestServiceOption configures the request service
type RequestServiceOption func(*requestServiceImpl)

// WithRequestClock overrides the time source
func WithRequestClock(now func() time.Time) RequestServiceOption {
	return func(s *requestServiceImpl) {
		s.now = now
	}
}

// WithPurchaseOrders issues a purchase order whenever a request is completed.
// The supplier comes from the request's negotiations; negotiations may be nil.
func WithPurchaseOrders(orders port.PurchaseOrderRepository, negotiations port.NegotiationRepository) RequestServiceOption {
	return func(s *requestServiceImpl) {
		s.orders = orders
		s.negotiations = negotiations
	}
}

// NewRequestService creates a new RequestService
func NewRequestService(
	repo port.RequestRepository,
	idempotency port.IdempotencyRepository,
	engine workflow.WorkflowEngine,
	txManager port.TransactionManager,
	chain ChainResolver,
	logger Logger,
	opts ...RequestServiceOption,
) RequestService {
	s := &requestServiceImpl{
		repo:        repo,
		idempotency: idempotency,
		engine:      engine,
		txManager:   txManager,
		chain:       chain,
		logger:      loggerOrNop(logger),
		now:         time.Now,
	}
	if s.chain == nil {
		s.chain = StaticChain(nil)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new draft. A known idempotency key replays the original result.
func (s *requestServiceImpl) Create(ctx context.Context, in CreateRequestInput) (*CreateResult, error) {
	key := strings.TrimSpace(in.IdempotencyKey)
	hash, err := bodyHash(in.Metadata, in.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to hash request body: %w", err)
	}

	var result *CreateResult
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if key != "" && s.idempotency != nil {
			rec, err := s.idempotency.Get(txCtx, key)
			if err != nil {
				return fmt.Errorf("failed to look up idempotency key: %w", err)
			}
			if rec != nil {
				if rec.RequestHash != hash {
					return fmt.Errorf("%w: %s", port.ErrIdempotencyConflict, key)
				}
				req, err := s.load(txCtx, rec.RequestID)
				if err != nil {
					return err
				}
				result = &CreateResult{Request: req, Replayed: true}
				return nil
			}
		}

		req, err := entity.NewRequest(in.Metadata, in.Items, s.chain(entity.NormalizeDepartment(in.Metadata.Department)), in.Actor, s.now())
		if err != nil {
			return err
		}
		if err := s.engine.Create(txCtx, req); err != nil {
			return err
		}

		if key != "" && s.idempotency != nil {
			if err := s.idempotency.Save(txCtx, &port.IdempotencyRecord{
				Key:         key,
				RequestHash: hash,
				RequestID:   req.ID,
				CreatedAt:   s.now().UTC(),
			}); err != nil {
				return fmt.Errorf("failed to save idempotency key: %w", err)
			}
		}

		result = &CreateResult{Request: req}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Replayed {
		s.logger.Info("Replayed request creation", "request_id", result.Request.ID, "idempotency_key", key)
	} else {
		s.logger.Info("Request created", "request_id", result.Request.ID, "requester", result.Request.Requester)
	}
	return result, nil
}

func (s *requestServiceImpl) Get(ctx context.Context, id string) (*entity.Request, error) {
	return s.load(ctx, id)
}

func (s *requestServiceImpl) List(ctx context.Context, in ListRequestsInput) (*RequestPage, error) {
	matched, err := s.Filter(ctx, in.Query)
	if err != nil {
		return nil, err
	}

	page, limit := normalizePage(in.Page, in.Limit)
	total := len(matched)
	pages := (total + limit - 1) / limit

	// clamp before multiplying so huge pages cannot overflow
	start := total
	if page-1 <= total/limit {
		start = min((page-1)*limit, total)
	}
	end := min(start+limit, total)

	return &RequestPage{
		Data:  matched[start:end],
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: pages,
	}, nil
}

func (s *requestServiceImpl) Filter(ctx context.Context, q filter.Query) ([]*entity.Request, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return filter.Apply(all, q), nil
}

// Update applies draft edits, or moves the request to a new status
func (s *requestServiceImpl) Update(ctx context.Context, id string, in UpdateRequestInput) (*entity.Request, error) {
	if in.Status != nil {
		if !in.Patch.IsEmpty() || in.Items != nil {
			return nil, entity.NewValidationError("status", "status changes cannot be combined with other edits")
		}
		trigger, ok := domainwf.TriggerFor(*in.Status)
		if !ok {
			return nil, entity.NewValidationError("status", fmt.Sprintf("unknown status %q", *in.Status))
		}
		return s.Transition(ctx, id, trigger, in.Actor, in.Comment)
	}

	return s.edit(ctx, id, func(req *entity.Request) error {
		if err := req.ApplyMetadata(in.Patch); err != nil {
			return err
		}
		if in.Items != nil {
			return req.ReplaceItems(*in.Items)
		}
		return nil
	})
}

// Delete removes a request that is still a draft
func (s *requestServiceImpl) Delete(ctx context.Context, id string) error {
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := s.load(txCtx, id)
		if err != nil {
			return err
		}
		if !req.IsEditable() {
			return entity.NewValidationError("status", "only drafts can be deleted")
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete request: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Request deleted", "request_id", id)
	return nil
}

func (s *requestServiceImpl) AddItem(ctx context.Context, id string, item entity.LineItem) (*entity.Request, error) {
	return s.edit(ctx, id, func(req *entity.Request) error {
		return req.AddItem(item)
	})
}

func (s *requestServiceImpl) RemoveItem(ctx context.Context, id string, index int) (*entity.Request, error) {
	return s.edit(ctx, id, func(req *entity.Request) error {
		return req.RemoveItem(index)
	})
}

// Comment appends a comment event. Comments are allowed in every status.
func (s *requestServiceImpl) Comment(ctx context.Context, id, actor, comment string) (*entity.Request, error) {
	if strings.TrimSpace(comment) == "" {
		return nil, entity.NewValidationError("comment", "comment is required")
	}

	var result *entity.Request
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := s.load(txCtx, id)
		if err != nil {
			return err
		}
		now := s.now()
		req.AppendEvent(entity.NewTimelineEvent(now, actor, entity.ActionCommented, comment))
		req.UpdatedAt = now.UTC()
		if err := s.repo.Update(txCtx, req); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *requestServiceImpl) Transition(ctx context.Context, id string, trigger domainwf.Trigger, actor, comment string) (*entity.Request, error) {
	var (
		req *entity.Request
		po  *entity.PurchaseOrder
	)
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		req, err = s.engine.Fire(txCtx, id, trigger, actor, comment)
		if err != nil {
			return err
		}
		if trigger == domainwf.TriggerComplete && s.orders != nil {
			po, err = s.issuePurchaseOrder(txCtx, req)
		}
		return err
	})
	if err != nil {
		s.logger.Error("Transition failed", "request_id", id, "trigger", trigger.String(), "error", err)
		return nil, err
	}
	s.logger.Info("Request transitioned", "request_id", req.ID, "trigger", trigger.String(), "status", req.Status.String())
	if po != nil {
		s.logger.Info("Purchase order issued", "purchase_order_id", po.ID, "request_id", req.ID, "supplier", po.Supplier)
	}
	return req, nil
}

// issuePurchaseOrder records the order for a completed request
func (s *requestServiceImpl) issuePurchaseOrder(ctx context.Context, req *entity.Request) (*entity.PurchaseOrder, error) {
	existing, err := s.orders.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}

	supplier := ""
	if s.negotiations != nil {
		negotiations, err := s.negotiations.List(ctx, req.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list negotiations: %w", err)
		}
		supplier = entity.SupplierFor(req.ID, negotiations)
	}

	now := s.now().UTC()
	po := &entity.PurchaseOrder{
		ID:        entity.NextPurchaseOrderID(now.Year(), existing),
		RequestID: req.ID,
		Supplier:  supplier,
		Status:    entity.PurchaseOrderIssued,
		Amount:    req.Amount,
		CreatedAt: now,
	}
	if err := s.orders.Create(ctx, po); err != nil {
		return nil, fmt.Errorf("failed to create purchase order: %w", err)
	}
	return po, nil
}

func (s *requestServiceImpl) DecideStep(ctx context.Context, id string, step int, decision approval.Decision, actor, comment string) (*entity.Request, error) {
	req, err := s.engine.DecideStep(ctx, id, step, decision, actor, comment)
	if err != nil {
		s.logger.Error("Step decision failed", "request_id", id, "step", step, "error", err)
		return nil, err
	}
	s.logger.Info("Step decided", "request_id", id, "step", step, "decision", string(decision), "status", req.Status.String())
	return req, nil
}

func (s *requestServiceImpl) Return(ctx context.Context, id, actor, comment string) (*entity.Request, error) {
	_, draft, err := s.engine.ReturnForClarification(ctx, id, actor, comment)
	if err != nil {
		s.logger.Error("Return for clarification failed", "request_id", id, "error", err)
		return nil, err
	}
	s.logger.Info("Request returned for clarification", "request_id", id, "draft_id", draft.ID)
	return draft, nil
}

// edit runs a draft mutation inside a transaction and persists the result
func (s *requestServiceImpl) edit(ctx context.Context, id string, mutate func(*entity.Request) error) (*entity.Request, error) {
	var result *entity.Request
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := s.load(txCtx, id)
		if err != nil {
			return err
		}
		if err := mutate(req); err != nil {
			return err
		}
		req.UpdatedAt = s.now().UTC()
		if err := s.repo.Update(txCtx, req); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}
		result = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *requestServiceImpl) load(ctx context.Context, id string) (*entity.Request, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch request: %w", err)
	}
	if req == nil {
		return nil, fmt.Errorf("%w: %s", port.ErrRequestNotFound, id)
	}
	return req, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	return page, limit
}

// bodyHash fingerprints a create body for idempotency checks
func bodyHash(meta entity.Metadata, items []entity.LineItem) (string, error) {
	data, err := json.Marshal(struct {
		Metadata entity.Metadata   `json:"metadata"`
		Items    []entity.LineItem `json:"items"`
	}{meta, items})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
