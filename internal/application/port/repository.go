package port

import (
	"context"
	"errors"
	"time"

	"github.com/garyjia/procurement-hub/internal/domain/entity"
)

var (
	// ErrRequestNotFound is returned when no request has the given id
	ErrRequestNotFound = errors.New("request not found")

	// ErrRequestExists is returned when creating a request whose id is taken
	ErrRequestExists = errors.New("request already exists")

	// ErrTimelineRewritten is returned when an update would change or drop recorded events
	ErrTimelineRewritten = errors.New("timeline is append-only")

	// ErrIdempotencyConflict is returned when an idempotency key is reused with a different body
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request body")

	// ErrPurchaseOrderNotFound is returned when no purchase order has the given id
	ErrPurchaseOrderNotFound = errors.New("purchase order not found")
)

// RequestRepository defines persistence operations for purchase requests.
// Get returns (nil, nil) when the request does not exist.
type RequestRepository interface {
	Get(ctx context.Context, id string) (*entity.Request, error)
	// List returns every request, newest first
	List(ctx context.Context) ([]*entity.Request, error)
	// Create stores a new request, assigning its id when empty
	Create(ctx context.Context, req *entity.Request) error
	// Update replaces a stored request. The stored timeline must be a prefix of the new one.
	Update(ctx context.Context, req *entity.Request) error
	Delete(ctx context.Context, id string) error
}

// VendorRepository defines persistence operations for vendors
type VendorRepository interface {
	List(ctx context.Context) ([]*entity.Vendor, error)
	Create(ctx context.Context, vendor *entity.Vendor) error
}

// NegotiationRepository defines persistence operations for supplier negotiations
type NegotiationRepository interface {
	// List returns negotiations, most recently active first. A non-empty requestID narrows the result.
	List(ctx context.Context, requestID string) ([]*entity.Negotiation, error)
	Create(ctx context.Context, n *entity.Negotiation) error
}

// PurchaseOrderRepository defines persistence operations for purchase orders.
// Get returns (nil, nil) when the order does not exist.
type PurchaseOrderRepository interface {
	Get(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// List returns orders, newest first. A non-empty requestID narrows the result.
	List(ctx context.Context, requestID string) ([]*entity.PurchaseOrder, error)
	Create(ctx context.Context, po *entity.PurchaseOrder) error
}

// IdempotencyRecord remembers which request a create call produced
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	RequestID   string
	CreatedAt   time.Time
}

// IdempotencyRepository stores idempotency keys for request creation.
// Get returns (nil, nil) when the key is unknown.
type IdempotencyRepository interface {
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	Save(ctx context.Context, record *IdempotencyRecord) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CheckTimelineAppend verifies that next only appends to stored
func CheckTimelineAppend(stored, next []entity.TimelineEvent) error {
	if len(next) < len(stored) {
		return ErrTimelineRewritten
	}
	for i := range stored {
		if !stored[i].Equal(next[i]) {
			return ErrTimelineRewritten
		}
	}
	return nil
}
