package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/garyjia/procurement-hub/internal/application/port"
	"github.com/garyjia/procurement-hub/internal/domain/entity"
)

// NegotiationStore keeps supplier negotiations in process memory
type NegotiationStore struct {
	mu           sync.RWMutex
	negotiations map[string]entity.Negotiation
}

// NewNegotiationStore creates a store holding copies of seed
func NewNegotiationStore(seed ...*entity.Negotiation) *NegotiationStore {
	s := &NegotiationStore{negotiations: make(map[string]entity.Negotiation)}
	for _, n := range seed {
		s.negotiations[n.ID] = *n
	}
	return s
}

// List returns negotiations, most recently active first
func (s *NegotiationStore) List(ctx context.Context, requestID string) ([]*entity.Negotiation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.Negotiation, 0, len(s.negotiations))
	for _, n := range s.negotiations {
		if requestID != "" && n.RequestID != requestID {
			continue
		}
		n := n
		out = append(out, &n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastMessageAt.Equal(out[j].LastMessageAt) {
			return out[i].LastMessageAt.After(out[j].LastMessageAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Create adds a negotiation
func (s *NegotiationStore) Create(ctx context.Context, n *entity.Negotiation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.negotiations[n.ID]; exists {
		return fmt.Errorf("negotiation %s already exists", n.ID)
	}
	s.negotiations[n.ID] = *n
	return nil
}

// PurchaseOrderStore keeps purchase orders in process memory
type PurchaseOrderStore struct {
	mu     sync.RWMutex
	orders map[string]entity.PurchaseOrder
}

// NewPurchaseOrderStore creates a store holding copies of seed
func NewPurchaseOrderStore(seed ...*entity.PurchaseOrder) *PurchaseOrderStore {
	s := &PurchaseOrderStore{orders: make(map[string]entity.PurchaseOrder)}
	for _, po := range seed {
		s.orders[po.ID] = *po
	}
	return s
}

// Get returns a copy of the order, or nil when it is unknown
func (s *PurchaseOrderStore) Get(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	po, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return &po, nil
}

// List returns orders, newest first
func (s *PurchaseOrderStore) List(ctx context.Context, requestID string) ([]*entity.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.PurchaseOrder, 0, len(s.orders))
	for _, po := range s.orders {
		if requestID != "" && po.RequestID != requestID {
			continue
		}
		po := po
		out = append(out, &po)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Create adds an order
func (s *PurchaseOrderStore) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[po.ID]; exists {
		return fmt.Errorf("purchase order %s already exists", po.ID)
	}
	s.orders[po.ID] = *po
	return nil
}

var (
	_ port.NegotiationRepository   = (*NegotiationStore)(nil)
	_ port.PurchaseOrderRepository = (*PurchaseOrderStore)(nil)
)
