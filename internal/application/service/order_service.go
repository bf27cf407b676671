package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/garyjia/procurement-hub/internal/application/port"
	"github.com/garyjia/procurement-hub/internal/domain/entity"
)

// OrderService reads supplier negotiations and purchase orders
type OrderService interface {
	// ListNegotiations returns negotiations, narrowed to requestID when set
	ListNegotiations(ctx context.Context, requestID string) ([]*entity.Negotiation, error)
	// ListPurchaseOrders returns purchase orders, narrowed to requestID when set
	ListPurchaseOrders(ctx context.Context, requestID string) ([]*entity.PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, id string) (*entity.PurchaseOrder, error)
}

type orderServiceImpl struct {
	negotiations port.NegotiationRepository
	orders       port.PurchaseOrderRepository
}

// NewOrderService creates a new OrderService
func NewOrderService(negotiations port.NegotiationRepository, orders port.PurchaseOrderRepository) OrderService {
	return &orderServiceImpl{
		negotiations: negotiations,
		orders:       orders,
	}
}

func (s *orderServiceImpl) ListNegotiations(ctx context.Context, requestID string) ([]*entity.Negotiation, error) {
	list, err := s.negotiations.List(ctx, strings.TrimSpace(requestID))
	if err != nil {
		return nil, fmt.Errorf("failed to list negotiations: %w", err)
	}
	return list, nil
}

func (s *orderServiceImpl) ListPurchaseOrders(ctx context.Context, requestID string) ([]*entity.PurchaseOrder, error) {
	list, err := s.orders.List(ctx, strings.TrimSpace(requestID))
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	return list, nil
}

func (s *orderServiceImpl) GetPurchaseOrder(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	po, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch purchase order: %w", err)
	}
	if po == nil {
		return nil, fmt.Errorf("%w: %s", port.ErrPurchaseOrderNotFound, id)
	}
	return po, nil
}
