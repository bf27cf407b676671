package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/procurement-hub/internal/application/port"
	"github.com/garyjia/procurement-hub/internal/domain/entity"
	"github.com/garyjia/procurement-hub/internal/infrastructure/persistence/sqlite"
)

// NegotiationRepository implements port.NegotiationRepository on SQLite
type NegotiationRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewNegotiationRepository creates a new negotiation repository
func NewNegotiationRepository(db *sqlite.DB, logger *zap.Logger) port.NegotiationRepository {
	return &NegotiationRepository{
		db:     db,
		logger: logger,
	}
}

// List returns negotiations, most recently active first
func (r *NegotiationRepository) List(ctx context.Context, requestID string) ([]*entity.Negotiation, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db.DB).QueryContext(ctx, `
		SELECT id, request_id, supplier, status, created_at, last_message_at
		FROM negotiations
		WHERE ? = '' OR request_id = ?
		ORDER BY last_message_at DESC, id DESC
	`, requestID, requestID)
	if err != nil {
		r.logger.Error("Failed to list negotiations", zap.String("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to list negotiations: %w", err)
	}
	defer rows.Close()

	var out []*entity.Negotiation
	for rows.Next() {
		var n entity.Negotiation
		if err := rows.Scan(&n.ID, &n.RequestID, &n.Supplier, &n.Status, &n.CreatedAt, &n.LastMessageAt); err != nil {
			return nil, fmt.Errorf("failed to scan negotiation: %w", err)
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// Create inserts a negotiation
func (r *NegotiationRepository) Create(ctx context.Context, n *entity.Negotiation) error {
	_, err := sqlite.ExecutorFrom(ctx, r.db.DB).ExecContext(ctx, `
		INSERT INTO negotiations (id, request_id, supplier, status, created_at, last_message_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.ID, n.RequestID, n.Supplier, string(n.Status), n.CreatedAt.UTC(), n.LastMessageAt.UTC())
	if err != nil {
		r.logger.Error("Failed to create negotiation", zap.String("id", n.ID), zap.Error(err))
		return fmt.Errorf("failed to create negotiation: %w", err)
	}
	return nil
}

// PurchaseOrderRepository implements port.PurchaseOrderRepository on SQLite
type PurchaseOrderRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewPurchaseOrderRepository creates a new purchase order repository
func NewPurchaseOrderRepository(db *sqlite.DB, logger *zap.Logger) port.PurchaseOrderRepository {
	return &PurchaseOrderRepository{
		db:     db,
		logger: logger,
	}
}

const purchaseOrderColumns = `id, request_id, supplier, status, amount, created_at`

func scanPurchaseOrder(row interface{ Scan(dest ...interface{}) error }) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	if err := row.Scan(&po.ID, &po.RequestID, &po.Supplier, &po.Status, &po.Amount, &po.CreatedAt); err != nil {
		return nil, err
	}
	return &po, nil
}

// Get returns the order, or nil when it does not exist
func (r *PurchaseOrderRepository) Get(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	row := sqlite.ExecutorFrom(ctx, r.db.DB).QueryRowContext(ctx,
		`SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = ?`, id)
	po, err := scanPurchaseOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get purchase order", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}
	return po, nil
}

// List returns orders, newest first
func (r *PurchaseOrderRepository) List(ctx context.Context, requestID string) ([]*entity.PurchaseOrder, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db.DB).QueryContext(ctx, `
		SELECT `+purchaseOrderColumns+`
		FROM purchase_orders
		WHERE ? = '' OR request_id = ?
		ORDER BY created_at DESC, id DESC
	`, requestID, requestID)
	if err != nil {
		r.logger.Error("Failed to list purchase orders", zap.String("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	defer rows.Close()

	var out []*entity.PurchaseOrder
	for rows.Next() {
		po, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase order: %w", err)
		}
		out = append(out, po)
	}
	return out, rows.Err()
}

// Create inserts an order
func (r *PurchaseOrderRepository) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	_, err := sqlite.ExecutorFrom(ctx, r.db.DB).ExecContext(ctx, `
		INSERT INTO purchase_orders (id, request_id, supplier, status, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, po.ID, po.RequestID, po.Supplier, string(po.Status), po.Amount.StringFixed(2), po.CreatedAt.UTC())
	if err != nil {
		r.logger.Error("Failed to create purchase order", zap.String("id", po.ID), zap.Error(err))
		return fmt.Errorf("failed to create purchase order: %w", err)
	}
	return nil
}
