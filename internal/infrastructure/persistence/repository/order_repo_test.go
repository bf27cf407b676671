package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-hub/internal/application/port"
	"github.com/garyjia/procurement-hub/internal/domain/entity"
	"github.com/garyjia/procurement-hub/internal/fixtures"
)

func TestNegotiationRepository(t *testing.T) {
	repo := NewNegotiationRepository(setupDB(t), zap.NewNop())
	ctx := context.Background()
	for _, n := range fixtures.Negotiations() {
		require.NoError(t, repo.Create(ctx, n))
	}

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "NEG-2023-001", all[0].ID)
	assert.Equal(t, entity.NegotiationActive, all[0].Status)
	assert.Equal(t, 16, all[0].LastMessageAt.Day())

	one, err := repo.List(ctx, "RFQ-2023-1285")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, entity.NegotiationCompleted, one[0].Status)

	assert.Error(t, repo.Create(ctx, fixtures.Negotiations()[0]))
}

func TestPurchaseOrderRepository(t *testing.T) {
	repo := NewPurchaseOrderRepository(setupDB(t), zap.NewNop())
	ctx := context.Background()
	for _, po := range fixtures.PurchaseOrders() {
		require.NoError(t, repo.Create(ctx, po))
	}

	got, err := repo.Get(ctx, "PO-2023-001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "RFQ-2023-1287", got.RequestID)
	assert.Equal(t, entity.PurchaseOrderProcessed, got.Status)
	assert.Equal(t, "1250.00", got.Amount.StringFixed(2))

	missing, err := repo.Get(ctx, "PO-2023-404")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Create(ctx, &entity.PurchaseOrder{
		ID:        "PO-2023-002",
		RequestID: "RFQ-2023-1283",
		Status:    entity.PurchaseOrderIssued,
		Amount:    decimal.RequireFromString("899.50"),
		CreatedAt: time.Date(2023, 6, 20, 0, 0, 0, 0, time.UTC),
	}))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "PO-2023-002", all[0].ID)
	assert.Empty(t, all[0].Supplier)

	byRequest, err := repo.List(ctx, "RFQ-2023-1283")
	require.NoError(t, err)
	require.Len(t, byRequest, 1)
}

func TestPurchaseOrderRepository_AfterCommit(t *testing.T) {
	db := setupDB(t)
	repo := NewPurchaseOrderRepository(db, zap.NewNop())
	ctx := context.Background()
	var seen []string

	err := db.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, po := range fixtures.PurchaseOrders() {
			if err := repo.Create(txCtx, po); err != nil {
				return err
			}
		}
		port.AfterCommit(txCtx, func(ctx context.Context) {
			// runs outside the transaction, so the row is visible
			list, err := repo.List(ctx, "")
			require.NoError(t, err)
			for _, po := range list {
				seen = append(seen, po.ID)
			}
		})
		assert.Empty(t, seen)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"PO-2023-001"}, seen)

	err = db.WithTransaction(ctx, func(txCtx context.Context) error {
		port.AfterCommit(txCtx, func(context.Context) { seen = append(seen, "rolled back") })
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []string{"PO-2023-001"}, seen)
}
