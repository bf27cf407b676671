package fixtures

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/procurement-hub/internal/domain/entity"
)

// Negotiations returns the sample supplier negotiations
func Negotiations() []*entity.Negotiation {
	return []*entity.Negotiation{
		{
			ID: "NEG-2023-001", RequestID: "RFQ-2023-1286", Supplier: "TechPro Solutions",
			Status:    entity.NegotiationActive,
			CreatedAt: day(time.June, 15, 0), LastMessageAt: day(time.June, 16, 0),
		},
		{
			ID: "NEG-2023-002", RequestID: "RFQ-2023-1285", Supplier: "Global Software Ltd",
			Status:    entity.NegotiationCompleted,
			CreatedAt: day(time.June, 13, 0), LastMessageAt: day(time.June, 14, 0),
		},
	}
}

// PurchaseOrders returns the sample purchase orders
func PurchaseOrders() []*entity.PurchaseOrder {
	return []*entity.PurchaseOrder{
		{
			ID: "PO-2023-001", RequestID: "RFQ-2023-1287", Supplier: "Acme Supplies Inc.",
			Status:    entity.PurchaseOrderProcessed,
			Amount:    decimal.RequireFromString("1250"),
			CreatedAt: day(time.June, 16, 0),
		},
	}
}

