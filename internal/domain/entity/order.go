package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderIDPrefix prefixes every purchase order id
const PurchaseOrderIDPrefix = "PO"

// NegotiationStatus is the state of a supplier negotiation
type NegotiationStatus string

const (
	NegotiationActive    NegotiationStatus = "active"
	NegotiationCompleted NegotiationStatus = "completed"
)

// Negotiation is a quote discussion with a supplier about one request
type Negotiation struct {
	ID            string            `json:"id"`
	RequestID     string            `json:"requestId"`
	Supplier      string            `json:"supplier"`
	Status        NegotiationStatus `json:"status"`
	CreatedAt     time.Time         `json:"createdAt"`
	LastMessageAt time.Time         `json:"lastMessageAt"`
}

// PurchaseOrderStatus is the state of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderIssued    PurchaseOrderStatus = "issued"
	PurchaseOrderProcessed PurchaseOrderStatus = "processed"
)

// PurchaseOrder records that a request was fulfilled by a supplier
type PurchaseOrder struct {
	ID        string              `json:"id"`
	RequestID string              `json:"requestId"`
	Supplier  string              `json:"supplier"`
	Status    PurchaseOrderStatus `json:"status"`
	Amount    decimal.Decimal     `json:"amount"`
	CreatedAt time.Time           `json:"createdAt"`
}

// FormatPurchaseOrderID renders an id of the form PO-<year>-<sequence>
func FormatPurchaseOrderID(year, sequence int) string {
	return fmt.Sprintf("%s-%d-%03d", PurchaseOrderIDPrefix, year, sequence)
}

// ParsePurchaseOrderID splits an id into its year and sequence number
func ParsePurchaseOrderID(id string) (year, sequence int, err error) {
	parts := strings.Split(id, "-")
	if len(parts) != 3 || parts[0] != PurchaseOrderIDPrefix {
		return 0, 0, fmt.Errorf("malformed purchase order id %q", id)
	}
	if year, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, fmt.Errorf("malformed year in purchase order id %q: %w", id, err)
	}
	if sequence, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, fmt.Errorf("malformed sequence in purchase order id %q: %w", id, err)
	}
	return year, sequence, nil
}

// NextPurchaseOrderID returns the id following the highest one of year in existing
func NextPurchaseOrderID(year int, existing []*PurchaseOrder) string {
	highest := 0
	for _, po := range existing {
		y, seq, err := ParsePurchaseOrderID(po.ID)
		if err != nil || y != year {
			continue
		}
		highest = max(highest, seq)
	}
	return FormatPurchaseOrderID(year, highest+1)
}

// SupplierFor picks the supplier of the completed negotiation for requestID,
// falling back to the most recent active one
func SupplierFor(requestID string, negotiations []*Negotiation) string {
	var fallback *Negotiation
	for _, n := range negotiations {
		if n.RequestID != requestID {
			continue
		}
		if n.Status == NegotiationCompleted {
			return n.Supplier
		}
		if fallback == nil || n.LastMessageAt.After(fallback.LastMessageAt) {
			fallback = n
		}
	}
	if fallback == nil {
		return ""
	}
	return fallback.Supplier
}
