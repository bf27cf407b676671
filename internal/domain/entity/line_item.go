package entity

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is a single ordered position on a purchase request
type LineItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// NewLineItem validates and builds a line item
func NewLineItem(description string, quantity int, unitPrice decimal.Decimal) (LineItem, error) {
	item := LineItem{
		Description: strings.TrimSpace(description),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}
	if err := item.Validate(); err != nil {
		return LineItem{}, err
	}
	return item, nil
}

// Total returns quantity × unit price
func (i LineItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Validate checks the item invariants
func (i LineItem) Validate() error {
	verr := &ValidationError{}
	if strings.TrimSpace(i.Description) == "" {
		verr.Add("description", "description is required")
	}
	if i.Quantity <= 0 {
		verr.Add("quantity", "quantity must be a positive integer")
	}
	if i.UnitPrice.IsNegative() {
		verr.Add("unitPrice", "unit price must not be negative")
	} else if !i.UnitPrice.Equal(i.UnitPrice.Round(2)) {
		verr.Add("unitPrice", "unit price must have at most two decimal places")
	}
	return verr.OrNil()
}

// MarshalJSON renders money with two decimals and includes the computed total
func (i LineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Description string `json:"description"`
		Quantity    int    `json:"quantity"`
		UnitPrice   string `json:"unitPrice"`
		Total       string `json:"total"`
	}{
		Description: i.Description,
		Quantity:    i.Quantity,
		UnitPrice:   i.UnitPrice.StringFixed(2),
		Total:       i.Total().StringFixed(2),
	})
}

// SumItems returns the sum of the item totals
func SumItems(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Total())
	}
	return sum
}
