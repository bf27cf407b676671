package entity

import "github.com/shopspring/decimal"

// Vendor is a supplier the organisation buys from
type Vendor struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	ContactEmail string          `json:"contactEmail"`
	Rating       float64         `json:"rating"`
	Spend        decimal.Decimal `json:"spend"`
	Active       bool            `json:"active"`
}
