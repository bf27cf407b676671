package entity

import "github.com/shopspring/decimal"

// MonthlyStats counts requests created in one calendar month
type MonthlyStats struct {
	Month    string `json:"month"`
	Year     int    `json:"year"`
	Requests int    `json:"requests"`
	Approved int    `json:"approved"`
	Rejected int    `json:"rejected"`
}

// Summary holds the dashboard headline figures
type Summary struct {
	TotalRequests   int             `json:"totalRequests"`
	PendingApproval int             `json:"pendingApproval"`
	TotalSpent      decimal.Decimal `json:"totalSpent"`
	ActiveVendors   int             `json:"activeVendors"`
}
