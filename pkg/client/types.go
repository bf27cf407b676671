package client

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one priced line of a request
type LineItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// NewRequest is the body of a create call
type NewRequest struct {
	Title         string     `json:"title"`
	Requester     string     `json:"requester"`
	Department    string     `json:"department,omitempty"`
	RequestType   string     `json:"requestType,omitempty"`
	Priority      string     `json:"priority,omitempty"`
	Justification string     `json:"justification,omitempty"`
	DueDate       string     `json:"dueDate,omitempty"`
	Items         []LineItem `json:"items,omitempty"`
}

// Badge is the display hint the service attaches to a status
type Badge struct {
	Label string `json:"label"`
	Tone  string `json:"tone"`
	Icon  string `json:"icon"`
}

// ApprovalStep is one stage of a request's approval chain
type ApprovalStep struct {
	ApproverName string     `json:"approverName"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	Badge        Badge      `json:"badge"`
	DecidedAt    *time.Time `json:"decidedAt"`
	Comment      string     `json:"comment,omitempty"`
}

// TimelineEvent is one entry of a request's history
type TimelineEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Comment   *string   `json:"comment"`
}

// Request is a purchase request with its items, chain and timeline
type Request struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Requester      string          `json:"requester"`
	Department     string          `json:"department"`
	RequestType    string          `json:"requestType"`
	Priority       string          `json:"priority"`
	Justification  string          `json:"justification"`
	DueDate        *string         `json:"dueDate"`
	Status         string          `json:"status"`
	StatusBadge    Badge           `json:"statusBadge"`
	ApprovalStatus string          `json:"approvalStatus"`
	Amount         string          `json:"amount"`
	Date           string          `json:"date"`
	Items          []LineItem      `json:"items"`
	Approvers      []ApprovalStep  `json:"approvers"`
	Timeline       []TimelineEvent `json:"timeline"`
	DerivedFrom    string          `json:"derivedFrom,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// RequestSummary is a request as it appears in listings
type RequestSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Requester   string `json:"requester"`
	Department  string `json:"department"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	StatusBadge Badge  `json:"statusBadge"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	ItemCount   int    `json:"itemCount"`
}

// PageMeta describes where a page sits in the full result
type PageMeta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// RequestPage is one page of ListRequests
type RequestPage struct {
	Data []RequestSummary `json:"data"`
	Meta PageMeta         `json:"meta"`
}

// Summary holds the dashboard totals
type Summary struct {
	TotalRequests   int    `json:"totalRequests"`
	PendingApproval int    `json:"pendingApproval"`
	TotalSpent      string `json:"totalSpent"`
	ActiveVendors   int    `json:"activeVendors"`
}

// Health is the service health report
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// Negotiation is a quote discussion with a supplier
type Negotiation struct {
	ID            string `json:"id"`
	RequestID     string `json:"requestId"`
	Supplier      string `json:"supplier"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"`
	LastMessageAt string `json:"lastMessageAt"`
}

// PurchaseOrder is issued when a request is completed
type PurchaseOrder struct {
	ID        string `json:"id"`
	RequestID string `json:"requestId"`
	Supplier  string `json:"supplier"`
	Status    string `json:"status"`
	Amount    string `json:"amount"`
	CreatedAt string `json:"createdAt"`
}

type commentBody struct {
	Comment string `json:"comment"`
}

type errorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	} `json:"error"`
}
