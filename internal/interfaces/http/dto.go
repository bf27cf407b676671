package http

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/procurement-hub/internal/domain/approval"
	"github.com/garyjia/procurement-hub/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// LineItemBody is a line item in a request body
type LineItemBody struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

func (b LineItemBody) toEntity() entity.LineItem {
	return entity.LineItem{Description: b.Description, Quantity: b.Quantity, UnitPrice: b.UnitPrice}
}

func toLineItems(bodies []LineItemBody) []entity.LineItem {
	items := make([]entity.LineItem, 0, len(bodies))
	for _, b := range bodies {
		items = append(items, b.toEntity())
	}
	return items
}

// CreateRequestBody is the body of POST /api/requests
type CreateRequestBody struct {
	Title         string         `json:"title"`
	Requester     string         `json:"requester"`
	Department    string         `json:"department"`
	RequestType   string         `json:"requestType"`
	Priority      string         `json:"priority"`
	Justification string         `json:"justification"`
	DueDate       string         `json:"dueDate"`
	Items         []LineItemBody `json:"items"`
}

// UpdateRequestBody is the body of PUT /api/requests/:id. Absent fields are left unchanged.
type UpdateRequestBody struct {
	Title         *string         `json:"title"`
	Requester     *string         `json:"requester"`
	Department    *string         `json:"department"`
	RequestType   *string         `json:"requestType"`
	Priority      *string         `json:"priority"`
	Justification *string         `json:"justification"`
	DueDate       *string         `json:"dueDate"`
	Items         *[]LineItemBody `json:"items"`
	Status        *string         `json:"status"`
	Comment       string          `json:"comment"`
}

// CommentBody carries an optional comment for actions and the text of a comment event
type CommentBody struct {
	Comment string `json:"comment"`
}

// ListQuery holds the query parameters of request listings
type ListQuery struct {
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
	Status     string `form:"status"`
	Department string `form:"department"`
	Search     string `form:"search"`
}

// StepResponse is an approval step with its badge
type StepResponse struct {
	ApproverName string            `json:"approverName"`
	Role         string            `json:"role"`
	Status       entity.StepStatus `json:"status"`
	Badge        entity.Badge      `json:"badge"`
	DecidedAt    *time.Time        `json:"decidedAt"`
	Comment      string            `json:"comment,omitempty"`
}

// RequestResponse is the full representation of a request
type RequestResponse struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"title"`
	Requester      string                 `json:"requester"`
	Department     string                 `json:"department"`
	RequestType    string                 `json:"requestType"`
	Priority       string                 `json:"priority"`
	Justification  string                 `json:"justification"`
	DueDate        *string                `json:"dueDate"`
	Status         entity.Status          `json:"status"`
	StatusBadge    entity.Badge           `json:"statusBadge"`
	ApprovalStatus entity.Status          `json:"approvalStatus"`
	Amount         string                 `json:"amount"`
	Date           string                 `json:"date"`
	Items          []entity.LineItem      `json:"items"`
	Approvers      []StepResponse         `json:"approvers"`
	Timeline       []entity.TimelineEvent `json:"timeline"`
	DerivedFrom    string                 `json:"derivedFrom,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

// RequestSummary is the list representation of a request
type RequestSummary struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Requester   string        `json:"requester"`
	Department  string        `json:"department"`
	Priority    string        `json:"priority"`
	Status      entity.Status `json:"status"`
	StatusBadge entity.Badge  `json:"statusBadge"`
	Amount      string        `json:"amount"`
	Date        string        `json:"date"`
	ItemCount   int           `json:"itemCount"`
}

// PageMeta describes the page of a listing
type PageMeta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// ListResponse is the body of GET /api/requests
type ListResponse struct {
	Data []RequestSummary `json:"data"`
	Meta PageMeta         `json:"meta"`
}

// VendorResponse is a vendor with its spend as a fixed-point string
type VendorResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	ContactEmail string  `json:"contactEmail"`
	Rating       float64 `json:"rating"`
	Spend        string  `json:"spend"`
	Active       bool    `json:"active"`
}

// SummaryResponse is the body of GET /api/dashboard/summary
type SummaryResponse struct {
	TotalRequests   int    `json:"totalRequests"`
	PendingApproval int    `json:"pendingApproval"`
	TotalSpent      string `json:"totalSpent"`
	ActiveVendors   int    `json:"activeVendors"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// NegotiationResponse is a supplier negotiation
type NegotiationResponse struct {
	ID            string                   `json:"id"`
	RequestID     string                   `json:"requestId"`
	Supplier      string                   `json:"supplier"`
	Status        entity.NegotiationStatus `json:"status"`
	CreatedAt     string                   `json:"createdAt"`
	LastMessageAt string                   `json:"lastMessageAt"`
}

// PurchaseOrderResponse is a purchase order
type PurchaseOrderResponse struct {
	ID        string                     `json:"id"`
	RequestID string                     `json:"requestId"`
	Supplier  string                     `json:"supplier"`
	Status    entity.PurchaseOrderStatus `json:"status"`
	Amount    string                     `json:"amount"`
	CreatedAt string                     `json:"createdAt"`
}

// DeleteResponse acknowledges a deletion
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func toRequestResponse(req *entity.Request) RequestResponse {
	resp := RequestResponse{
		ID:             req.ID,
		Title:          req.Title,
		Requester:      req.Requester,
		Department:     req.Department,
		RequestType:    req.RequestType,
		Priority:       req.Priority,
		Justification:  req.Justification,
		Status:         req.Status,
		StatusBadge:    req.Status.Badge(),
		ApprovalStatus: approval.Aggregate(req.Approvers),
		Amount:         req.Amount.StringFixed(2),
		Date:           req.CreatedAt.Format(dateLayout),
		Items:          req.Items,
		Approvers:      make([]StepResponse, 0, len(req.Approvers)),
		Timeline:       req.Timeline,
		DerivedFrom:    req.DerivedFrom,
		CreatedAt:      req.CreatedAt,
		UpdatedAt:      req.UpdatedAt,
	}
	if req.DueDate != nil {
		due := req.DueDate.Format(dateLayout)
		resp.DueDate = &due
	}
	if resp.Items == nil {
		resp.Items = []entity.LineItem{}
	}
	if resp.Timeline == nil {
		resp.Timeline = []entity.TimelineEvent{}
	}
	for _, step := range req.Approvers {
		resp.Approvers = append(resp.Approvers, StepResponse{
			ApproverName: step.ApproverName,
			Role:         step.Role,
			Status:       step.Status,
			Badge:        step.Status.Badge(),
			DecidedAt:    step.DecidedAt,
			Comment:      step.Comment,
		})
	}
	return resp
}

func toRequestSummary(req *entity.Request) RequestSummary {
	return RequestSummary{
		ID:          req.ID,
		Title:       req.Title,
		Requester:   req.Requester,
		Department:  req.Department,
		Priority:    req.Priority,
		Status:      req.Status,
		StatusBadge: req.Status.Badge(),
		Amount:      req.Amount.StringFixed(2),
		Date:        req.CreatedAt.Format(dateLayout),
		ItemCount:   len(req.Items),
	}
}

func toSummaries(reqs []*entity.Request) []RequestSummary {
	out := make([]RequestSummary, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, toRequestSummary(req))
	}
	return out
}

func toVendorResponses(vendors []*entity.Vendor) []VendorResponse {
	out := make([]VendorResponse, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, VendorResponse{
			ID:           v.ID,
			Name:         v.Name,
			Category:     v.Category,
			ContactEmail: v.ContactEmail,
			Rating:       v.Rating,
			Spend:        v.Spend.StringFixed(2),
			Active:       v.Active,
		})
	}
	return out
}

func toNegotiationResponses(list []*entity.Negotiation) []NegotiationResponse {
	out := make([]NegotiationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, NegotiationResponse{
			ID:            n.ID,
			RequestID:     n.RequestID,
			Supplier:      n.Supplier,
			Status:        n.Status,
			CreatedAt:     n.CreatedAt.Format(dateLayout),
			LastMessageAt: n.LastMessageAt.Format(dateLayout),
		})
	}
	return out
}

func toPurchaseOrderResponse(po *entity.PurchaseOrder) PurchaseOrderResponse {
	return PurchaseOrderResponse{
		ID:        po.ID,
		RequestID: po.RequestID,
		Supplier:  po.Supplier,
		Status:    po.Status,
		Amount:    po.Amount.StringFixed(2),
		CreatedAt: po.CreatedAt.Format(dateLayout),
	}
}

// parseDate accepts a calendar date or an RFC 3339 timestamp
func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	return nil, entity.NewValidationError(field, field+" must be a date in YYYY-MM-DD format")
}
