package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/procurement-hub/internal/application/service"
	"github.com/garyjia/procurement-hub/internal/domain/approval"
	"github.com/garyjia/procurement-hub/internal/domain/entity"
	"github.com/garyjia/procurement-hub/internal/domain/filter"
	"github.com/garyjia/procurement-hub/internal/domain/workflow"
)

// Request headers understood by the API
const (
	HeaderActor          = "X-Actor"
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	requests  service.RequestService
	dashboard service.DashboardService
	export    service.ExportService
	orders    service.OrderService
	logger    Logger
	version   string
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	requests service.RequestService,
	dashboard service.DashboardService,
	export service.ExportService,
	orders service.OrderService,
	logger Logger,
	version string,
) *Handlers {
	return &Handlers{
		requests:  requests,
		dashboard: dashboard,
		export:    export,
		orders:    orders,
		logger:    logger,
		version:   version,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
	})
}

// ProcurementStats handles GET /api/dashboard/procurement
func (h *Handlers) ProcurementStats(c *gin.Context) {
	stats, err := h.dashboard.ProcurementStats(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// TopVendors handles GET /api/dashboard/vendors
func (h *Handlers) TopVendors(c *gin.Context) {
	limit, ok := optionalInt(c, "limit")
	if !ok {
		return
	}
	vendors, err := h.dashboard.TopVendors(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVendorResponses(vendors))
}

// RecentRequests handles GET /api/dashboard/requests
func (h *Handlers) RecentRequests(c *gin.Context) {
	limit, ok := optionalInt(c, "limit")
	if !ok {
		return
	}
	reqs, err := h.dashboard.RecentRequests(c.Request.Context(), c.Query("department"), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaries(reqs))
}

// Summary handles GET /api/dashboard/summary
func (h *Handlers) Summary(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SummaryResponse{
		TotalRequests:   summary.TotalRequests,
		PendingApproval: summary.PendingApproval,
		TotalSpent:      summary.TotalSpent.StringFixed(2),
		ActiveVendors:   summary.ActiveVendors,
	})
}

// ListVendors handles GET /api/vendors
func (h *Handlers) ListVendors(c *gin.Context) {
	vendors, err := h.dashboard.Vendors(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVendorResponses(vendors))
}

// ListNegotiations handles GET /api/negotiations
func (h *Handlers) ListNegotiations(c *gin.Context) {
	list, err := h.orders.ListNegotiations(c.Request.Context(), c.Query("requestId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toNegotiationResponses(list))
}

// ListPurchaseOrders handles GET /api/purchase-orders
func (h *Handlers) ListPurchaseOrders(c *gin.Context) {
	list, err := h.orders.ListPurchaseOrders(c.Request.Context(), c.Query("requestId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]PurchaseOrderResponse, 0, len(list))
	for _, po := range list {
		out = append(out, toPurchaseOrderResponse(po))
	}
	c.JSON(http.StatusOK, out)
}

// GetPurchaseOrder handles GET /api/purchase-orders/:id
func (h *Handlers) GetPurchaseOrder(c *gin.Context) {
	po, err := h.orders.GetPurchaseOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPurchaseOrderResponse(po))
}

// ListRequests handles GET /api/requests
func (h *Handlers) ListRequests(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "invalid query parameters")
		return
	}

	page, err := h.requests.List(c.Request.Context(), service.ListRequestsInput{
		Query: filter.Query{Text: q.Search, Status: q.Status, Department: q.Department},
		Page:  q.Page,
		Limit: q.Limit,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Data: toSummaries(page.Data),
		Meta: PageMeta{Total: page.Total, Page: page.Page, Limit: page.Limit, Pages: page.Pages},
	})
}

// GetRequest handles GET /api/requests/:id
func (h *Handlers) GetRequest(c *gin.Context) {
	req, err := h.requests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequestResponse(req))
}

// CreateRequest handles POST /api/requests
func (h *Handlers) CreateRequest(c *gin.Context) {
	var body CreateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	due, err := parseDate("dueDate", body.DueDate)
	if err != nil {
		h.writeError(c, err)
		return
	}

	result, err := h.requests.Create(c.Request.Context(), service.CreateRequestInput{
		Metadata: entity.Metadata{
			Title:         body.Title,
			Requester:     body.Requester,
			Department:    body.Department,
			RequestType:   body.RequestType,
			Priority:      body.Priority,
			Justification: body.Justification,
			DueDate:       due,
		},
		Items:          toLineItems(body.Items),
		Actor:          actor(c),
		IdempotencyKey: c.GetHeader(HeaderIdempotencyKey),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	if result.Replayed {
		c.Header(HeaderReplayed, "true")
		c.JSON(http.StatusOK, toRequestResponse(result.Request))
		return
	}
	c.Header("Location", "/api/requests/"+result.Request.ID)
	c.JSON(http.StatusCreated, toRequestResponse(result.Request))
}

// UpdateRequest handles PUT /api/requests/:id
func (h *Handlers) UpdateRequest(c *gin.Context) {
	var body UpdateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	in := service.UpdateRequestInput{
		Patch: entity.MetadataPatch{
			Title:         body.Title,
			Requester:     body.Requester,
			Department:    body.Department,
			RequestType:   body.RequestType,
			Priority:      body.Priority,
			Justification: body.Justification,
		},
		Actor:   actor(c),
		Comment: body.Comment,
	}
	if body.DueDate != nil {
		due, err := parseDate("dueDate", *body.DueDate)
		if err != nil {
			h.writeError(c, err)
			return
		}
		in.Patch.DueDate = due
	}
	if body.Items != nil {
		items := toLineItems(*body.Items)
		in.Items = &items
	}
	if body.Status != nil {
		status := entity.Status(strings.ToLower(strings.TrimSpace(*body.Status)))
		in.Status = &status
	}

	req, err := h.requests.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequestResponse(req))
}

// DeleteRequest handles DELETE /api/requests/:id
func (h *Handlers) DeleteRequest(c *gin.Context) {
	if err := h.requests.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteResponse{Success: true, Message: "Request deleted successfully"})
}

// Submit handles POST /api/requests/:id/submit
func (h *Handlers) Submit(c *gin.Context) {
	h.fire(c, workflow.TriggerSubmit)
}

// Reject handles POST /api/requests/:id/reject
func (h *Handlers) Reject(c *gin.Context) {
	h.fire(c, workflow.TriggerReject)
}

// Complete handles POST /api/requests/:id/complete
func (h *Handlers) Complete(c *gin.Context) {
	h.fire(c, workflow.TriggerComplete)
}

// Return handles POST /api/requests/:id/return and responds with the new draft
func (h *Handlers) Return(c *gin.Context) {
	body, ok := optionalComment(c)
	if !ok {
		return
	}
	draft, err := h.requests.Return(c.Request.Context(), c.Param("id"), actor(c), body.Comment)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Location", "/api/requests/"+draft.ID)
	c.JSON(http.StatusCreated, toRequestResponse(draft))
}

// ApproveStep handles POST /api/requests/:id/approvals/:step/approve
func (h *Handlers) ApproveStep(c *gin.Context) {
	h.decide(c, approval.DecisionApprove)
}

// RejectStep handles POST /api/requests/:id/approvals/:step/reject
func (h *Handlers) RejectStep(c *gin.Context) {
	h.decide(c, approval.DecisionReject)
}

// AddItem handles POST /api/requests/:id/items
func (h *Handlers) AddItem(c *gin.Context) {
	var body LineItemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	req, err := h.requests.AddItem(c.Request.Context(), c.Param("id"), body.toEntity())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequestResponse(req))
}

// RemoveItem handles DELETE /api/requests/:id/items/:index
func (h *Handlers) RemoveItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "invalid item index")
		return
	}
	req, err := h.requests.RemoveItem(c.Request.Context(), c.Param("id"), index)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequestResponse(req))
}

// AddComment handles POST /api/requests/:id/comments
func (h *Handlers) AddComment(c *gin.Context) {
	var body CommentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	req, err := h.requests.Comment(c.Request.Context(), c.Param("id"), actor(c), body.Comment)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRequestResponse(req))
}

// ExportRequests handles GET /api/exports/requests
func (h *Handlers) ExportRequests(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "invalid query parameters")
		return
	}

	var buf bytes.Buffer
	if _, err := h.export.WriteRequests(c.Request.Context(), filter.Query{
		Text:       q.Search,
		Status:     q.Status,
		Department: q.Department,
	}, &buf); err != nil {
		h.writeError(c, err)
		return
	}

	filename := fmt.Sprintf("requests-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handlers) fire(c *gin.Context, trigger workflow.Trigger) {
	body, ok := optionalComment(c)
	if !ok {
		return
	}
	req, err := h.requests.Transition(c.Request.Context(), c.Param("id"), trigger, actor(c), body.Comment)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequestResponse(req))
}

func (h *Handlers) decide(c *gin.Context, decision approval.Decision) {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		badRequest(c, "invalid step index")
		return
	}
	body, ok := optionalComment(c)
	if !ok {
		return
	}
	req, err := h.requests.DecideStep(c.Request.Context(), c.Param("id"), step, decision, actor(c), body.Comment)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequestResponse(req))
}

// actor returns the X-Actor header. It names the acting user for the timeline and is not authentication.
func actor(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(HeaderActor))
}

// optionalComment binds a comment body when one is sent
func optionalComment(c *gin.Context) (CommentBody, bool) {
	var body CommentBody
	if c.Request.ContentLength == 0 {
		return body, true
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return body, false
	}
	return body, true
}

func optionalInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return n, true
}
