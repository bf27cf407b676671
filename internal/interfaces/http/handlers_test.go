package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-hub/internal/application/service"
	"github.com/garyjia/procurement-hub/internal/application/workflow"
	"github.com/garyjia/procurement-hub/internal/fixtures"
	"github.com/garyjia/procurement-hub/internal/infrastructure/persistence/memory"
)

type mockLogger struct {
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.errors = append(m.errors, msg)
}

type mockRecorder struct {
	routes []string
}

func (m *mockRecorder) ObserveHTTP(method, route string, code int, elapsed time.Duration) {
	m.routes = append(m.routes, method+" "+route)
}

func setupServer(t *testing.T, cfg ServerConfig) (*Server, *mockRecorder) {
	t.Helper()
	store, err := memory.NewRequestStore(zap.NewNop(), fixtures.Requests()...)
	require.NoError(t, err)
	tx := memory.NewTxManager()
	engine := workflow.NewEngine(store, tx)
	negotiations := memory.NewNegotiationStore(fixtures.Negotiations()...)
	orders := memory.NewPurchaseOrderStore(fixtures.PurchaseOrders()...)
	requests := service.NewRequestService(store, memory.NewIdempotencyStore(), engine, tx, fixtures.DefaultChain, nil,
		service.WithPurchaseOrders(orders, negotiations))

	recorder := &mockRecorder{}
	srv, err := NewServer(cfg, Services{
		Requests:  requests,
		Dashboard: service.NewDashboardService(store, memory.NewVendorStore(fixtures.Vendors()...)),
		Export:    service.NewExportService(requests, nil),
		Orders:    service.NewOrderService(negotiations, orders),
	}, recorder, http.NotFoundHandler(), &mockLogger{})
	require.NoError(t, err)
	return srv, recorder
}

func testConfig() ServerConfig {
	cfg := DefaultServerConfig()
	cfg.RateLimit = ""
	return cfg
}

func do(t *testing.T, srv *Server, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func newRequestBody() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Standing desks",
		"requester":   "Leslie Alexander",
		"department":  "facilities",
		"requestType": "goods",
		"priority":    "medium",
		"dueDate":     "2024-05-01",
		"items": []map[string]interface{}{
			{"description": "Desk", "quantity": 4, "unitPrice": "499.50"},
		},
	}
}

func TestHealthCheck(t *testing.T) {
	srv, _ := setupServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[HealthResponse](t, rec).Status)
}

func TestListRequests(t *testing.T) {
	srv, recorder := setupServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/api/requests?page=2&limit=3&status=all&department=all", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[ListResponse](t, rec)
	assert.Equal(t, PageMeta{Total: 10, Page: 2, Limit: 3, Pages: 4}, body.Meta)
	require.Len(t, body.Data, 3)
	assert.Equal(t, "RFQ-2023-1284", body.Data[0].ID)
	assert.Equal(t, "Rejected", body.Data[0].StatusBadge.Label)
	assert.Contains(t, recorder.routes, "GET /api/requests")
}

func TestListRequests_Search(t *testing.T) {
	srv, _ := setupServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/api/requests?search=rfq-2023-1286", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[ListResponse](t, rec)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "RFQ-2023-1286", body.Data[0].ID)
}

func TestGetRequest(t *testing.T) {
	srv, _ := setupServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/api/requests/RFQ-2023-1286", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[RequestResponse](t, rec)
	assert.Equal(t, "IT Hardware Procurement", body.Title)
	assert.Equal(t, "pending", string(body.Status))
	assert.Equal(t, "pending", string(body.ApprovalStatus))
	require.NotEmpty(t, body.Approvers)
	assert.Equal(t, "Approved", body.Approvers[0].Badge.Label)
	assert.Len(t, body.Timeline, 6)

	rec = do(t, srv, http.MethodGet, "/api/requests/RFQ-2023-0001", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, decode[ErrorResponse](t, rec).Error.Code)
}

func TestCreateRequest(t *testing.T) {
	srv, _ := setupServer(t, testConfig())

	rec := do(t, srv, http.MethodPost, "/api/requests", newRequestBody(), HeaderActor, "Leslie Alexander")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode[RequestResponse](t, rec)
	assert.NotEmpty(t, body.ID)
	assert.Equal(t, "/api/requests/"+body.ID, rec.Header().Get("Location"))
	assert.Equal(t, "1998.00", body.Amount)
	assert.Equal(t, "Facilities", body.Department)
	require.NotNil(t, body.DueDate)
	assert.Equal(t, "2024-05-01", *body.DueDate)
	assert.Equal(t, "draft", string(body.Status))

	rec = do(t, srv, http.MethodGet, "/api/requests/"+body.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateRequest_Validation(t *testing.T) {
	srv, _ := setupServer(t, testConfig())
	body := newRequestBody()
	body["title"] = ""
	body["items"] = []map[string]interface{}{{"description": "", "quantity": 0, "unitPrice": "1"}}

	rec := do(t, srv, http.MethodPost, "/api/requests", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	errBody := decode[ErrorResponse](t, rec).Error
	assert.Equal(t, CodeValidation, errBody.Code)
	assert.Contains(t, errBody.Fields, "title")
	assert.Contains(t, errBody.Fields, "items[0].description")
	assert.Contains(t, errBody.Fields, "items[0].quantity")

	rec = do(t, srv, http.MethodPost, "/api/requests", map[string]interface{}{"title": "x", "requester": "y", "dueDate": "next week"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/requests", bytes.NewReader([]byte("{")))
	raw := httptest.NewRecorder()
	srv.Router().ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestCreateRequest_Idempotency(t *testing.T) {
	srv, _ := setupServer(t, testConfig())

	first := do(t, srv, http.MethodPost, "/api/requests", newRequestBody(), HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusCreated, first.Code)

	second := do(t, srv, http.MethodPost, "/api/requests", newRequestBody(), HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get(HeaderReplayed))
	assert.Equal(t, decode[RequestResponse](t, first).ID, decode[RequestResponse](t, second).ID)

	changed := newRequestBody()
	changed["title"] = "Sitting desks"
	third := do(t, srv, http.MethodPost, "/api/requests", changed, HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusUnprocessableEntity, third.Code)
	assert.Contains(t, decode[ErrorResponse](t, third).Error.Fields, HeaderIdempotencyKey)
}

func TestUpdateRequest(t *testing.T) {
	srv, _ := setupServer(t, testConfig())

	rec := do(t, srv, http.MethodPut, "/api/requests/RFQ-2023-1285", map[string]interface{}{
		"priority": "urgent",
		"items":    []map[string]interface{}{{"description": "Design suite", "quantity": 3, "unitPrice": 600}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[RequestResponse](t, rec)
	assert.Equal(t, "urgent", body.Priority)
	assert.Equal(t, "1800.00", body.Amount)

	rec = do(t, srv, http.MethodPut, "/api/requests/RFQ-2023-1287", map[string]interface{}{"title": "nope"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateRequest_StatusTransitions(t *testing.T) {
	srv, _ := setupServer(t, testConfig())

	rec := do(t, srv, http.MethodPut, "/api/requests/RFQ-2023-1285", map[string]interface{}{"status": "pending"}, HeaderActor, "Esther Howard")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[RequestResponse](t, rec)
	assert.Equal(t, "pending", string(body.Status))
	last := body.Timeline[len(body.Timeline)-1]
	assert.Equal(t, "Esther Howard", last.Actor)

	rec = do(t, srv, http.MethodPut, "/api/requests/RFQ-2023-1283", map[string]interface{}{"status": "draft"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, CodeInvalidTransition, decode[ErrorResponse](t, rec).Error.Code)

	rec = do(t, srv, http.MethodPut, "/api/requests/RFQ-2023-1283", map[string]interface{}{"status": "archived"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestApprovalFlow(t *testing.T) {
	srv, _ := setupServer(t, testConfig())

	created := decode[RequestResponse](t, do(t, srv, http.MethodPost, "/api/requests", newRequestBody()))
	base := "/api/requests/" + created.ID

	rec := do(t, srv, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, srv, http.MethodPost, base+"/approvals/1/approve", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "only the active step can be decided")

	for step := 0; step < 3; step++ {
		rec = do(t, srv, http.MethodPost, base+"/approvals/"+string(rune('0'+step))+"/approve", CommentBody{Comment: "ok"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	body := decode[RequestResponse](t, rec)
	assert.Equal(t, "approved", string(body.Status))
	assert.GreaterOrEqual(t, len(body.Timeline), 3)

	rec = do(t, srv, http.MethodPost, base+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/purchase-orders?requestId="+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decode[[]PurchaseOrderResponse](t, rec)
	require.Len(t, orders, 1)
	assert.Equal(t, created.Amount, orders[0].Amount)
	assert.Equal(t, "issued", string(orders[0].Status))

	rec = do(t, srv, http.MethodPost, base+"/reject", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodPost, base+"/approvals/x/approve", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitIncompleteDraft(t *testing.T) {
	srv, _ := setupServer(t, testConfig())
	body := map[string]interface{}{"title": "Chairs", "requester": "Leslie Alexander"}

	created := decode[RequestResponse](t, do(t, srv, http.MethodPost, "/api/requests", body))
	rec := do(t, srv, http.MethodPost, "/api/requests/"+created.ID+"/submit", nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	fields := decode[ErrorResponse](t, rec).Error.Fields
	assert.Contains(t, fields, "items")
	assert.Contains(t, fields, "department")
}

func TestReturnForClarification(t *testing.T) {
	srv, _ := setupServer(t, testConfig())

	rec := do(t, srv, http.MethodPost, "/api/requests/RFQ-2023-1284/return", CommentBody{Comment: "split it"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	draft := decode[RequestResponse](t, rec)
	assert.Equal(t, "draft", string(draft.Status))
	assert.Equal(t, "RFQ-2023-1284", draft.DerivedFrom)

	original := decode[RequestResponse](t, do(t, srv, http.MethodGet, "/api/requests/RFQ-2023-1284", nil))
	assert.Equal(t, "rejected", string(original.Status))
	assert.Equal(t, "Returned for clarification", original.Timeline[len(original.Timeline)-1].Action)
}

func TestItemsAndComments(t *testing.T) {
	srv, _ := setupServer(t, testConfig())
	base := "/api/requests/RFQ-2023-1285"

	before := decode[RequestResponse](t, do(t, srv, http.MethodGet, base, nil))

	rec := do(t, srv, http.MethodPost, base+"/items", LineItemBody{Description: "Extra seat", Quantity: 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	added := decode[RequestResponse](t, rec)
	assert.Len(t, added.Items, len(before.Items)+1)

	rec = do(t, srv, http.MethodDelete, base+"/items/0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[RequestResponse](t, rec).Items, len(before.Items))

	rec = do(t, srv, http.MethodDelete, base+"/items/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, base+"/comments", CommentBody{Comment: "Checked with vendor"}, HeaderActor, "Esther Howard")
	require.Equal(t, http.StatusCreated, rec.Code)
	commented := decode[RequestResponse](t, rec)
	last := commented.Timeline[len(commented.Timeline)-1]
	assert.Equal(t, "Commented", last.Action)
	assert.Equal(t, "Esther Howard", last.Actor)
}

func TestDeleteRequest(t *testing.T) {
	srv, _ := setupServer(t, testConfig())

	rec := do(t, srv, http.MethodDelete, "/api/requests/RFQ-2023-1285", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[DeleteResponse](t, rec).Success)

	rec = do(t, srv, http.MethodDelete, "/api/requests/RFQ-2023-1285", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/requests/RFQ-2023-1287", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDashboardEndpoints(t *testing.T) {
	srv, _ := setupServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/api/dashboard/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[SummaryResponse](t, rec)
	assert.Equal(t, 10, summary.TotalRequests)
	assert.Equal(t, 3, summary.PendingApproval)
	assert.Equal(t, 5, summary.ActiveVendors)

	rec = do(t, srv, http.MethodGet, "/api/dashboard/vendors?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	vendors := decode[[]VendorResponse](t, rec)
	require.Len(t, vendors, 2)
	assert.Equal(t, "45280.00", vendors[0].Spend)

	rec = do(t, srv, http.MethodGet, "/api/dashboard/requests?limit=4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]RequestSummary](t, rec), 4)

	rec = do(t, srv, http.MethodGet, "/api/dashboard/procurement", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, rec), service.StatsMonths)

	rec = do(t, srv, http.MethodGet, "/api/dashboard/vendors?limit=many", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/vendors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]VendorResponse](t, rec), 5)
}

func TestOrderEndpoints(t *testing.T) {
	srv, _ := setupServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/api/negotiations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	negotiations := decode[[]NegotiationResponse](t, rec)
	require.Len(t, negotiations, 2)
	assert.Equal(t, "NEG-2023-001", negotiations[0].ID)
	assert.Equal(t, "2023-06-16", negotiations[0].LastMessageAt)

	rec = do(t, srv, http.MethodGet, "/api/negotiations?requestId=RFQ-2023-1285", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	negotiations = decode[[]NegotiationResponse](t, rec)
	require.Len(t, negotiations, 1)
	assert.Equal(t, "completed", string(negotiations[0].Status))

	rec = do(t, srv, http.MethodGet, "/api/purchase-orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decode[[]PurchaseOrderResponse](t, rec)
	require.Len(t, orders, 1)
	assert.Equal(t, "RFQ-2023-1287", orders[0].RequestID)

	rec = do(t, srv, http.MethodGet, "/api/purchase-orders/PO-2023-001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	po := decode[PurchaseOrderResponse](t, rec)
	assert.Equal(t, "1250.00", po.Amount)
	assert.Equal(t, "processed", string(po.Status))
	assert.Equal(t, "2023-06-16", po.CreatedAt)

	rec = do(t, srv, http.MethodGet, "/api/purchase-orders/PO-2023-404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, decode[ErrorResponse](t, rec).Error.Code)

	rec = do(t, srv, http.MethodGet, "/api/purchase-orders?requestId=RFQ-2023-1200", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]PurchaseOrderResponse](t, rec))
}

func TestExportRequests(t *testing.T) {
	srv, _ := setupServer(t, testConfig())

	rec := do(t, srv, http.MethodGet, "/api/exports/requests?department=IT", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Requests")
	require.NoError(t, err)
	for _, row := range rows[1:] {
		assert.Equal(t, "IT", row[3])
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := setupServer(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/requests", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), HeaderActor)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = "2-M"
	srv, _ := setupServer(t, cfg)

	for i := 0; i < 2; i++ {
		rec := do(t, srv, http.MethodGet, "/api/vendors", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(t, srv, http.MethodGet, "/api/vendors", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, CodeRateLimited, decode[ErrorResponse](t, rec).Error.Code)

	rec = do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "health is not rate limited")
}

func TestNewServer_InvalidRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = "lots"

	_, err := NewServer(cfg, Services{}, nil, nil, &mockLogger{})
	assert.Error(t, err)
}
