// Package client is a small Go client for the procurement HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// APIError is a non-2xx response carrying the service's error body
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// NetworkError wraps a failure to reach the service
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a 404 from the service
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Calls are bounded by
// their context; set a Timeout on hc for a hard upper limit.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithActor sets the X-Actor header sent with every request
func WithActor(actor string) Option {
	return func(c *Client) {
		c.actor = strings.TrimSpace(actor)
	}
}

// Client calls the procurement API
type Client struct {
	baseURL string
	actor   string
	http    *http.Client
}

// New creates a client for the service at baseURL, e.g. http://localhost:8080
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListOptions filters and pages ListRequests
type ListOptions struct {
	Page       int
	Limit      int
	Status     string
	Department string
	Search     string
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	if o.Department != "" {
		q.Set("department", o.Department)
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	return q
}

// Health calls GET /health
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRequests returns one page of requests
func (c *Client) ListRequests(ctx context.Context, opts ListOptions) (*RequestPage, error) {
	var out RequestPage
	if err := c.do(ctx, http.MethodGet, "/api/requests", opts.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRequest returns one request with its items, approvers and timeline
func (c *Client) GetRequest(ctx context.Context, id string) (*Request, error) {
	var out Request
	if err := c.do(ctx, http.MethodGet, "/api/requests/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRequest creates a draft
func (c *Client) CreateRequest(ctx context.Context, body NewRequest) (*Request, error) {
	var out Request
	if err := c.do(ctx, http.MethodPost, "/api/requests", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Submit sends a draft for approval
func (c *Client) Submit(ctx context.Context, id, comment string) (*Request, error) {
	return c.action(ctx, "/api/requests/"+url.PathEscape(id)+"/submit", comment)
}

// Approve approves the active approval step
func (c *Client) Approve(ctx context.Context, id string, step int, comment string) (*Request, error) {
	return c.action(ctx, fmt.Sprintf("/api/requests/%s/approvals/%d/approve", url.PathEscape(id), step), comment)
}

// Reject rejects the active approval step
func (c *Client) Reject(ctx context.Context, id string, step int, comment string) (*Request, error) {
	return c.action(ctx, fmt.Sprintf("/api/requests/%s/approvals/%d/reject", url.PathEscape(id), step), comment)
}

// Complete marks an approved request fulfilled; the service issues its purchase order
func (c *Client) Complete(ctx context.Context, id, comment string) (*Request, error) {
	return c.action(ctx, "/api/requests/"+url.PathEscape(id)+"/complete", comment)
}

// ListNegotiations returns supplier negotiations, narrowed to requestID when set
func (c *Client) ListNegotiations(ctx context.Context, requestID string) ([]Negotiation, error) {
	var out []Negotiation
	if err := c.do(ctx, http.MethodGet, "/api/negotiations", byRequest(requestID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPurchaseOrders returns purchase orders, narrowed to requestID when set
func (c *Client) ListPurchaseOrders(ctx context.Context, requestID string) ([]PurchaseOrder, error) {
	var out []PurchaseOrder
	if err := c.do(ctx, http.MethodGet, "/api/purchase-orders", byRequest(requestID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func byRequest(requestID string) url.Values {
	if requestID == "" {
		return nil
	}
	return url.Values{"requestId": {requestID}}
}

// Summary returns the dashboard totals
func (c *Client) Summary(ctx context.Context) (*Summary, error) {
	var out Summary
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/summary", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) action(ctx context.Context, path, comment string) (*Request, error) {
	var body interface{}
	if strings.TrimSpace(comment) != "" {
		body = commentBody{Comment: comment}
	}
	var out Request
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.actor != "" {
		req.Header.Set("X-Actor", c.actor)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: method, URL: target, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, raw []byte) error {
	var body errorResponse
	if err := json.Unmarshal(raw, &body); err != nil || body.Error.Message == "" {
		return &APIError{StatusCode: status, Message: strings.TrimSpace(string(raw))}
	}
	return &APIError{
		StatusCode: status,
		Code:       body.Error.Code,
		Message:    body.Error.Message,
		Fields:     body.Error.Fields,
	}
}
