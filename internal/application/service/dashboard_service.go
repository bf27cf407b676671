package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/procurement-hub/internal/application/port"
	"github.com/garyjia/procurement-hub/internal/domain/entity"
)

// Dashboard defaults
const (
	StatsMonths       = 6
	DefaultTopVendors = 5
	DefaultRecent     = 5
)

// DashboardService computes the dashboard figures from the stores
type DashboardService interface {
	// ProcurementStats counts requests per creation month, oldest month first
	ProcurementStats(ctx context.Context) ([]entity.MonthlyStats, error)
	// TopVendors returns active vendors by spend, highest first
	TopVendors(ctx context.Context, limit int) ([]*entity.Vendor, error)
	// RecentRequests returns the newest requests, optionally limited to one department
	RecentRequests(ctx context.Context, department string, limit int) ([]*entity.Request, error)
	Summary(ctx context.Context) (*entity.Summary, error)
	// Vendors returns the vendor directory
	Vendors(ctx context.Context) ([]*entity.Vendor, error)
}

type dashboardServiceImpl struct {
	requests port.RequestRepository
	vendors  port.VendorRepository
	now      func() time.Time
}

// DashboardOption configures the dashboard service
type DashboardOption func(*dashboardServiceImpl)

// WithDashboardClock overrides the time source that anchors the monthly window
func WithDashboardClock(now func() time.Time) DashboardOption {
	return func(s *dashboardServiceImpl) {
		s.now = now
	}
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(requests port.RequestRepository, vendors port.VendorRepository, opts ...DashboardOption) DashboardService {
	s := &dashboardServiceImpl{
		requests: requests,
		vendors:  vendors,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *dashboardServiceImpl) ProcurementStats(ctx context.Context) ([]entity.MonthlyStats, error) {
	all, err := s.requests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	now := s.now().UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(StatsMonths - 1), 0)

	stats := make([]entity.MonthlyStats, StatsMonths)
	for i := range stats {
		month := first.AddDate(0, i, 0)
		stats[i] = entity.MonthlyStats{Month: month.Month().String()[:3], Year: month.Year()}
	}

	for _, req := range all {
		created := req.CreatedAt.UTC()
		idx := (created.Year()-first.Year())*12 + int(created.Month()) - int(first.Month())
		if idx < 0 || idx >= StatsMonths {
			continue
		}
		stats[idx].Requests++
		switch req.Status {
		case entity.StatusApproved, entity.StatusCompleted:
			stats[idx].Approved++
		case entity.StatusRejected:
			stats[idx].Rejected++
		}
	}
	return stats, nil
}

func (s *dashboardServiceImpl) TopVendors(ctx context.Context, limit int) ([]*entity.Vendor, error) {
	vendors, err := s.vendors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	if limit <= 0 {
		limit = DefaultTopVendors
	}

	active := make([]*entity.Vendor, 0, len(vendors))
	for _, v := range vendors {
		if v.Active {
			active = append(active, v)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Spend.GreaterThan(active[j].Spend)
	})
	if len(active) > limit {
		active = active[:limit]
	}
	return active, nil
}

func (s *dashboardServiceImpl) RecentRequests(ctx context.Context, department string, limit int) ([]*entity.Request, error) {
	all, err := s.requests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	if limit <= 0 {
		limit = DefaultRecent
	}

	dept := strings.TrimSpace(department)
	out := make([]*entity.Request, 0, limit)
	for _, req := range all {
		if dept != "" && !strings.EqualFold(dept, "all") && !strings.EqualFold(req.Department, entity.NormalizeDepartment(dept)) {
			continue
		}
		out = append(out, req)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *dashboardServiceImpl) Summary(ctx context.Context) (*entity.Summary, error) {
	all, err := s.requests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	vendors, err := s.vendors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}

	summary := &entity.Summary{TotalRequests: len(all), TotalSpent: decimal.Zero}
	for _, req := range all {
		switch req.Status {
		case entity.StatusPending:
			summary.PendingApproval++
		case entity.StatusApproved, entity.StatusCompleted:
			summary.TotalSpent = summary.TotalSpent.Add(req.Amount)
		}
	}
	for _, v := range vendors {
		if v.Active {
			summary.ActiveVendors++
		}
	}
	return summary, nil
}

func (s *dashboardServiceImpl) Vendors(ctx context.Context) ([]*entity.Vendor, error) {
	vendors, err := s.vendors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	return vendors, nil
}
