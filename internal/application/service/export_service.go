package service

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/garyjia/procurement-hub/internal/domain/entity"
	"github.com/garyjia/procurement-hub/internal/domain/filter"
)

// Workbook layout
const (
	requestsSheet = "Requests"
	itemsSheet    = "Line Items"
	dateLayout    = "2006-01-02"

	// built-in excel number format "#,##0.00"
	moneyNumFmt = 4
)

var requestHeader = []interface{}{
	"ID", "Title", "Requester", "Department", "Type", "Priority", "Status", "Amount", "Items", "Created", "Due",
}

var itemHeader = []interface{}{
	"Request ID", "Line", "Description", "Quantity", "Unit Price", "Total",
}

// ExportService writes request listings as spreadsheets
type ExportService interface {
	// WriteRequests writes the requests matching q as an xlsx workbook and returns how many were written
	WriteRequests(ctx context.Context, q filter.Query, w io.Writer) (int, error)
}

type exportServiceImpl struct {
	requests RequestService
	logger   Logger
}

// NewExportService creates a new ExportService
func NewExportService(requests RequestService, logger Logger) ExportService {
	return &exportServiceImpl{
		requests: requests,
		logger:   loggerOrNop(logger),
	}
}

func (s *exportServiceImpl) WriteRequests(ctx context.Context, q filter.Query, w io.Writer) (int, error) {
	reqs, err := s.requests.Filter(ctx, q)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", requestsSheet); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return 0, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E2E8F0"}},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: moneyNumFmt})
	if err != nil {
		return 0, fmt.Errorf("failed to create money style: %w", err)
	}

	if err := writeHeader(f, requestsSheet, requestHeader, headerStyle); err != nil {
		return 0, err
	}
	if err := writeHeader(f, itemsSheet, itemHeader, headerStyle); err != nil {
		return 0, err
	}

	itemRow := 2
	for i, req := range reqs {
		row := i + 2
		if err := setRow(f, requestsSheet, row, requestRow(req)); err != nil {
			return 0, err
		}
		if err := f.SetCellStyle(requestsSheet, cell("H", row), cell("H", row), moneyStyle); err != nil {
			return 0, fmt.Errorf("failed to style amount at row %d: %w", row, err)
		}

		for line, item := range req.Items {
			values := []interface{}{
				req.ID,
				line + 1,
				item.Description,
				item.Quantity,
				item.UnitPrice.InexactFloat64(),
				item.Total().InexactFloat64(),
			}
			if err := setRow(f, itemsSheet, itemRow, values); err != nil {
				return 0, err
			}
			if err := f.SetCellStyle(itemsSheet, cell("E", itemRow), cell("F", itemRow), moneyStyle); err != nil {
				return 0, fmt.Errorf("failed to style item at row %d: %w", itemRow, err)
			}
			itemRow++
		}
	}

	if err := f.SetColWidth(requestsSheet, "B", "B", 36); err != nil {
		return 0, fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetColWidth(itemsSheet, "C", "C", 36); err != nil {
		return 0, fmt.Errorf("failed to size columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Requests exported", "count", len(reqs), "search", q.Text, "status", q.Status, "department", q.Department)
	return len(reqs), nil
}

func requestRow(req *entity.Request) []interface{} {
	due := ""
	if req.DueDate != nil {
		due = req.DueDate.Format(dateLayout)
	}
	return []interface{}{
		req.ID,
		req.Title,
		req.Requester,
		req.Department,
		req.RequestType,
		req.Priority,
		req.Status.Badge().Label,
		req.Amount.InexactFloat64(),
		len(req.Items),
		req.CreatedAt.Format(dateLayout),
		due,
	}
}

func writeHeader(f *excelize.File, sheet string, header []interface{}, style int) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("failed to resolve header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", sheet, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	if err := f.SetSheetRow(sheet, cell("A", row), &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
