package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-hub/internal/application/port"
	"github.com/garyjia/procurement-hub/internal/domain/entity"
	"github.com/garyjia/procurement-hub/internal/infrastructure/persistence/sqlite"
)

// RequestRepository implements port.RequestRepository on SQLite
type RequestRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *sqlite.DB, logger *zap.Logger) port.RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

const selectRequestColumns = `
	SELECT id, title, requester, department, request_type, priority, justification,
		due_date, status, amount, derived_from, created_at, updated_at
	FROM purchase_requests
`

// Get retrieves a request with its items, approval chain and timeline
func (r *RequestRepository) Get(ctx context.Context, id string) (*entity.Request, error) {
	exec := sqlite.ExecutorFrom(ctx, r.db.DB)

	req, err := scanRequest(exec.QueryRowContext(ctx, selectRequestColumns+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get request", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	byID := map[string]*entity.Request{req.ID: req}
	if err := r.loadChildren(ctx, exec, byID, "WHERE request_id = ?", id); err != nil {
		return nil, err
	}
	return req, nil
}

// List returns every request, newest first
func (r *RequestRepository) List(ctx context.Context) ([]*entity.Request, error) {
	exec := sqlite.ExecutorFrom(ctx, r.db.DB)

	rows, err := exec.QueryContext(ctx, selectRequestColumns+" ORDER BY seq DESC")
	if err != nil {
		r.logger.Error("Failed to list requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.Request
	byID := make(map[string]*entity.Request)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
		byID[req.ID] = req
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", err)
	}

	if err := r.loadChildren(ctx, exec, byID, ""); err != nil {
		return nil, err
	}
	return requests, nil
}

// Create stores a new request and assigns the next RFQ id when none is set
func (r *RequestRepository) Create(ctx context.Context, req *entity.Request) error {
	return r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		exec := sqlite.ExecutorFrom(txCtx, r.db.DB)

		seq, err := r.sequenceFor(txCtx, exec, req)
		if err != nil {
			return err
		}

		_, err = exec.ExecContext(txCtx, `
			INSERT INTO purchase_requests (
				id, seq, title, requester, department, request_type, priority, justification,
				due_date, status, amount, derived_from, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			req.ID, seq, req.Title, req.Requester, req.Department, req.RequestType, req.Priority,
			req.Justification, nullTime(req.DueDate), string(req.Status), req.Amount.StringFixed(2),
			req.DerivedFrom, req.CreatedAt.UTC(), req.UpdatedAt.UTC(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", port.ErrRequestExists, req.ID)
			}
			r.logger.Error("Failed to create request", zap.String("id", req.ID), zap.Error(err))
			return fmt.Errorf("failed to create request: %w", err)
		}

		if err := r.writeItems(txCtx, exec, req); err != nil {
			return err
		}
		if err := r.writeSteps(txCtx, exec, req); err != nil {
			return err
		}
		return r.appendEvents(txCtx, exec, req.ID, 0, req.Timeline)
	})
}

// Update replaces a stored request. Items and steps are rewritten; events are only appended.
func (r *RequestRepository) Update(ctx context.Context, req *entity.Request) error {
	return r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		exec := sqlite.ExecutorFrom(txCtx, r.db.DB)

		stored, err := r.loadEvents(txCtx, exec, req.ID)
		if err != nil {
			return err
		}
		if err := port.CheckTimelineAppend(stored, req.Timeline); err != nil {
			return fmt.Errorf("failed to update request %s: %w", req.ID, err)
		}

		result, err := exec.ExecContext(txCtx, `
			UPDATE purchase_requests SET
				title = ?, requester = ?, department = ?, request_type = ?, priority = ?,
				justification = ?, due_date = ?, status = ?, amount = ?, derived_from = ?,
				updated_at = ?
			WHERE id = ?
		`,
			req.Title, req.Requester, req.Department, req.RequestType, req.Priority,
			req.Justification, nullTime(req.DueDate), string(req.Status), req.Amount.StringFixed(2),
			req.DerivedFrom, req.UpdatedAt.UTC(), req.ID,
		)
		if err != nil {
			r.logger.Error("Failed to update request", zap.String("id", req.ID), zap.Error(err))
			return fmt.Errorf("failed to update request: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", port.ErrRequestNotFound, req.ID)
		}

		for _, table := range []string{"request_items", "approval_steps"} {
			if _, err := exec.ExecContext(txCtx, "DELETE FROM "+table+" WHERE request_id = ?", req.ID); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		if err := r.writeItems(txCtx, exec, req); err != nil {
			return err
		}
		if err := r.writeSteps(txCtx, exec, req); err != nil {
			return err
		}
		return r.appendEvents(txCtx, exec, req.ID, len(stored), req.Timeline[len(stored):])
	})
}

// Delete removes a request and, through cascading keys, its children
func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	result, err := sqlite.ExecutorFrom(ctx, r.db.DB).ExecContext(ctx, "DELETE FROM purchase_requests WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete request", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete request: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", port.ErrRequestNotFound, id)
	}
	return nil
}

func (r *RequestRepository) sequenceFor(ctx context.Context, exec sqlite.Executor, req *entity.Request) (int, error) {
	if req.ID != "" {
		_, seq, err := entity.ParseRequestID(req.ID)
		if err != nil {
			return 0, err
		}
		return seq, nil
	}

	var highest int
	if err := exec.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM purchase_requests").Scan(&highest); err != nil {
		return 0, fmt.Errorf("failed to read request sequence: %w", err)
	}
	seq := entity.NextSequence(highest)
	req.ID = entity.FormatRequestID(req.CreatedAt.Year(), seq)
	return seq, nil
}

func (r *RequestRepository) writeItems(ctx context.Context, exec sqlite.Executor, req *entity.Request) error {
	for pos, item := range req.Items {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO request_items (request_id, position, description, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?)
		`, req.ID, pos, item.Description, item.Quantity, item.UnitPrice.StringFixed(2))
		if err != nil {
			r.logger.Error("Failed to write line item", zap.String("id", req.ID), zap.Int("position", pos), zap.Error(err))
			return fmt.Errorf("failed to write line item: %w", err)
		}
	}
	return nil
}

func (r *RequestRepository) writeSteps(ctx context.Context, exec sqlite.Executor, req *entity.Request) error {
	for pos, step := range req.Approvers {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO approval_steps (request_id, position, approver_name, role, status, decided_at, comment)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, req.ID, pos, step.ApproverName, step.Role, string(step.Status), nullTime(step.DecidedAt), step.Comment)
		if err != nil {
			r.logger.Error("Failed to write approval step", zap.String("id", req.ID), zap.Int("position", pos), zap.Error(err))
			return fmt.Errorf("failed to write approval step: %w", err)
		}
	}
	return nil
}

func (r *RequestRepository) appendEvents(ctx context.Context, exec sqlite.Executor, requestID string, offset int, events []entity.TimelineEvent) error {
	for i, evt := range events {
		var comment sql.NullString
		if evt.Comment != nil {
			comment = sql.NullString{String: *evt.Comment, Valid: true}
		}
		_, err := exec.ExecContext(ctx, `
			INSERT INTO request_events (id, request_id, position, occurred_at, actor, action, comment)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, evt.ID, requestID, offset+i, evt.Timestamp.UTC(), evt.Actor, evt.Action, comment)
		if err != nil {
			r.logger.Error("Failed to append event", zap.String("id", requestID), zap.Error(err))
			return fmt.Errorf("failed to append event: %w", err)
		}
	}
	return nil
}

func (r *RequestRepository) loadEvents(ctx context.Context, exec sqlite.Executor, requestID string) ([]entity.TimelineEvent, error) {
	holder := &entity.Request{ID: requestID}
	if err := r.loadTimeline(ctx, exec, map[string]*entity.Request{requestID: holder}, "WHERE request_id = ?", requestID); err != nil {
		return nil, err
	}
	return holder.Timeline, nil
}

// loadChildren fills items, approvers and timeline for the requests in byID
func (r *RequestRepository) loadChildren(ctx context.Context, exec sqlite.Executor, byID map[string]*entity.Request, where string, args ...interface{}) error {
	if len(byID) == 0 {
		return nil
	}

	rows, err := exec.QueryContext(ctx, `
		SELECT request_id, description, quantity, unit_price
		FROM request_items `+where+` ORDER BY request_id, position`, args...)
	if err != nil {
		return fmt.Errorf("failed to load line items: %w", err)
	}
	for rows.Next() {
		var requestID string
		var item entity.LineItem
		if err := rows.Scan(&requestID, &item.Description, &item.Quantity, &item.UnitPrice); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan line item: %w", err)
		}
		if req, ok := byID[requestID]; ok {
			req.Items = append(req.Items, item)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate line items: %w", err)
	}

	rows, err = exec.QueryContext(ctx, `
		SELECT request_id, approver_name, role, status, decided_at, comment
		FROM approval_steps `+where+` ORDER BY request_id, position`, args...)
	if err != nil {
		return fmt.Errorf("failed to load approval steps: %w", err)
	}
	for rows.Next() {
		var requestID, status string
		var decidedAt sql.NullTime
		var step entity.ApprovalStep
		if err := rows.Scan(&requestID, &step.ApproverName, &step.Role, &status, &decidedAt, &step.Comment); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan approval step: %w", err)
		}
		step.Status = entity.StepStatus(status)
		if decidedAt.Valid {
			at := decidedAt.Time.UTC()
			step.DecidedAt = &at
		}
		if req, ok := byID[requestID]; ok {
			req.Approvers = append(req.Approvers, step)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate approval steps: %w", err)
	}

	return r.loadTimeline(ctx, exec, byID, where, args...)
}

func (r *RequestRepository) loadTimeline(ctx context.Context, exec sqlite.Executor, byID map[string]*entity.Request, where string, args ...interface{}) error {
	rows, err := exec.QueryContext(ctx, `
		SELECT request_id, id, occurred_at, actor, action, comment
		FROM request_events `+where+` ORDER BY request_id, position`, args...)
	if err != nil {
		return fmt.Errorf("failed to load timeline: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var requestID string
		var comment sql.NullString
		var evt entity.TimelineEvent
		if err := rows.Scan(&requestID, &evt.ID, &evt.Timestamp, &evt.Actor, &evt.Action, &comment); err != nil {
			return fmt.Errorf("failed to scan event: %w", err)
		}
		evt.Timestamp = evt.Timestamp.UTC()
		if comment.Valid {
			c := comment.String
			evt.Comment = &c
		}
		if req, ok := byID[requestID]; ok {
			req.Timeline = append(req.Timeline, evt)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*entity.Request, error) {
	var req entity.Request
	var status string
	var dueDate sql.NullTime
	var amount decimal.Decimal

	err := row.Scan(
		&req.ID,
		&req.Title,
		&req.Requester,
		&req.Department,
		&req.RequestType,
		&req.Priority,
		&req.Justification,
		&dueDate,
		&status,
		&amount,
		&req.DerivedFrom,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Status = entity.Status(status)
	req.Amount = amount
	req.CreatedAt = req.CreatedAt.UTC()
	req.UpdatedAt = req.UpdatedAt.UTC()
	if dueDate.Valid {
		due := dueDate.Time.UTC()
		req.DueDate = &due
	}
	return &req, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
