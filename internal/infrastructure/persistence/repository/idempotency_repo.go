package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/procurement-hub/internal/application/port"
	"github.com/garyjia/procurement-hub/internal/infrastructure/persistence/sqlite"
)

// IdempotencyRepository implements port.IdempotencyRepository on SQLite
type IdempotencyRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewIdempotencyRepository creates a new idempotency key repository
func NewIdempotencyRepository(db *sqlite.DB, logger *zap.Logger) port.IdempotencyRepository {
	return &IdempotencyRepository{
		db:     db,
		logger: logger,
	}
}

// Get returns the record stored under key, or nil when the key is unknown
func (r *IdempotencyRepository) Get(ctx context.Context, key string) (*port.IdempotencyRecord, error) {
	var rec port.IdempotencyRecord
	err := sqlite.ExecutorFrom(ctx, r.db.DB).QueryRowContext(ctx, `
		SELECT key, request_hash, request_id, created_at
		FROM idempotency_keys
		WHERE key = ?
	`, key).Scan(&rec.Key, &rec.RequestHash, &rec.RequestID, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get idempotency key", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to get idempotency key: %w", err)
	}
	return &rec, nil
}

// Save stores a record; a key can only be saved once
func (r *IdempotencyRepository) Save(ctx context.Context, rec *port.IdempotencyRecord) error {
	_, err := sqlite.ExecutorFrom(ctx, r.db.DB).ExecContext(ctx, `
		INSERT INTO idempotency_keys (key, request_hash, request_id, created_at)
		VALUES (?, ?, ?, ?)
	`, rec.Key, rec.RequestHash, rec.RequestID, rec.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", port.ErrIdempotencyConflict, rec.Key)
		}
		r.logger.Error("Failed to save idempotency key", zap.String("key", rec.Key), zap.Error(err))
		return fmt.Errorf("failed to save idempotency key: %w", err)
	}
	return nil
}
