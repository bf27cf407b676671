package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/procurement-hub/internal/application/port"
	"github.com/garyjia/procurement-hub/internal/domain/entity"
	"github.com/garyjia/procurement-hub/internal/infrastructure/persistence/sqlite"
)

// VendorRepository implements port.VendorRepository on SQLite
type VendorRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewVendorRepository creates a new vendor repository
func NewVendorRepository(db *sqlite.DB, logger *zap.Logger) port.VendorRepository {
	return &VendorRepository{
		db:     db,
		logger: logger,
	}
}

// List returns vendors ordered by name
func (r *VendorRepository) List(ctx context.Context) ([]*entity.Vendor, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db.DB).QueryContext(ctx, `
		SELECT id, name, category, contact_email, rating, spend, active
		FROM vendors
		ORDER BY name
	`)
	if err != nil {
		r.logger.Error("Failed to list vendors", zap.Error(err))
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	defer rows.Close()

	var vendors []*entity.Vendor
	for rows.Next() {
		var v entity.Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.Category, &v.ContactEmail, &v.Rating, &v.Spend, &v.Active); err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, &v)
	}
	return vendors, rows.Err()
}

// Create inserts a vendor
func (r *VendorRepository) Create(ctx context.Context, v *entity.Vendor) error {
	_, err := sqlite.ExecutorFrom(ctx, r.db.DB).ExecContext(ctx, `
		INSERT INTO vendors (id, name, category, contact_email, rating, spend, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, v.ID, v.Name, v.Category, v.ContactEmail, v.Rating, v.Spend.StringFixed(2), v.Active)
	if err != nil {
		r.logger.Error("Failed to create vendor", zap.String("name", v.Name), zap.Error(err))
		return fmt.Errorf("failed to create vendor: %w", err)
	}
	return nil
}
