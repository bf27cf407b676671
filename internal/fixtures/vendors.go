package fixtures

import (
	"github.com/shopspring/decimal"

	"github.com/garyjia/procurement-hub/internal/domain/entity"
)

// Vendors returns the sample vendor directory
func Vendors() []*entity.Vendor {
	return []*entity.Vendor{
		{ID: "SUP-001", Name: "Acme Supplies Inc.", Category: "Office Supplies", ContactEmail: "sales@acmesupplies.com", Rating: 4.5, Spend: decimal.RequireFromString("45280"), Active: true},
		{ID: "SUP-002", Name: "TechPro Solutions", Category: "IT Hardware", ContactEmail: "info@techpro.com", Rating: 4.2, Spend: decimal.RequireFromString("38750"), Active: true},
		{ID: "SUP-003", Name: "Global Software Ltd", Category: "Software", ContactEmail: "sales@globalsoftware.com", Rating: 4.8, Spend: decimal.RequireFromString("32400"), Active: true},
		{ID: "SUP-004", Name: "Meridian Services", Category: "Consulting", ContactEmail: "contact@meridianservices.com", Rating: 4.1, Spend: decimal.RequireFromString("28900"), Active: true},
		{ID: "SUP-005", Name: "Prime Logistics", Category: "Shipping", ContactEmail: "ops@primelogistics.com", Rating: 3.9, Spend: decimal.RequireFromString("26340"), Active: true},
	}
}
