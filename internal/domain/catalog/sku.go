package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// SKU represents a purchasable catalog item.
type SKU struct {
	ID           int64
	Name         string
	Price        decimal.Decimal
	Stock        int
	DefaultImage string
}

// Repository defines read operations for the catalog. Stock mutation happens
// inside the order creation transaction and is owned by the order repository.
type Repository interface {
	// GetByIDs returns the SKUs for the given ids, ordered by id. Missing ids
	// are omitted, not errors; callers decide whether a gap is fatal.
	GetByIDs(ctx context.Context, ids []int64) ([]SKU, error)
}
