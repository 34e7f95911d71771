package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/mall-orders/internal/domain/catalog"
)

const getSKUsByIDsSQL = `SELECT id, name, price, stock, default_image
	FROM skus WHERE id = ANY($1) ORDER BY id`

var _ catalog.Repository = (*SKURepository)(nil)

// SKURepository implements catalog.Repository backed by PostgreSQL.
type SKURepository struct {
	pool *pgxpool.Pool
}

// NewSKURepository returns a SKURepository that uses the given pool.
func NewSKURepository(pool *pgxpool.Pool) *SKURepository {
	return &SKURepository{pool: pool}
}

// GetByIDs returns the SKUs matching any of the given IDs. Missing IDs are
// simply absent from the result.
func (r *SKURepository) GetByIDs(ctx context.Context, ids []int64) ([]catalog.SKU, error) {
	rows, err := r.pool.Query(ctx, getSKUsByIDsSQL, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get skus by ids")
	}
	return pgx.CollectRows(rows, scanSKU)
}

func scanSKU(row pgx.CollectableRow) (catalog.SKU, error) {
	var sku catalog.SKU
	err := row.Scan(&sku.ID, &sku.Name, &sku.Price, &sku.Stock, &sku.DefaultImage)
	return sku, err
}
