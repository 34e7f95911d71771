package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/mall-orders/internal/domain/address"
)

const getAddressByIDSQL = `SELECT id, user_id, receiver, province, city, district, detail, phone
	FROM addresses WHERE id = $1`

var _ address.Repository = (*AddressRepository)(nil)

// AddressRepository implements address.Repository backed by PostgreSQL.
type AddressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository returns an AddressRepository that uses the given pool.
func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

// GetByID returns a single address by its identifier.
func (r *AddressRepository) GetByID(ctx context.Context, id int64) (*address.Address, error) {
	rows, err := r.pool.Query(ctx, getAddressByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get address %d", id)
	}

	a, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (address.Address, error) {
		var a address.Address
		err := row.Scan(&a.ID, &a.UserID, &a.Receiver, &a.Province, &a.City, &a.District, &a.Detail, &a.Phone)
		return a, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, address.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get address %d", id)
	}
	return &a, nil
}
