package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/mall-orders/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (user_id, status, total_amount, freight, address_id, pay_method)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	insertOrderGoodSQL = `INSERT INTO order_goods (order_id, sku_id, name, price, image, count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	// The stock condition makes the decrement optimistic: zero rows affected
	// means another checkout got there first, and the whole transaction rolls
	// back.
	decrementStockSQL = `UPDATE skus SET stock = stock - $2
		WHERE id = $1 AND stock >= $2`

	getOrderByIDSQL = `SELECT id, user_id, status, total_amount, freight, address_id, pay_method, created_at
		FROM orders WHERE id = $1`

	listOrderGoodsSQL = `SELECT id, order_id, sku_id, name, price, image, count, comment, score
		FROM order_goods WHERE order_id = $1 ORDER BY id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order header, its line items, and the stock decrement
// for every line item inside one transaction. Concurrent submissions contend
// on the conditional stock UPDATE, never on application state.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	err = tx.QueryRow(ctx, insertOrderSQL,
		o.UserID, o.Status, o.TotalAmount, o.Freight, o.AddressID, o.PayMethod,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "insert order")
	}

	for i := range o.Goods {
		g := &o.Goods[i]
		g.OrderID = o.ID

		err = tx.QueryRow(ctx, insertOrderGoodSQL,
			o.ID, g.SKUID, g.Name, g.Price, g.Image, g.Count,
		).Scan(&g.ID)
		if err != nil {
			return errors.Wrapf(err, "insert order good sku %d", g.SKUID)
		}

		tag, err := tx.Exec(ctx, decrementStockSQL, g.SKUID, g.Count)
		if err != nil {
			return errors.Wrapf(err, "decrement stock sku %d", g.SKUID)
		}
		if tag.RowsAffected() == 0 {
			return &order.InsufficientStockError{SKUID: g.SKUID}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

// GetByID returns the order header without line items.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %d", id)
	}

	o, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (order.Order, error) {
		var o order.Order
		err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalAmount,
			&o.Freight, &o.AddressID, &o.PayMethod, &o.CreatedAt)
		return o, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %d", id)
	}
	return &o, nil
}

// ListGoods returns all line items of an order in insertion order.
func (r *OrderRepository) ListGoods(ctx context.Context, orderID int64) ([]order.OrderGood, error) {
	rows, err := r.pool.Query(ctx, listOrderGoodsSQL, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "list goods of order %d", orderID)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.OrderGood, error) {
		var g order.OrderGood
		err := row.Scan(&g.ID, &g.OrderID, &g.SKUID, &g.Name, &g.Price,
			&g.Image, &g.Count, &g.Comment, &g.Score)
		return g, err
	})
}
