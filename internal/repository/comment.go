package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/mall-orders/internal/domain/comment"
)

const (
	// One explicit join instead of per-row relationship traversal: the
	// author's name comes from the order that owns the line item.
	listCommentsBySKUSQL = `SELECT u.username, og.comment, og.score
		FROM order_goods og
		JOIN orders o ON o.id = og.order_id
		JOIN users u ON u.id = o.user_id
		WHERE og.sku_id = $1 AND og.comment <> ''
		ORDER BY og.id`

	setCommentSQL = `UPDATE order_goods SET comment = $2, score = $3
		WHERE id = $1`
)

var _ comment.Repository = (*CommentRepository)(nil)

// CommentRepository implements comment.Repository backed by PostgreSQL.
type CommentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository returns a CommentRepository that uses the given pool.
func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

// ListBySKU returns every published comment on the SKU with the author's
// display name, in line item insertion order.
func (r *CommentRepository) ListBySKU(ctx context.Context, skuID int64) ([]comment.Entry, error) {
	rows, err := r.pool.Query(ctx, listCommentsBySKUSQL, skuID)
	if err != nil {
		return nil, errors.Wrapf(err, "list comments for sku %d", skuID)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (comment.Entry, error) {
		var e comment.Entry
		err := row.Scan(&e.Username, &e.Comment, &e.Score)
		return e, err
	})
}

// SetComment overwrites the comment and score of one line item.
func (r *CommentRepository) SetComment(ctx context.Context, goodID int64, text string, score int) error {
	tag, err := r.pool.Exec(ctx, setCommentSQL, goodID, text, score)
	if err != nil {
		return errors.Wrapf(err, "set comment on good %d", goodID)
	}
	if tag.RowsAffected() == 0 {
		return errors.Errorf("order good %d not found", goodID)
	}
	return nil
}
