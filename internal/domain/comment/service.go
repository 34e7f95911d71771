package comment

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/mall-orders/internal/domain/order"
)

// SubmitRequest holds the input for commenting on a delivered order.
// SKUID selects the line item to comment on; when zero, the first line item
// of the order is used.
type SubmitRequest struct {
	SKUID   int64
	Comment string
	Score   int
}

// Service implements the comment subsystem: the public per-SKU listing and
// the authenticated submit.
type Service struct {
	comments Repository
	orders   order.Repository
}

// NewService creates a comment Service.
func NewService(comments Repository, orders order.Repository) *Service {
	return &Service{comments: comments, orders: orders}
}

// ListBySKU returns all published comments for a catalog item. A SKU with no
// comments (or no orders at all) yields an empty slice, not an error.
func (s *Service) ListBySKU(ctx context.Context, skuID int64) ([]Entry, error) {
	entries, err := s.comments.ListBySKU(ctx, skuID)
	if err != nil {
		return nil, errors.Wrap(err, "list comments")
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Submit attaches a comment and score to one line item of the given order.
// The order must exist and belong to userID. Resubmission overwrites the
// previous comment. Returns the updated line item.
func (s *Service) Submit(ctx context.Context, userID, orderID int64, req SubmitRequest) (*order.OrderGood, error) {
	if req.Comment == "" {
		return nil, ErrEmptyComment
	}
	if req.Score < MinScore || req.Score > MaxScore {
		return nil, ErrInvalidScore
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, order.ErrNotOwned
	}

	goods, err := s.orders.ListGoods(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "list order goods")
	}

	target, err := pickTarget(goods, req.SKUID)
	if err != nil {
		return nil, err
	}

	if err := s.comments.SetComment(ctx, target.ID, req.Comment, req.Score); err != nil {
		return nil, errors.Wrap(err, "set comment")
	}

	target.Comment = req.Comment
	target.Score = req.Score
	return target, nil
}

// pickTarget selects the line item to update: the one matching skuID when
// given, otherwise the first line item of the order.
func pickTarget(goods []order.OrderGood, skuID int64) (*order.OrderGood, error) {
	if len(goods) == 0 {
		return nil, ErrNoTarget
	}
	if skuID == 0 {
		return &goods[0], nil
	}
	for i := range goods {
		if goods[i].SKUID == skuID {
			return &goods[i], nil
		}
	}
	return nil, ErrNoTarget
}
