package comment

import (
	"context"

	"github.com/go-faster/errors"
)

// Score bounds for a submitted comment.
const (
	MinScore = 1
	MaxScore = 5
)

// Sentinel errors for comment validation.
var (
	ErrEmptyComment = errors.New("comment required")
	ErrInvalidScore = errors.New("score must be between 1 and 5")
	ErrNoTarget     = errors.New("no matching line item in order")
)

// Entry is one published comment on a SKU, paired with the author's
// display name.
type Entry struct {
	Username string
	Comment  string
	Score    int
}

// Repository provides comment reads and the single-shot line item update.
type Repository interface {
	// ListBySKU returns every non-empty comment across all orders that
	// reference the SKU, joined with the commenting user's name, in
	// insertion order.
	ListBySKU(ctx context.Context, skuID int64) ([]Entry, error)
	// SetComment overwrites the comment and score of one line item.
	SetComment(ctx context.Context, goodID int64, comment string, score int) error
}
