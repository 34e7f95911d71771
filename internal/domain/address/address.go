package address

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested address does not exist.
var ErrNotFound = errors.New("address not found")

// Address is a shipping address owned by a user.
type Address struct {
	ID       int64
	UserID   int64
	Receiver string
	Province string
	City     string
	District string
	Detail   string
	Phone    string
}

// Repository provides address lookups.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Address, error)
}
