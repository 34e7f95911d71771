package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status enumerates the order lifecycle states. Transitions past unpaid are
// driven by payment and fulfillment systems, not by this API.
type Status string

const (
	StatusUnpaid    Status = "unpaid"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// PayMethod enumerates the accepted payment choices at checkout.
type PayMethod string

const (
	PayAlipay         PayMethod = "alipay"
	PayWechat         PayMethod = "wechat"
	PayCashOnDelivery PayMethod = "cash_on_delivery"
)

// Valid reports whether the pay method is one of the accepted values.
func (p PayMethod) Valid() bool {
	switch p {
	case PayAlipay, PayWechat, PayCashOnDelivery:
		return true
	}
	return false
}

// Order is a persisted order header with its line items.
type Order struct {
	ID          int64
	UserID      int64
	Status      Status
	TotalAmount decimal.Decimal
	Freight     decimal.Decimal
	AddressID   int64
	PayMethod   PayMethod
	CreatedAt   time.Time
	Goods       []OrderGood
}

// OrderGood is a single line item. Name, price, and image are a catalog
// snapshot taken at purchase time; comment and score are filled in once by
// the comment subsystem after delivery.
type OrderGood struct {
	ID      int64
	OrderID int64
	SKUID   int64
	Name    string
	Price   decimal.Decimal
	Image   string
	Count   int
	Comment string
	Score   int
}

// Sentinel errors for order operations.
var (
	ErrEmptyCart       = errors.New("no items selected for checkout")
	ErrNotFound        = errors.New("order not found")
	ErrNotOwned        = errors.New("order does not belong to user")
	ErrInvalidPay      = errors.New("invalid pay method")
	ErrAddressNotOwned = errors.New("address does not belong to user")
)

// InsufficientStockError indicates a SKU ran out of stock during checkout.
type InsufficientStockError struct {
	SKUID int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for sku %d", e.SKUID)
}

// SKUNotFoundError indicates a checked-out SKU no longer exists in the
// catalog at commit time.
type SKUNotFoundError struct {
	SKUID int64
}

func (e *SKUNotFoundError) Error() string {
	return fmt.Sprintf("sku %d not found", e.SKUID)
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order header and its line items and decrements
	// catalog stock, all inside a single transaction. On success o.ID and
	// o.CreatedAt are filled in. Returns *InsufficientStockError and rolls
	// everything back when any SKU's stock cannot cover its count.
	Create(ctx context.Context, o *Order) error
	// GetByID returns the order header without line items. Returns
	// ErrNotFound when no such order exists.
	GetByID(ctx context.Context, id int64) (*Order, error)
	// ListGoods returns all line items of an order in insertion order.
	ListGoods(ctx context.Context, orderID int64) ([]OrderGood, error)
}
