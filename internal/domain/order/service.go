package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/mall-orders/internal/domain/address"
	"github.com/xenking/mall-orders/internal/domain/cart"
	"github.com/xenking/mall-orders/internal/domain/catalog"
)

// SettlementSKU is a catalog record annotated with the quantity the user is
// checking out.
type SettlementSKU struct {
	catalog.SKU
	Count int
}

// Settlement is the pre-checkout charge preview for the user's selected
// cart items.
type Settlement struct {
	Freight decimal.Decimal
	SKUs    []SettlementSKU
}

// PlaceOrderRequest holds the validated input for placing an order. The cart
// contents are not part of the request; they are re-read from the cart store
// at commit time.
type PlaceOrderRequest struct {
	AddressID int64
	PayMethod PayMethod
}

// Service implements settlement preview, order creation, and the
// per-order line item listing.
type Service struct {
	carts     cart.Store
	skus      catalog.Repository
	addresses address.Repository
	orders    Repository
	freight   decimal.Decimal
}

// NewService creates an order Service. freight is the flat shipping charge
// applied to every order.
func NewService(
	carts cart.Store,
	skus catalog.Repository,
	addresses address.Repository,
	orders Repository,
	freight decimal.Decimal,
) *Service {
	return &Service{
		carts:     carts,
		skus:      skus,
		addresses: addresses,
		orders:    orders,
		freight:   freight,
	}
}

// snapshot reads the selected set and the quantity map concurrently and
// intersects them. The two reads are not atomic; see cart.NewSnapshot.
func (s *Service) snapshot(ctx context.Context, userID int64) (cart.Snapshot, error) {
	var (
		selected   []int64
		quantities map[int64]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		selected, err = s.carts.SelectedIDs(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		quantities, err = s.carts.Quantities(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return cart.Snapshot{}, errors.Wrap(err, "read cart")
	}
	return cart.NewSnapshot(selected, quantities), nil
}

// Settle produces the settlement preview: every selected cart item with its
// current catalog record and requested quantity, plus the flat freight.
// Selected IDs missing from the catalog are dropped, not surfaced.
func (s *Service) Settle(ctx context.Context, userID int64) (*Settlement, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &Settlement{
		Freight: s.freight,
		SKUs:    []SettlementSKU{},
	}
	if snap.Empty() {
		return result, nil
	}

	skus, err := s.skus.GetByIDs(ctx, snap.SKUIDs)
	if err != nil {
		return nil, errors.Wrap(err, "get skus")
	}

	found := make(map[int64]struct{}, len(skus))
	for _, sku := range skus {
		found[sku.ID] = struct{}{}
		result.SKUs = append(result.SKUs, SettlementSKU{
			SKU:   sku,
			Count: snap.Quantities[sku.ID],
		})
	}
	for _, id := range snap.SKUIDs {
		if _, ok := found[id]; !ok {
			zctx.From(ctx).Debug("Selected sku missing from catalog, dropped",
				zap.Int64("sku_id", id),
				zap.Int64("user_id", userID),
			)
		}
	}

	return result, nil
}

// PlaceOrder validates the address and pay method, re-derives the cart
// snapshot, and persists the order atomically with stock decrement. The
// checked-out cart entries are cleared after commit, best-effort.
func (s *Service) PlaceOrder(ctx context.Context, userID int64, req PlaceOrderRequest) (*Order, error) {
	if !req.PayMethod.Valid() {
		return nil, ErrInvalidPay
	}

	addr, err := s.addresses.GetByID(ctx, req.AddressID)
	if err != nil {
		if errors.Is(err, address.ErrNotFound) {
			return nil, address.ErrNotFound
		}
		return nil, errors.Wrap(err, "get address")
	}
	if addr.UserID != userID {
		return nil, ErrAddressNotOwned
	}

	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snap.Empty() {
		return nil, ErrEmptyCart
	}

	skus, err := s.skus.GetByIDs(ctx, snap.SKUIDs)
	if err != nil {
		return nil, errors.Wrap(err, "get skus")
	}
	skuMap := make(map[int64]catalog.SKU, len(skus))
	for _, sku := range skus {
		skuMap[sku.ID] = sku
	}

	// A preview tolerates catalog gaps; the final computation does not.
	goods := make([]OrderGood, 0, len(snap.SKUIDs))
	total := s.freight
	for _, id := range snap.SKUIDs {
		sku, ok := skuMap[id]
		if !ok {
			return nil, &SKUNotFoundError{SKUID: id}
		}
		count := snap.Quantities[id]
		goods = append(goods, OrderGood{
			SKUID: sku.ID,
			Name:  sku.Name,
			Price: sku.Price,
			Image: sku.DefaultImage,
			Count: count,
		})
		total = total.Add(sku.Price.Mul(decimal.NewFromInt(int64(count))))
	}

	o := &Order{
		UserID:      userID,
		Status:      StatusUnpaid,
		TotalAmount: total.Round(2),
		Freight:     s.freight,
		AddressID:   req.AddressID,
		PayMethod:   req.PayMethod,
		Goods:       goods,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	if err := s.carts.Clear(ctx, userID, snap.SKUIDs); err != nil {
		// The order stands; stale cart entries are the lesser evil.
		zctx.From(ctx).Warn("Clear cart after checkout failed",
			zap.Int64("user_id", userID),
			zap.Int64("order_id", o.ID),
			zap.Error(err),
		)
	}

	return o, nil
}

// ListGoods returns all line items of the given order after checking that it
// belongs to the requesting user.
func (s *Service) ListGoods(ctx context.Context, userID, orderID int64) ([]OrderGood, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotOwned
	}
	return s.orders.ListGoods(ctx, orderID)
}
