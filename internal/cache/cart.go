// Package cache implements the cart store against Redis.
//
// Key layout is fixed by convention shared with the cart-facing frontend:
//
//	cart_selected_<user_id>  SET  of SKU IDs marked for checkout
//	cart_<user_id>           HASH sku_id -> quantity
//
// Values are string-encoded integers.
package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/xenking/mall-orders/internal/domain/cart"
)

var _ cart.Store = (*CartStore)(nil)

// CartStore reads and clears per-user cart state from Redis.
type CartStore struct {
	client *redis.Client
}

// NewCartStore returns a CartStore backed by the given client.
func NewCartStore(client *redis.Client) *CartStore {
	return &CartStore{client: client}
}

// Ping checks connectivity for readiness probes.
func (s *CartStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func selectedKey(userID int64) string {
	return fmt.Sprintf("cart_selected_%d", userID)
}

func cartKey(userID int64) string {
	return fmt.Sprintf("cart_%d", userID)
}

// SelectedIDs returns the SKU IDs the user has ticked for checkout. A missing
// key is an empty selection, not an error.
func (s *CartStore) SelectedIDs(ctx context.Context, userID int64) ([]int64, error) {
	members, err := s.client.SMembers(ctx, selectedKey(userID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "smembers")
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed sku id %q in %s", m, selectedKey(userID))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Quantities returns the full cart quantity map. A missing key is an empty
// cart, not an error.
func (s *CartStore) Quantities(ctx context.Context, userID int64) (map[int64]int, error) {
	fields, err := s.client.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "hgetall")
	}

	quantities := make(map[int64]int, len(fields))
	for field, value := range fields {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed sku id %q in %s", field, cartKey(userID))
		}
		count, err := strconv.Atoi(value)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed count %q for sku %d", value, id)
		}
		quantities[id] = count
	}
	return quantities, nil
}

// Clear removes the checked-out SKU IDs from both keys in one pipelined
// round trip.
func (s *CartStore) Clear(ctx context.Context, userID int64, skuIDs []int64) error {
	if len(skuIDs) == 0 {
		return nil
	}

	members := make([]any, len(skuIDs))
	fields := make([]string, len(skuIDs))
	for i, id := range skuIDs {
		str := strconv.FormatInt(id, 10)
		members[i] = str
		fields[i] = str
	}

	pipe := s.client.TxPipeline()
	pipe.SRem(ctx, selectedKey(userID), members...)
	pipe.HDel(ctx, cartKey(userID), fields...)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return nil
}
