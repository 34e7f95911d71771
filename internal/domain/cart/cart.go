// Package cart defines the contract for the volatile cart store.
//
// Cart state lives in a key-value cache keyed by user: a set of SKU IDs the
// user has ticked for checkout, and a hash mapping SKU ID to quantity. The
// two reads are separate round trips with no atomicity guarantee, which is
// acceptable for a settlement preview; order creation re-reads at commit time.
package cart

import (
	"context"
	"slices"
)

// Store reads and clears a user's cart state.
type Store interface {
	// SelectedIDs returns the SKU IDs the user has marked for checkout.
	SelectedIDs(ctx context.Context, userID int64) ([]int64, error)
	// Quantities returns the full SKU ID -> quantity map of the user's cart.
	Quantities(ctx context.Context, userID int64) (map[int64]int, error)
	// Clear removes the given SKU IDs from both the selected set and the
	// quantity map. Called after a successful checkout.
	Clear(ctx context.Context, userID int64, skuIDs []int64) error
}

// Snapshot is the checked-out part of a cart: only selected SKU IDs, each
// with its requested quantity.
type Snapshot struct {
	SKUIDs     []int64
	Quantities map[int64]int
}

// NewSnapshot intersects the selected set with the quantity map. Selected IDs
// without a quantity entry (concurrent cart mutation between the two reads)
// are dropped. IDs are sorted: set membership carries no order, and line
// items need a stable one.
func NewSnapshot(selected []int64, quantities map[int64]int) Snapshot {
	s := Snapshot{
		SKUIDs:     make([]int64, 0, len(selected)),
		Quantities: make(map[int64]int, len(selected)),
	}
	for _, id := range selected {
		count, ok := quantities[id]
		if !ok || count <= 0 {
			continue
		}
		s.SKUIDs = append(s.SKUIDs, id)
		s.Quantities[id] = count
	}
	slices.Sort(s.SKUIDs)
	return s
}

// Empty reports whether the snapshot has no checked-out items.
func (s Snapshot) Empty() bool {
	return len(s.SKUIDs) == 0
}
