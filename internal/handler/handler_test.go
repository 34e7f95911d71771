package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/mall-orders/internal/domain/address"
	"github.com/xenking/mall-orders/internal/domain/auth"
	"github.com/xenking/mall-orders/internal/domain/catalog"
	"github.com/xenking/mall-orders/internal/domain/comment"
	"github.com/xenking/mall-orders/internal/domain/order"
)

const (
	testToken  = "session-token-alice"
	testPepper = "test-pepper"
)

// --- Mock implementations ---

type mockCartStore struct {
	selected   []int64
	quantities map[int64]int
	cleared    []int64
	readErr    error
}

func (m *mockCartStore) SelectedIDs(_ context.Context, _ int64) ([]int64, error) {
	return m.selected, m.readErr
}

func (m *mockCartStore) Quantities(_ context.Context, _ int64) (map[int64]int, error) {
	return m.quantities, m.readErr
}

func (m *mockCartStore) Clear(_ context.Context, _ int64, skuIDs []int64) error {
	m.cleared = skuIDs
	return nil
}

type mockCatalogRepo struct {
	byID map[int64]catalog.SKU
}

func (m *mockCatalogRepo) GetByIDs(_ context.Context, ids []int64) ([]catalog.SKU, error) {
	out := make([]catalog.SKU, 0, len(ids))
	for _, id := range ids {
		if sku, ok := m.byID[id]; ok {
			out = append(out, sku)
		}
	}
	return out, nil
}

type mockAddressRepo struct {
	byID map[int64]*address.Address
}

func (m *mockAddressRepo) GetByID(_ context.Context, id int64) (*address.Address, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, address.ErrNotFound
	}
	return a, nil
}

type mockOrderRepo struct {
	lastOrder *order.Order
	createErr error
	byID      map[int64]*order.Order
	goods     map[int64][]order.OrderGood
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	o.ID = 1001
	m.lastOrder = o
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) ListGoods(_ context.Context, orderID int64) ([]order.OrderGood, error) {
	return m.goods[orderID], nil
}

type mockCommentRepo struct {
	entries []Entry
	setErr  error
}

// Entry aliased to keep mock fields readable.
type Entry = comment.Entry

func (m *mockCommentRepo) ListBySKU(_ context.Context, _ int64) ([]Entry, error) {
	return m.entries, nil
}

func (m *mockCommentRepo) SetComment(_ context.Context, _ int64, _ string, _ int) error {
	return m.setErr
}

type mockSessionRepo struct {
	byHash map[string]*auth.Identity
}

func (m *mockSessionRepo) FindByHash(_ context.Context, hash string) (*auth.Identity, error) {
	id, ok := m.byHash[hash]
	if !ok {
		return nil, errors.New("session not found")
	}
	return id, nil
}

// --- Test environment ---

type testEnv struct {
	carts    *mockCartStore
	skus     *mockCatalogRepo
	addrs    *mockAddressRepo
	orders   *mockOrderRepo
	comments *mockCommentRepo
	srv      http.Handler
}

func newEnv() *testEnv {
	env := &testEnv{
		carts: &mockCartStore{
			selected:   []int64{101, 102},
			quantities: map[int64]int{101: 2, 102: 1, 103: 5},
		},
		skus: &mockCatalogRepo{byID: map[int64]catalog.SKU{
			101: {ID: 101, Name: "Widget", Price: decimal.RequireFromString("10.00"), Stock: 50, DefaultImage: "w.jpg"},
			102: {ID: 102, Name: "Gadget", Price: decimal.RequireFromString("20.00"), Stock: 50, DefaultImage: "g.jpg"},
			103: {ID: 103, Name: "Gizmo", Price: decimal.RequireFromString("30.00"), Stock: 50, DefaultImage: "z.jpg"},
		}},
		addrs: &mockAddressRepo{byID: map[int64]*address.Address{
			7: {ID: 7, UserID: 42, Receiver: "Alice"},
		}},
		orders: &mockOrderRepo{
			byID: map[int64]*order.Order{5: {ID: 5, UserID: 42}},
			goods: map[int64][]order.OrderGood{
				5: {
					{ID: 71, OrderID: 5, SKUID: 101, Name: "Widget", Price: decimal.RequireFromString("10.00"), Count: 2},
					{ID: 72, OrderID: 5, SKUID: 102, Name: "Gadget", Price: decimal.RequireFromString("20.00"), Count: 1, Comment: "nice", Score: 5},
				},
			},
		},
		comments: &mockCommentRepo{},
	}

	orderSvc := order.NewService(env.carts, env.skus, env.addrs, env.orders, decimal.NewFromInt(10))
	commentSvc := comment.NewService(env.comments, env.orders)

	hash := HashToken(testToken, []byte(testPepper))
	sessions := &mockSessionRepo{byHash: map[string]*auth.Identity{
		hash: {UserID: 42, Username: "alice", TokenHash: hash},
	}}

	h := NewHandler(orderSvc, commentSvc)
	env.srv = h.Routes(NewSessionAuth(sessions, []byte(testPepper)))
	return env
}

// request performs an HTTP request against the router. An empty token sends
// no Authorization header.
func (e *testEnv) request(t *testing.T, method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func jsonBody(s string) io.Reader {
	return bytes.NewBufferString(s)
}
