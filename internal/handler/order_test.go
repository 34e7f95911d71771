package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/mall-orders/internal/domain/order"
)

func TestSettlement(t *testing.T) {
	env := newEnv()

	rec := env.request(t, http.MethodGet, "/orders/settlement/", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Freight string `json:"freight"`
		SKUs    []struct {
			ID    int64  `json:"id"`
			Price string `json:"price"`
			Count int    `json:"count"`
		} `json:"skus"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "10", resp.Freight)
	require.Len(t, resp.SKUs, 2)
	// SKU 103 is in the cart but not selected, so it must not appear.
	assert.Equal(t, int64(101), resp.SKUs[0].ID)
	assert.Equal(t, "10.00", resp.SKUs[0].Price)
	assert.Equal(t, 2, resp.SKUs[0].Count)
	assert.Equal(t, int64(102), resp.SKUs[1].ID)
	assert.Equal(t, 1, resp.SKUs[1].Count)
}

func TestSettlement_EmptyCart(t *testing.T) {
	env := newEnv()
	env.carts.selected = nil

	rec := env.request(t, http.MethodGet, "/orders/settlement/", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Freight string            `json:"freight"`
		SKUs    []json.RawMessage `json:"skus"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "10", resp.Freight)
	assert.NotNil(t, resp.SKUs)
	assert.Empty(t, resp.SKUs)
}

func TestSettlement_Unauthenticated(t *testing.T) {
	env := newEnv()

	rec := env.request(t, http.MethodGet, "/orders/settlement/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSettlement_BadToken(t *testing.T) {
	env := newEnv()

	rec := env.request(t, http.MethodGet, "/orders/settlement/", "wrong-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlaceOrder(t *testing.T) {
	env := newEnv()

	rec := env.request(t, http.MethodPost, "/orders/", testToken,
		jsonBody(`{"address_id": 7, "pay_method": "alipay"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ID          int64  `json:"id"`
		Status      string `json:"status"`
		TotalAmount string `json:"total_amount"`
		Goods       []struct {
			SKUID int64 `json:"sku_id"`
			Count int   `json:"count"`
		} `json:"goods"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, int64(1001), resp.ID)
	assert.Equal(t, "unpaid", resp.Status)
	assert.Equal(t, "50.00", resp.TotalAmount) // 2*10.00 + 1*20.00 + 10 freight
	require.Len(t, resp.Goods, 2)

	// Checked-out entries cleared from the cart.
	assert.Equal(t, []int64{101, 102}, env.carts.cleared)
}

func TestPlaceOrder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing address", `{"pay_method": "alipay"}`, "address_id"},
		{"missing pay method", `{"address_id": 7}`, "pay_method"},
		{"unknown pay method", `{"address_id": 7, "pay_method": "barter"}`, "pay_method"},
		{"nonexistent address", `{"address_id": 999, "pay_method": "alipay"}`, "address_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv()

			rec := env.request(t, http.MethodPost, "/orders/", testToken, jsonBody(tt.body))
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp struct {
				Fields []FieldError `json:"fields"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.NotEmpty(t, resp.Fields)
			assert.Equal(t, tt.field, resp.Fields[0].Field)
		})
	}
}

func TestPlaceOrder_ForeignAddress(t *testing.T) {
	env := newEnv()
	env.addrs.byID[7].UserID = 99

	rec := env.request(t, http.MethodPost, "/orders/", testToken,
		jsonBody(`{"address_id": 7, "pay_method": "alipay"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "address_id")
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	env := newEnv()
	env.carts.selected = nil

	rec := env.request(t, http.MethodPost, "/orders/", testToken,
		jsonBody(`{"address_id": 7, "pay_method": "alipay"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	env := newEnv()
	env.orders.createErr = &order.InsufficientStockError{SKUID: 101}

	rec := env.request(t, http.MethodPost, "/orders/", testToken,
		jsonBody(`{"address_id": 7, "pay_method": "alipay"}`))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Nil(t, env.carts.cleared)
}

func TestPlaceOrder_InvalidJSON(t *testing.T) {
	env := newEnv()

	rec := env.request(t, http.MethodPost, "/orders/", testToken, jsonBody(`{`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUncommentGoods(t *testing.T) {
	env := newEnv()

	rec := env.request(t, http.MethodGet, "/orders/5/uncommentgoods/", testToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []struct {
		SKUID   int64  `json:"sku_id"`
		Comment string `json:"comment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// Both line items returned, including the already-commented one.
	require.Len(t, resp, 2)
	assert.Equal(t, "nice", resp[1].Comment)
}

func TestUncommentGoods_NotFound(t *testing.T) {
	env := newEnv()

	rec := env.request(t, http.MethodGet, "/orders/999/uncommentgoods/", testToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUncommentGoods_ForeignOrder(t *testing.T) {
	env := newEnv()
	env.orders.byID[5].UserID = 99

	rec := env.request(t, http.MethodGet, "/orders/5/uncommentgoods/", testToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUncommentGoods_InvalidID(t *testing.T) {
	env := newEnv()

	rec := env.request(t, http.MethodGet, "/orders/abc/uncommentgoods/", testToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
