package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/mall-orders/internal/domain/address"
	"github.com/xenking/mall-orders/internal/domain/order"
)

// settlementResponse is the body of GET /orders/settlement/.
type settlementResponse struct {
	Freight decimal.Decimal         `json:"freight"`
	SKUs    []settlementSKUResponse `json:"skus"`
}

type settlementSKUResponse struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	DefaultImage string          `json:"default_image"`
	Count        int             `json:"count"`
}

// orderResponse is the body of a created order.
type orderResponse struct {
	ID          int64               `json:"id"`
	UserID      int64               `json:"user_id"`
	Status      string              `json:"status"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Freight     decimal.Decimal     `json:"freight"`
	AddressID   int64               `json:"address_id"`
	PayMethod   string              `json:"pay_method"`
	CreatedAt   time.Time           `json:"created_at"`
	Goods       []orderGoodResponse `json:"goods"`
}

type orderGoodResponse struct {
	ID      int64           `json:"id"`
	OrderID int64           `json:"order_id"`
	SKUID   int64           `json:"sku_id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Image   string          `json:"image"`
	Count   int             `json:"count"`
	Comment string          `json:"comment"`
	Score   int             `json:"score"`
}

// Settlement returns the checkout preview for the authenticated user's
// selected cart items.
func (h *Handler) Settlement(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := h.orders.Settle(r.Context(), id.UserID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	resp := settlementResponse{
		Freight: result.Freight,
		SKUs:    make([]settlementSKUResponse, len(result.SKUs)),
	}
	for i, sku := range result.SKUs {
		resp.SKUs[i] = settlementSKUResponse{
			ID:           sku.ID,
			Name:         sku.Name,
			Price:        sku.Price,
			Stock:        sku.Stock,
			DefaultImage: sku.DefaultImage,
			Count:        sku.Count,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// PlaceOrder creates an order from the user's cart snapshot and the submitted
// address and pay method.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	o, err := h.orders.PlaceOrder(r.Context(), id.UserID, order.PlaceOrderRequest{
		AddressID: req.AddressID,
		PayMethod: order.PayMethod(req.PayMethod),
	})
	if err != nil {
		h.mapPlaceOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapOrder(o))
}

// mapPlaceOrderError converts order creation errors to HTTP responses.
func (h *Handler) mapPlaceOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrInvalidPay):
		writeFieldErrors(w, []FieldError{{Field: "pay_method", Error: "must be one of alipay, wechat, cash_on_delivery"}})
	case errors.Is(err, address.ErrNotFound):
		writeFieldErrors(w, []FieldError{{Field: "address_id", Error: "address not found"}})
	case errors.Is(err, order.ErrAddressNotOwned):
		writeFieldErrors(w, []FieldError{{Field: "address_id", Error: "address does not belong to user"}})
	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "no items selected for checkout")
	default:
		var stockErr *order.InsufficientStockError
		if errors.As(err, &stockErr) {
			writeError(w, http.StatusConflict, stockErr.Error())
			return
		}
		var skuErr *order.SKUNotFoundError
		if errors.As(err, &skuErr) {
			writeError(w, http.StatusConflict, skuErr.Error())
			return
		}
		writeInternal(w, r, err)
	}
}

// UncommentGoods returns all line items of the order, used by the client to
// offer a comment form. Despite the name it does not filter out line items
// that already carry a comment.
func (h *Handler) UncommentGoods(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "order_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	goods, err := h.orders.ListGoods(r.Context(), id.UserID, orderID)
	switch {
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
		return
	case errors.Is(err, order.ErrNotOwned):
		writeError(w, http.StatusForbidden, "order does not belong to user")
		return
	case err != nil:
		writeInternal(w, r, err)
		return
	}

	resp := make([]orderGoodResponse, len(goods))
	for i, g := range goods {
		resp[i] = mapOrderGood(g)
	}
	writeJSON(w, http.StatusOK, resp)
}

func mapOrder(o *order.Order) orderResponse {
	goods := make([]orderGoodResponse, len(o.Goods))
	for i, g := range o.Goods {
		goods[i] = mapOrderGood(g)
	}
	return orderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount,
		Freight:     o.Freight,
		AddressID:   o.AddressID,
		PayMethod:   string(o.PayMethod),
		CreatedAt:   o.CreatedAt,
		Goods:       goods,
	}
}

func mapOrderGood(g order.OrderGood) orderGoodResponse {
	return orderGoodResponse{
		ID:      g.ID,
		OrderID: g.OrderID,
		SKUID:   g.SKUID,
		Name:    g.Name,
		Price:   g.Price,
		Image:   g.Image,
		Count:   g.Count,
		Comment: g.Comment,
		Score:   g.Score,
	}
}
