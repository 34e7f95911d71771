// Package handler exposes the order API over HTTP.
//
// Request and response bodies are explicit typed structs; every mutating
// endpoint has its own validation function returning field-level errors.
// Domain errors are mapped to HTTP status codes here and nowhere else.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/mall-orders/internal/domain/comment"
	"github.com/xenking/mall-orders/internal/domain/order"
)

// Handler implements the HTTP endpoints, delegating business logic to the
// injected domain services.
type Handler struct {
	orders   *order.Service
	comments *comment.Service
}

// NewHandler constructs a Handler with the required domain services.
func NewHandler(orders *order.Service, comments *comment.Service) *Handler {
	return &Handler{
		orders:   orders,
		comments: comments,
	}
}

// Routes builds the chi router. sessions authenticates requests on every
// route except the public comment listing.
func (h *Handler) Routes(sessions *SessionAuth) http.Handler {
	r := chi.NewRouter()

	// Public: anyone may read a SKU's comments.
	r.Get("/orders/comments/{sku_id}/", h.ListComments)

	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)

		r.Get("/orders/settlement/", h.Settlement)
		r.Post("/orders/", h.PlaceOrder)
		r.Get("/orders/{order_id}/uncommentgoods/", h.UncommentGoods)
		r.Post("/orders/{order_id}/comments/", h.SubmitComment)
	})

	return r
}
