package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/xenking/mall-orders/internal/domain/comment"
	"github.com/xenking/mall-orders/internal/domain/order"
)

// commentEntryResponse is one element of the public comment listing.
type commentEntryResponse struct {
	Username string `json:"username"`
	Comment  string `json:"comment"`
	Score    int    `json:"score"`
}

// ListComments returns every published comment for a SKU. Public endpoint;
// an unknown SKU yields an empty array.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	skuID, err := strconv.ParseInt(chi.URLParam(r, "sku_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sku id")
		return
	}

	entries, err := h.comments.ListBySKU(r.Context(), skuID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	resp := make([]commentEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = commentEntryResponse{
			Username: e.Username,
			Comment:  e.Comment,
			Score:    e.Score,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// SubmitComment attaches a comment and score to a line item of the user's
// order. Resubmission overwrites the previous comment.
func (h *Handler) SubmitComment(w http.ResponseWriter, r *http.Request) {
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

	var req submitCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	good, err := h.comments.Submit(r.Context(), id.UserID, orderID, comment.SubmitRequest{
		SKUID:   req.SKUID,
		Comment: req.Comment,
		Score:   req.Score,
	})
	switch {
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
		return
	case errors.Is(err, order.ErrNotOwned):
		writeError(w, http.StatusForbidden, "order does not belong to user")
		return
	case errors.Is(err, comment.ErrNoTarget):
		writeFieldErrors(w, []FieldError{{Field: "sku_id", Error: "no matching line item in order"}})
		return
	case errors.Is(err, comment.ErrEmptyComment), errors.Is(err, comment.ErrInvalidScore):
		// Normally caught by validate; kept for direct service callers.
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeInternal(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderGood(*good))
}
