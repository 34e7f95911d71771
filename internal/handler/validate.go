package handler

import (
	"github.com/xenking/mall-orders/internal/domain/comment"
	"github.com/xenking/mall-orders/internal/domain/order"
)

// placeOrderRequest is the body of POST /orders/.
type placeOrderRequest struct {
	AddressID int64  `json:"address_id"`
	PayMethod string `json:"pay_method"`
}

func (r placeOrderRequest) validate() []FieldError {
	var fields []FieldError
	if r.AddressID <= 0 {
		fields = append(fields, FieldError{Field: "address_id", Error: "required"})
	}
	if r.PayMethod == "" {
		fields = append(fields, FieldError{Field: "pay_method", Error: "required"})
	} else if !order.PayMethod(r.PayMethod).Valid() {
		fields = append(fields, FieldError{Field: "pay_method", Error: "must be one of alipay, wechat, cash_on_delivery"})
	}
	return fields
}

// submitCommentRequest is the body of POST /orders/{order_id}/comments/.
// SKUID is optional; when omitted the first line item of the order is
// commented on.
type submitCommentRequest struct {
	SKUID   int64  `json:"sku_id,omitempty"`
	Comment string `json:"comment"`
	Score   int    `json:"score"`
}

func (r submitCommentRequest) validate() []FieldError {
	var fields []FieldError
	if r.Comment == "" {
		fields = append(fields, FieldError{Field: "comment", Error: "required"})
	}
	if r.Score < comment.MinScore || r.Score > comment.MaxScore {
		fields = append(fields, FieldError{Field: "score", Error: "must be between 1 and 5"})
	}
	if r.SKUID < 0 {
		fields = append(fields, FieldError{Field: "sku_id", Error: "must be positive"})
	}
	return fields
}
