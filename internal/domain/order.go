package domain

import (
	"errors"
	"time"
)

var (
	// ErrInvalidRequest covers malformed order requests: no line items,
	// negative quantities or prices, empty SKU codes.
	ErrInvalidRequest = errors.New("invalid order request")

	// ErrOutOfStock is a business rejection, not a system failure.
	ErrOutOfStock = errors.New("product is not in stock")

	// ErrPersistence signals that the order store write failed after the
	// stock check passed. No event is emitted in that case.
	ErrPersistence = errors.New("order persistence failed")
)

type Order struct {
	OrderNumber string          `json:"order_number" dynamodbav:"order_number"`
	LineItems   []OrderLineItem `json:"line_items" dynamodbav:"line_items"`
	CreatedAt   time.Time       `json:"created_at" dynamodbav:"created_at"`
}

// OrderLineItem is immutable once attached to an Order.
type OrderLineItem struct {
	SkuCode  string  `json:"skuCode" dynamodbav:"sku_code"`
	Quantity int     `json:"quantity" dynamodbav:"quantity"`
	Price    float64 `json:"price" dynamodbav:"price"`
}

// OrderRequest is the inbound payload of POST /api/order. The field name
// matches the wire contract consumed by existing clients.
type OrderRequest struct {
	OrderLineItemsDtoList []OrderLineItemDto `json:"orderLineItemsDtoList" binding:"required"`
}

type OrderLineItemDto struct {
	SkuCode  string  `json:"skuCode"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}
