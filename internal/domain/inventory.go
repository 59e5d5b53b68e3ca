package domain

// InventoryRecord is a row in the inventory store, keyed by SKU code.
type InventoryRecord struct {
	SkuCode  string `json:"sku_code" dynamodbav:"sku_code"`
	Quantity int    `json:"quantity" dynamodbav:"quantity"`
}

func (r InventoryRecord) InStock() bool {
	return r.Quantity > 0
}

// InventoryResponse is one element of the inventory service's reply to
// GET /api/inventory. A SKU missing from the store is reported with
// Quantity 0 and InStock false rather than omitted.
type InventoryResponse struct {
	SkuCode  string `json:"skuCode"`
	Quantity int    `json:"quantity"`
	InStock  bool   `json:"inStock"`
}
