package repository

import (
	"context"
	"sync"

	"github.com/minimart/ordering/internal/domain"
)

// MemoryOrderRepository is the in-process order store used for local runs
// and tests.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[string]*domain.Order),
	}
}

func (r *MemoryOrderRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders[order.OrderNumber] = cloneOrder(order)
	return nil
}

func (r *MemoryOrderRepository) GetOrder(_ context.Context, orderNumber string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderNumber]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (r *MemoryOrderRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

func cloneOrder(order *domain.Order) *domain.Order {
	clone := *order
	clone.LineItems = append([]domain.OrderLineItem(nil), order.LineItems...)
	return &clone
}

// MemoryInventoryRepository is the in-process inventory store keyed by SKU
// code.
type MemoryInventoryRepository struct {
	mu      sync.RWMutex
	records map[string]domain.InventoryRecord
}

func NewMemoryInventoryRepository() *MemoryInventoryRepository {
	return &MemoryInventoryRepository{
		records: make(map[string]domain.InventoryRecord),
	}
}

func (r *MemoryInventoryRepository) FindBySkuCodes(_ context.Context, skuCodes []string) ([]domain.InventoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]domain.InventoryRecord, 0, len(skuCodes))
	for _, sku := range skuCodes {
		if record, ok := r.records[sku]; ok {
			records = append(records, record)
		}
	}
	return records, nil
}

func (r *MemoryInventoryRepository) Save(_ context.Context, record domain.InventoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[record.SkuCode] = record
	return nil
}
