package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minimart/ordering/internal/domain"
	"github.com/minimart/ordering/internal/events"
	"github.com/minimart/ordering/internal/resilience"
)

type fakeOrderStore struct {
	orders  []*domain.Order
	failure error
}

func (s *fakeOrderStore) CreateOrder(_ context.Context, order *domain.Order) error {
	if s.failure != nil {
		return s.failure
	}
	s.orders = append(s.orders, order)
	return nil
}

func (s *fakeOrderStore) GetOrder(_ context.Context, orderNumber string) (*domain.Order, error) {
	for _, order := range s.orders {
		if order.OrderNumber == orderNumber {
			return order, nil
		}
	}
	return nil, errors.New("not found")
}

type fakeStockClient struct {
	fn func(ctx context.Context, skuCodes []string) ([]domain.InventoryResponse, error)
}

func (c *fakeStockClient) IsInStock(ctx context.Context, skuCodes []string) ([]domain.InventoryResponse, error) {
	return c.fn(ctx, skuCodes)
}

type fakePublisher struct {
	events  []events.OrderPlacedEvent
	failure error
}

func (p *fakePublisher) Publish(_ context.Context, event events.OrderPlacedEvent) error {
	if p.failure != nil {
		return p.failure
	}
	p.events = append(p.events, event)
	return nil
}

func testWrapper() *resilience.Wrapper {
	breaker := resilience.NewBreaker(5, time.Minute, 1, nil)
	return resilience.NewWrapper(breaker, resilience.Config{
		Timeout:     time.Second,
		MaxAttempts: 2,
		Backoff:     time.Millisecond,
	}, nil, nil)
}

func inStockResponses(skuCodes []string) []domain.InventoryResponse {
	responses := make([]domain.InventoryResponse, 0, len(skuCodes))
	for _, sku := range skuCodes {
		responses = append(responses, domain.InventoryResponse{SkuCode: sku, Quantity: 100, InStock: true})
	}
	return responses
}

func singleItemRequest(sku string, quantity int, price float64) domain.OrderRequest {
	return domain.OrderRequest{
		OrderLineItemsDtoList: []domain.OrderLineItemDto{
			{SkuCode: sku, Quantity: quantity, Price: price},
		},
	}
}

func TestPlaceOrderCommitsAndPublishesWhenInStock(t *testing.T) {
	store := &fakeOrderStore{}
	publisher := &fakePublisher{}
	stock := &fakeStockClient{fn: func(_ context.Context, skuCodes []string) ([]domain.InventoryResponse, error) {
		return inStockResponses(skuCodes), nil
	}}
	svc := NewOrderService(store, stock, publisher, testWrapper(), nil, nil)

	order, err := svc.PlaceOrder(context.Background(), singleItemRequest("iPhone_13", 1, 999))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.OrderNumber == "" {
		t.Fatalf("expected generated order number")
	}
	if len(store.orders) != 1 {
		t.Fatalf("expected exactly one persisted order, got %d", len(store.orders))
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected exactly one event, got %d", len(publisher.events))
	}
	if publisher.events[0].OrderNumber != order.OrderNumber {
		t.Fatalf("event order number %q does not match %q", publisher.events[0].OrderNumber, order.OrderNumber)
	}
}

func TestPlaceOrderRejectsWhenOutOfStock(t *testing.T) {
	store := &fakeOrderStore{}
	publisher := &fakePublisher{}
	stock := &fakeStockClient{fn: func(_ context.Context, skuCodes []string) ([]domain.InventoryResponse, error) {
		return []domain.InventoryResponse{{SkuCode: skuCodes[0], Quantity: 0, InStock: false}}, nil
	}}
	svc := NewOrderService(store, stock, publisher, testWrapper(), nil, nil)

	_, err := svc.PlaceOrder(context.Background(), singleItemRequest("iPhone_13", 1, 999))
	if !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
	if len(store.orders) != 0 {
		t.Fatalf("rejected order was persisted")
	}
	if len(publisher.events) != 0 {
		t.Fatalf("rejected order emitted an event")
	}
}

func TestPlaceOrderTreatsMissingSkuAsOutOfStock(t *testing.T) {
	store := &fakeOrderStore{}
	publisher := &fakePublisher{}
	stock := &fakeStockClient{fn: func(context.Context, []string) ([]domain.InventoryResponse, error) {
		// Response covers only one of the two requested SKUs.
		return []domain.InventoryResponse{{SkuCode: "iPhone_13", Quantity: 3, InStock: true}}, nil
	}}
	svc := NewOrderService(store, stock, publisher, testWrapper(), nil, nil)

	req := domain.OrderRequest{
		OrderLineItemsDtoList: []domain.OrderLineItemDto{
			{SkuCode: "iPhone_13", Quantity: 1, Price: 999},
			{SkuCode: "pixel_8", Quantity: 1, Price: 799},
		},
	}
	_, err := svc.PlaceOrder(context.Background(), req)
	if !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock for missing SKU, got %v", err)
	}
	if len(store.orders) != 0 || len(publisher.events) != 0 {
		t.Fatalf("partial side effects for missing SKU")
	}
}

func TestPlaceOrderRejectsWhenInventoryUnavailable(t *testing.T) {
	store := &fakeOrderStore{}
	publisher := &fakePublisher{}
	stock := &fakeStockClient{fn: func(context.Context, []string) ([]domain.InventoryResponse, error) {
		return nil, errors.New("connection refused")
	}}
	svc := NewOrderService(store, stock, publisher, testWrapper(), nil, nil)

	_, err := svc.PlaceOrder(context.Background(), singleItemRequest("iPhone_13", 1, 999))
	if !errors.Is(err, resilience.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if len(store.orders) != 0 {
		t.Fatalf("order committed without stock confirmation")
	}
	if len(publisher.events) != 0 {
		t.Fatalf("event emitted without commit")
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	stock := &fakeStockClient{fn: func(context.Context, []string) ([]domain.InventoryResponse, error) {
		t.Fatal("stock client must not be called for invalid requests")
		return nil, nil
	}}
	svc := NewOrderService(&fakeOrderStore{}, stock, &fakePublisher{}, testWrapper(), nil, nil)

	for name, req := range map[string]domain.OrderRequest{
		"no line items":     {},
		"negative quantity": singleItemRequest("iPhone_13", -1, 999),
		"negative price":    singleItemRequest("iPhone_13", 1, -1),
		"empty sku":         singleItemRequest("", 1, 999),
	} {
		if _, err := svc.PlaceOrder(context.Background(), req); !errors.Is(err, domain.ErrInvalidRequest) {
			t.Fatalf("%s: expected ErrInvalidRequest, got %v", name, err)
		}
	}
}

func TestPlaceOrderPersistenceFailureEmitsNoEvent(t *testing.T) {
	store := &fakeOrderStore{failure: errors.New("table missing")}
	publisher := &fakePublisher{}
	stock := &fakeStockClient{fn: func(_ context.Context, skuCodes []string) ([]domain.InventoryResponse, error) {
		return inStockResponses(skuCodes), nil
	}}
	svc := NewOrderService(store, stock, publisher, testWrapper(), nil, nil)

	_, err := svc.PlaceOrder(context.Background(), singleItemRequest("iPhone_13", 1, 999))
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("event emitted despite persistence failure")
	}
}

func TestPlaceOrderPublishFailureKeepsOrder(t *testing.T) {
	store := &fakeOrderStore{}
	publisher := &fakePublisher{failure: errors.New("broker down")}
	stock := &fakeStockClient{fn: func(_ context.Context, skuCodes []string) ([]domain.InventoryResponse, error) {
		return inStockResponses(skuCodes), nil
	}}
	svc := NewOrderService(store, stock, publisher, testWrapper(), nil, nil)

	order, err := svc.PlaceOrder(context.Background(), singleItemRequest("iPhone_13", 1, 999))
	if err != nil {
		t.Fatalf("publish failure must not fail the order: %v", err)
	}
	if len(store.orders) != 1 || store.orders[0].OrderNumber != order.OrderNumber {
		t.Fatalf("order not committed")
	}
}

func TestPlaceOrderIsNotIdempotent(t *testing.T) {
	store := &fakeOrderStore{}
	stock := &fakeStockClient{fn: func(_ context.Context, skuCodes []string) ([]domain.InventoryResponse, error) {
		return inStockResponses(skuCodes), nil
	}}
	svc := NewOrderService(store, stock, &fakePublisher{}, testWrapper(), nil, nil)

	req := singleItemRequest("iPhone_13", 1, 999)
	first, err := svc.PlaceOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.PlaceOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.OrderNumber == second.OrderNumber {
		t.Fatalf("identical requests must yield distinct order numbers")
	}
}

func TestPlaceOrderDeduplicatesSkuCodes(t *testing.T) {
	var requested []string
	stock := &fakeStockClient{fn: func(_ context.Context, skuCodes []string) ([]domain.InventoryResponse, error) {
		requested = skuCodes
		return inStockResponses(skuCodes), nil
	}}
	svc := NewOrderService(&fakeOrderStore{}, stock, &fakePublisher{}, testWrapper(), nil, nil)

	req := domain.OrderRequest{
		OrderLineItemsDtoList: []domain.OrderLineItemDto{
			{SkuCode: "iPhone_13", Quantity: 1, Price: 999},
			{SkuCode: "iPhone_13", Quantity: 2, Price: 999},
		},
	}
	if _, err := svc.PlaceOrder(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(requested) != 1 || requested[0] != "iPhone_13" {
		t.Fatalf("expected deduplicated SKU set, got %v", requested)
	}
}
