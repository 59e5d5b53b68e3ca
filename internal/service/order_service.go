package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minimart/ordering/internal/domain"
	"github.com/minimart/ordering/internal/events"
	"github.com/minimart/ordering/internal/resilience"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// OrderStore persists committed orders.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, orderNumber string) (*domain.Order, error)
}

// StockClient resolves per-SKU availability from the inventory service.
type StockClient interface {
	IsInStock(ctx context.Context, skuCodes []string) ([]domain.InventoryResponse, error)
}

// OrderService coordinates order placement: validate, check stock through
// the resilience wrapper, persist, then publish.
type OrderService struct {
	store     OrderStore
	stock     StockClient
	publisher events.Publisher
	wrapper   *resilience.Wrapper
	logger    *zap.Logger
	tracer    trace.Tracer
	placed    *prometheus.CounterVec
}

// NewOrderService wires the coordinator's collaborators. placed may be nil;
// it is labeled by outcome (placed, out_of_stock, unavailable, failed).
func NewOrderService(
	store OrderStore,
	stock StockClient,
	publisher events.Publisher,
	wrapper *resilience.Wrapper,
	logger *zap.Logger,
	placed *prometheus.CounterVec,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		store:     store,
		stock:     stock,
		publisher: publisher,
		wrapper:   wrapper,
		logger:    logger,
		tracer:    otel.Tracer("order-service"),
		placed:    placed,
	}
}

// PlaceOrder runs the placement workflow. An order is committed only when
// every requested SKU reports in stock; a wrapper fallback rejects the
// order rather than committing without confirmation. Two calls with the
// same content yield two distinct orders.
func (s *OrderService) PlaceOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	order := &domain.Order{
		OrderNumber: uuid.New().String(),
		LineItems:   make([]domain.OrderLineItem, 0, len(req.OrderLineItemsDtoList)),
		CreatedAt:   time.Now().UTC(),
	}
	for _, dto := range req.OrderLineItemsDtoList {
		order.LineItems = append(order.LineItems, domain.OrderLineItem{
			SkuCode:  dto.SkuCode,
			Quantity: dto.Quantity,
			Price:    dto.Price,
		})
	}

	skuCodes := distinctSkuCodes(order.LineItems)

	ctx, span := s.tracer.Start(ctx, "inventory-service-lookup",
		trace.WithAttributes(attribute.Int("inventory.sku_count", len(skuCodes))))
	responses, err := resilience.Do(ctx, s.wrapper,
		func(ctx context.Context) ([]domain.InventoryResponse, error) {
			return s.stock.IsInStock(ctx, skuCodes)
		},
		func() []domain.InventoryResponse { return nil },
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "inventory lookup unavailable")
		span.End()
		s.count("unavailable")
		s.logger.Warn("order rejected, inventory service unavailable",
			zap.String("order_number", order.OrderNumber))
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	span.End()

	if !allInStock(skuCodes, responses) {
		s.count("out_of_stock")
		s.logger.Info("order rejected, product out of stock",
			zap.String("order_number", order.OrderNumber),
			zap.Strings("sku_codes", skuCodes))
		return nil, domain.ErrOutOfStock
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		s.count("failed")
		s.logger.Error("failed to save order",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	// Publish after the write has succeeded. A publish failure is logged
	// only; the order stays committed.
	event := events.NewOrderPlacedEvent(order.OrderNumber)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish order placed event",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
	}

	s.count("placed")
	s.logger.Info("order placed",
		zap.String("order_number", order.OrderNumber),
		zap.Int("line_items", len(order.LineItems)))

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return s.store.GetOrder(ctx, orderNumber)
}

func (s *OrderService) count(outcome string) {
	if s.placed != nil {
		s.placed.WithLabelValues(outcome).Inc()
	}
}

func validateRequest(req domain.OrderRequest) error {
	if len(req.OrderLineItemsDtoList) == 0 {
		return fmt.Errorf("%w: at least one line item is required", domain.ErrInvalidRequest)
	}
	for _, item := range req.OrderLineItemsDtoList {
		if item.SkuCode == "" {
			return fmt.Errorf("%w: skuCode is required", domain.ErrInvalidRequest)
		}
		if item.Quantity < 0 {
			return fmt.Errorf("%w: quantity must not be negative", domain.ErrInvalidRequest)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidRequest)
		}
	}
	return nil
}

func distinctSkuCodes(items []domain.OrderLineItem) []string {
	seen := make(map[string]struct{}, len(items))
	skuCodes := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.SkuCode]; ok {
			continue
		}
		seen[item.SkuCode] = struct{}{}
		skuCodes = append(skuCodes, item.SkuCode)
	}
	return skuCodes
}

// allInStock is satisfied only when every requested SKU appears in the
// response and reports in stock. Missing entries count as out of stock.
func allInStock(skuCodes []string, responses []domain.InventoryResponse) bool {
	inStock := make(map[string]bool, len(responses))
	for _, resp := range responses {
		inStock[resp.SkuCode] = resp.InStock
	}
	for _, sku := range skuCodes {
		if !inStock[sku] {
			return false
		}
	}
	return true
}
