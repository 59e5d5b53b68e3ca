package service

import (
	"context"
	"fmt"

	"github.com/minimart/ordering/internal/domain"
	"go.uber.org/zap"
)

// InventoryStore is the row store behind the inventory service.
type InventoryStore interface {
	FindBySkuCodes(ctx context.Context, skuCodes []string) ([]domain.InventoryRecord, error)
	Save(ctx context.Context, record domain.InventoryRecord) error
}

type InventoryService struct {
	store  InventoryStore
	logger *zap.Logger
}

func NewInventoryService(store InventoryStore, logger *zap.Logger) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		store:  store,
		logger: logger,
	}
}

// IsInStock reports per-SKU availability. A SKU with no record is reported
// as out of stock; availability is never assumed for unknown SKUs.
func (s *InventoryService) IsInStock(ctx context.Context, skuCodes []string) ([]domain.InventoryResponse, error) {
	if len(skuCodes) == 0 {
		return nil, fmt.Errorf("%w: at least one skuCode is required", domain.ErrInvalidRequest)
	}

	records, err := s.store.FindBySkuCodes(ctx, skuCodes)
	if err != nil {
		s.logger.Error("inventory lookup failed",
			zap.Strings("sku_codes", skuCodes),
			zap.Error(err))
		return nil, fmt.Errorf("inventory store: %w", err)
	}

	bySku := make(map[string]domain.InventoryRecord, len(records))
	for _, record := range records {
		bySku[record.SkuCode] = record
	}

	responses := make([]domain.InventoryResponse, 0, len(skuCodes))
	for _, sku := range skuCodes {
		record, ok := bySku[sku]
		responses = append(responses, domain.InventoryResponse{
			SkuCode:  sku,
			Quantity: record.Quantity,
			InStock:  ok && record.InStock(),
		})
	}

	return responses, nil
}

// Seed loads initial inventory rows, skipping nothing on conflict: the
// store keeps the last write.
func (s *InventoryService) Seed(ctx context.Context, records []domain.InventoryRecord) error {
	for _, record := range records {
		if err := s.store.Save(ctx, record); err != nil {
			return fmt.Errorf("seed inventory %q: %w", record.SkuCode, err)
		}
		s.logger.Info("inventory seeded",
			zap.String("sku_code", record.SkuCode),
			zap.Int("quantity", record.Quantity))
	}
	return nil
}
