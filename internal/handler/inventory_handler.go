package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minimart/ordering/internal/domain"
	"github.com/minimart/ordering/internal/service"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	inventoryService *service.InventoryService
	logger           *zap.Logger
}

func NewInventoryHandler(inventoryService *service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// IsInStock answers GET /api/inventory?skuCode=a&skuCode=b with a JSON
// array of per-SKU availability.
func (h *InventoryHandler) IsInStock(c *gin.Context) {
	skuCodes := c.QueryArray("skuCode")

	responses, err := h.inventoryService.IsInStock(c.Request.Context(), skuCodes)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request format",
				"details": err.Error(),
			})
			return
		}
		h.logger.Error("Inventory lookup failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Inventory store unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, responses)
}
