package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minimart/ordering/internal/domain"
	"github.com/minimart/ordering/internal/repository"
	"github.com/minimart/ordering/internal/resilience"
	"github.com/minimart/ordering/internal/service"
	"go.uber.org/zap"
)

// Response texts for the placement flow. The out-of-stock and fallback
// paths answer 200 with plain text, matching what existing clients parse.
const (
	MsgOrderPlaced = "Order Placed Successfully"
	MsgOutOfStock  = "Product is not in stock, please try again later"
	MsgFallback    = "Oops! Something went wrong. Please try again after some time!"
)

type OrderHandler struct {
	orderService *service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req domain.OrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	requestID := c.GetString("request_id")

	order, err := h.orderService.PlaceOrder(c.Request.Context(), req)
	switch {
	case err == nil:
		h.logger.Info("Order placed",
			zap.String("request_id", requestID),
			zap.String("order_number", order.OrderNumber))
		c.String(http.StatusCreated, MsgOrderPlaced)
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
	case errors.Is(err, domain.ErrOutOfStock):
		c.String(http.StatusOK, MsgOutOfStock)
	case errors.Is(err, resilience.ErrServiceUnavailable):
		c.String(http.StatusOK, MsgFallback)
	default:
		h.logger.Error("Failed to place order",
			zap.String("request_id", requestID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to place order",
			"request_id": requestID,
		})
	}
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderNumber := c.Param("orderNumber")

	order, err := h.orderService.GetOrder(c.Request.Context(), orderNumber)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, order)
}
