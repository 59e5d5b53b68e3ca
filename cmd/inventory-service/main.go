package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minimart/ordering/internal/domain"
	"github.com/minimart/ordering/internal/handler"
	"github.com/minimart/ordering/internal/repository"
	"github.com/minimart/ordering/internal/service"
	"github.com/minimart/ordering/pkg/config"
	"github.com/minimart/ordering/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadInventory()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.Info("Service configuration",
		zap.String("port", cfg.Port),
		zap.String("store_backend", cfg.StoreBackend),
		zap.Bool("seed_inventory", cfg.SeedInventory))

	var inventoryStore service.InventoryStore
	switch cfg.StoreBackend {
	case "dynamodb":
		dynamoClient, err := repository.NewDynamoDBClient(context.Background(), cfg.AWSRegion, cfg.DynamoDBEndpoint)
		if err != nil {
			log.Fatal("Failed to create DynamoDB client:", err)
		}
		inventoryStore = repository.NewInventoryRepository(dynamoClient, cfg.InventoryTableName)
	default:
		inventoryStore = repository.NewMemoryInventoryRepository()
	}

	inventoryService := service.NewInventoryService(inventoryStore, logger)

	if cfg.SeedInventory {
		seed := []domain.InventoryRecord{
			{SkuCode: "iPhone_13", Quantity: 100},
			{SkuCode: "iPhone_13_red", Quantity: 0},
		}
		if err := inventoryService.Seed(context.Background(), seed); err != nil {
			logger.Error("Failed to seed inventory", zap.Error(err))
		}
	}

	inventoryHandler := handler.NewInventoryHandler(inventoryService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.RequestID())

	router.GET("/api/inventory", inventoryHandler.IsInStock)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "inventory-service",
		})
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}
