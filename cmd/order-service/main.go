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
	"github.com/minimart/ordering/internal/client"
	"github.com/minimart/ordering/internal/events"
	"github.com/minimart/ordering/internal/handler"
	"github.com/minimart/ordering/internal/repository"
	"github.com/minimart/ordering/internal/resilience"
	"github.com/minimart/ordering/internal/service"
	"github.com/minimart/ordering/pkg/config"
	"github.com/minimart/ordering/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadOrder()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.Info("Service configuration",
		zap.String("port", cfg.Port),
		zap.String("inventory_service_url", cfg.InventoryServiceURL),
		zap.String("store_backend", cfg.StoreBackend),
		zap.String("event_sink", cfg.EventSink))

	protectedCalls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_protected_calls_total",
			Help: "Outcomes of protected calls to the inventory service.",
		},
		[]string{"outcome"},
	)
	circuitState := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "inventory_circuit_breaker_state",
			Help: "Circuit breaker state: 0 closed, 1 open, 2 half-open.",
		},
	)
	ordersPlaced := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Order placement outcomes.",
		},
		[]string{"outcome"},
	)
	prometheus.MustRegister(protectedCalls, circuitState, ordersPlaced)

	var orderStore service.OrderStore
	switch cfg.StoreBackend {
	case "dynamodb":
		dynamoClient, err := repository.NewDynamoDBClient(context.Background(), cfg.AWSRegion, cfg.DynamoDBEndpoint)
		if err != nil {
			log.Fatal("Failed to create DynamoDB client:", err)
		}
		orderStore = repository.NewOrderRepository(dynamoClient, cfg.OrderTableName)
	default:
		orderStore = repository.NewMemoryOrderRepository()
	}

	var publisher events.Publisher
	var kafkaHealth func() error
	switch cfg.EventSink {
	case "kafka":
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		kafkaHealth = kafkaPublisher.HealthCheck
	default:
		publisher = events.NewLogPublisher(logger)
	}

	breaker := resilience.NewBreaker(
		cfg.Resilience.FailureThreshold,
		cfg.Resilience.OpenCooldown,
		cfg.Resilience.HalfOpenMaxCalls,
		circuitState,
	)
	wrapper := resilience.NewWrapper(breaker, resilience.Config{
		Timeout:     cfg.Resilience.CallTimeout,
		MaxAttempts: cfg.Resilience.RetryMaxAttempts,
		Backoff:     cfg.Resilience.RetryBackoff,
	}, logger, protectedCalls)

	stockClient := client.NewInventoryClient(cfg.InventoryServiceURL, logger)
	orderService := service.NewOrderService(orderStore, stockClient, publisher, wrapper, logger, ordersPlaced)
	orderHandler := handler.NewOrderHandler(orderService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.RequestID())

	api := router.Group("/api")
	{
		api.POST("/order", orderHandler.PlaceOrder)
		api.GET("/order/:orderNumber", orderHandler.GetOrder)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		status := gin.H{
			"status":  "healthy",
			"service": "order-service",
			"circuit": breaker.State().String(),
		}
		if kafkaHealth != nil {
			if err := kafkaHealth(); err != nil {
				status["kafka"] = "unhealthy"
				c.JSON(http.StatusServiceUnavailable, status)
				return
			}
			status["kafka"] = "healthy"
		}
		c.JSON(http.StatusOK, status)
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
