package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ResilienceConfig bounds the protected call to the inventory service.
type ResilienceConfig struct {
	FailureThreshold int           `envconfig:"CB_FAILURE_THRESHOLD" default:"5"`
	OpenCooldown     time.Duration `envconfig:"CB_OPEN_COOLDOWN" default:"5s"`
	HalfOpenMaxCalls int           `envconfig:"CB_HALF_OPEN_MAX_CALLS" default:"3"`
	CallTimeout      time.Duration `envconfig:"CALL_TIMEOUT" default:"3s"`
	RetryMaxAttempts int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	RetryBackoff     time.Duration `envconfig:"RETRY_BACKOFF" default:"500ms"`
}

type OrderConfig struct {
	Port                string `envconfig:"PORT" default:"8081"`
	InventoryServiceURL string `envconfig:"INVENTORY_SERVICE_URL" default:"http://localhost:8082"`
	StoreBackend        string `envconfig:"STORE_BACKEND" default:"memory"`
	OrderTableName      string `envconfig:"ORDER_TABLE_NAME" default:"orders"`
	AWSRegion           string `envconfig:"AWS_REGION" default:"ap-northeast-2"`
	DynamoDBEndpoint    string `envconfig:"DYNAMODB_ENDPOINT" default:""`
	EventSink           string `envconfig:"EVENT_SINK" default:"log"`
	KafkaBrokers        string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	Resilience          ResilienceConfig
}

func LoadOrder() (*OrderConfig, error) {
	var cfg OrderConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type InventoryConfig struct {
	Port               string `envconfig:"PORT" default:"8082"`
	StoreBackend       string `envconfig:"STORE_BACKEND" default:"memory"`
	InventoryTableName string `envconfig:"INVENTORY_TABLE_NAME" default:"inventory"`
	AWSRegion          string `envconfig:"AWS_REGION" default:"ap-northeast-2"`
	DynamoDBEndpoint   string `envconfig:"DYNAMODB_ENDPOINT" default:""`
	SeedInventory      bool   `envconfig:"SEED_INVENTORY" default:"true"`
}

func LoadInventory() (*InventoryConfig, error) {
	var cfg InventoryConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
