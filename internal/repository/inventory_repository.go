package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/minimart/ordering/internal/domain"
)

// InventoryRepository stores inventory rows in DynamoDB keyed by sku_code.
type InventoryRepository struct {
	client    *dynamodb.Client
	tableName string
}

func NewInventoryRepository(client *dynamodb.Client, tableName string) *InventoryRepository {
	return &InventoryRepository{
		client:    client,
		tableName: tableName,
	}
}

// FindBySkuCodes returns the records that exist; absent SKUs are simply
// missing from the result.
func (r *InventoryRepository) FindBySkuCodes(ctx context.Context, skuCodes []string) ([]domain.InventoryRecord, error) {
	records := make([]domain.InventoryRecord, 0, len(skuCodes))

	for _, sku := range skuCodes {
		out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"sku_code": &types.AttributeValueMemberS{Value: sku},
			},
			ConsistentRead: aws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get inventory item %q: %w", sku, err)
		}
		if len(out.Item) == 0 {
			continue
		}

		var record domain.InventoryRecord
		if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal inventory item %q: %w", sku, err)
		}
		records = append(records, record)
	}

	return records, nil
}

func (r *InventoryRepository) Save(ctx context.Context, record domain.InventoryRecord) error {
	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal inventory record: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put inventory item: %w", err)
	}

	return nil
}
