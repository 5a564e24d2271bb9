package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the slice of the DynamoDB client this server uses. Production
// wiring passes *dynamodb.Client; tests substitute a fake.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

type DynamoService struct {
	Client DynamoAPI
}

// InitializeDynamoDBClient initializes the DynamoDB client
func InitializeDynamoDBClient(region string) *dynamodb.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	return dynamodb.NewFromConfig(cfg)
}

// GetItem retrieves an item from DynamoDB. A missing item is returned as
// (nil, nil) so callers decide whether absence is an error.
func (ds *DynamoService) GetItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	output, err := ds.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &tableName,
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from table '%s': %w", tableName, err)
	}
	if output.Item == nil {
		return nil, nil
	}
	return output.Item, nil
}

func (ds *DynamoService) PutItem(ctx context.Context, tableName string, item interface{}) error {
	marshaledItem, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}
	_, err = ds.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &tableName,
		Item:      marshaledItem,
	})
	if err != nil {
		return fmt.Errorf("failed to put item in table '%s': %w", tableName, err)
	}
	return nil
}

// UpdateItem applies an update expression and returns the new attributes.
func (ds *DynamoService) UpdateItem(
	ctx context.Context,
	tableName string,
	updateExpression string,
	key map[string]types.AttributeValue,
	expressionAttributeValues map[string]types.AttributeValue,
	expressionAttributeNames map[string]string,
) (map[string]types.AttributeValue, error) {
	if len(key) == 0 {
		return nil, errors.New("update failed: key cannot be empty")
	}
	if updateExpression == "" {
		return nil, errors.New("update failed: updateExpression cannot be empty")
	}

	output, err := ds.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 &tableName,
		Key:                       key,
		UpdateExpression:          &updateExpression,
		ExpressionAttributeValues: expressionAttributeValues,
		ExpressionAttributeNames:  expressionAttributeNames,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update item in table '%s': %w", tableName, err)
	}
	if output.Attributes == nil {
		return map[string]types.AttributeValue{}, nil
	}
	return output.Attributes, nil
}

// DeleteItem removes an item from DynamoDB
func (ds *DynamoService) DeleteItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) error {
	_, err := ds.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &tableName,
		Key:       key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete item from table '%s': %w", tableName, err)
	}
	return nil
}

// QueryItems queries items from DynamoDB using a KeyConditionExpression
func (ds *DynamoService) QueryItems(
	ctx context.Context,
	tableName string,
	keyConditionExpression string,
	expressionAttributeValues map[string]types.AttributeValue,
	expressionAttributeNames map[string]string,
	limit int32,
) ([]map[string]types.AttributeValue, error) {
	output, err := ds.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 &tableName,
		KeyConditionExpression:    &keyConditionExpression,
		ExpressionAttributeValues: expressionAttributeValues,
		ExpressionAttributeNames:  expressionAttributeNames,
		Limit:                     &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query items from table '%s': %w", tableName, err)
	}
	return output.Items, nil
}

// ScanItems scans a full table with an optional filter expression, following
// pagination until the scan is exhausted.
func (ds *DynamoService) ScanItems(
	ctx context.Context,
	tableName string,
	filterExpression string,
	expressionAttributeValues map[string]types.AttributeValue,
	expressionAttributeNames map[string]string,
) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.ScanInput{
		TableName: &tableName,
	}
	if filterExpression != "" {
		input.FilterExpression = &filterExpression
		input.ExpressionAttributeValues = expressionAttributeValues
		input.ExpressionAttributeNames = expressionAttributeNames
	}

	var items []map[string]types.AttributeValue
	for {
		output, err := ds.Client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table '%s': %w", tableName, err)
		}
		items = append(items, output.Items...)
		if output.LastEvaluatedKey == nil {
			return items, nil
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}
}

// BatchWriteItems writes multiple items to DynamoDB in batches
func (ds *DynamoService) BatchWriteItems(
	ctx context.Context,
	tableName string,
	writeRequests []types.WriteRequest,
) error {
	const maxBatchSize = 25

	for i := 0; i < len(writeRequests); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(writeRequests) {
			end = len(writeRequests)
		}

		batchInput := &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				tableName: writeRequests[i:end],
			},
		}

		if _, err := ds.Client.BatchWriteItem(ctx, batchInput); err != nil {
			return fmt.Errorf("failed to batch write items to table '%s': %w", tableName, err)
		}
	}

	return nil
}

// TransactWriteItems executes a set of writes as one atomic transaction.
func (ds *DynamoService) TransactWriteItems(ctx context.Context, items []types.TransactWriteItem) error {
	_, err := ds.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		return fmt.Errorf("transact write failed: %w", err)
	}
	return nil
}

// IsConditionalCancellation reports whether a transaction was cancelled only
// because one of its condition expressions did not pass.
func IsConditionalCancellation(err error) bool {
	var cancelled *types.TransactionCanceledException
	if !errors.As(err, &cancelled) {
		return false
	}
	for _, reason := range cancelled.CancellationReasons {
		if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}
