package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"golang.org/x/exp/slices"
)

const (
	MAX_BATCH_GET   = 100
	MAX_BATCH_WRITE = 25
	MAX_ATTEMPTS    = 5
)

func backoff(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(attempt*attempt) * 50 * time.Millisecond):
		return nil
	}
}

func chunks[T interface{}](items []T, size int) [][]T {
	var batches [][]T
	for len(items) > size {
		batches = append(batches, items[:size:size])
		items = items[size:]
	}
	if len(items) > 0 {
		batches = append(batches, items)
	}
	return batches
}

// BatchGetItems reads the keys in batches, retrying unprocessed keys.
func BatchGetItems(ctx context.Context, client *dynamodb.Client, tableName string, keys []map[string]types.AttributeValue) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for _, batch := range chunks(keys, MAX_BATCH_GET) {
		request := map[string]types.KeysAndAttributes{
			tableName: {Keys: slices.Clone(batch)},
		}
		for attempt := 0; len(request) > 0; attempt++ {
			if attempt == MAX_ATTEMPTS {
				return nil, fmt.Errorf("batch get on %s left unprocessed keys after %d attempts", tableName, attempt)
			}
			if attempt > 0 {
				if err := backoff(ctx, attempt); err != nil {
					return nil, err
				}
			}
			output, err := client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, err
			}
			items = append(items, output.Responses[tableName]...)
			request = output.UnprocessedKeys
		}
	}
	return items, nil
}

func batchWrite(ctx context.Context, client *dynamodb.Client, tableName string, requests []types.WriteRequest) error {
	for _, batch := range chunks(requests, MAX_BATCH_WRITE) {
		request := map[string][]types.WriteRequest{tableName: slices.Clone(batch)}
		for attempt := 0; len(request) > 0; attempt++ {
			if attempt == MAX_ATTEMPTS {
				return fmt.Errorf("batch write on %s left unprocessed items after %d attempts", tableName, attempt)
			}
			if attempt > 0 {
				if err := backoff(ctx, attempt); err != nil {
					return err
				}
			}
			output, err := client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: request})
			if err != nil {
				return err
			}
			request = output.UnprocessedItems
		}
	}
	return nil
}

func PutItems(ctx context.Context, client *dynamodb.Client, tableName string, items []map[string]types.AttributeValue) error {
	requests := make([]types.WriteRequest, len(items))
	for i, item := range items {
		requests[i] = types.WriteRequest{PutRequest: &types.PutRequest{Item: item}}
	}
	return batchWrite(ctx, client, tableName, requests)
}

func DeleteItems(ctx context.Context, client *dynamodb.Client, tableName string, keys []map[string]types.AttributeValue) error {
	requests := make([]types.WriteRequest, len(keys))
	for i, key := range keys {
		requests[i] = types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: key}}
	}
	return batchWrite(ctx, client, tableName, requests)
}
