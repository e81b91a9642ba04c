package services

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/dynamodb/token"
	"philcali.me/foodgram/internal/exceptions"
)

// RepositoryDynamoDBService holds the table access shared by every item
// type. Name is the resource reported in conflict and not found errors.
type RepositoryDynamoDBService[T interface{}] struct {
	DynamoDB       *dynamodb.Client
	TableName      string
	IndexName      string
	TokenMarshaler token.TokenMarshaler
	Name           string
	GetSK          func(T) string
}

func GetKey(pks string, sks string) (map[string]types.AttributeValue, error) {
	pk, err := attributevalue.Marshal(pks)
	if err != nil {
		return nil, err
	}
	sk, err := attributevalue.Marshal(sks)
	if err != nil {
		return nil, err
	}
	return map[string]types.AttributeValue{"PK": pk, "SK": sk}, nil
}

func IsConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func (rs *RepositoryDynamoDBService[T]) resource() string {
	return strings.ToLower(rs.Name)
}

func (rs *RepositoryDynamoDBService[T]) Get(ctx context.Context, pk string, sk string) (T, error) {
	var item T
	key, err := GetKey(pk, sk)
	if err != nil {
		return item, err
	}
	response, err := rs.DynamoDB.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(rs.TableName),
		Key:       key,
	})
	if err != nil {
		return item, err
	}
	if response.Item == nil {
		return item, exceptions.NotFound(rs.resource(), sk)
	}
	err = attributevalue.UnmarshalMap(response.Item, &item)
	return item, err
}

// BatchGet loads every existing item of the partition among the sort keys.
// Missing keys are left out of the result.
func (rs *RepositoryDynamoDBService[T]) BatchGet(ctx context.Context, pk string, sks []string) (map[string]T, error) {
	found := make(map[string]T, len(sks))
	keys := make([]map[string]types.AttributeValue, 0, len(sks))
	seen := make(map[string]bool, len(sks))
	for _, sk := range sks {
		if seen[sk] {
			continue
		}
		seen[sk] = true
		key, err := GetKey(pk, sk)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	items, err := BatchGetItems(ctx, rs.DynamoDB, rs.TableName, keys)
	if err != nil {
		return nil, err
	}
	for _, raw := range items {
		var item T
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, err
		}
		found[rs.GetSK(item)] = item
	}
	return found, nil
}

// Create writes a new item, failing with a conflict when the key is taken.
func (rs *RepositoryDynamoDBService[T]) Create(ctx context.Context, item T) error {
	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}
	expr, err := expression.NewBuilder().WithCondition(expression.Name("PK").AttributeNotExists().And(expression.Name("SK").AttributeNotExists())).Build()
	if err != nil {
		return err
	}
	_, err = rs.DynamoDB.PutItem(ctx, &dynamodb.PutItemInput{
		Item:                     marshaled,
		TableName:                aws.String(rs.TableName),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if IsConditionFailed(err) {
		return exceptions.Conflict(rs.resource(), rs.GetSK(item))
	}
	return err
}

// Update applies the update to an existing item and returns the result.
func (rs *RepositoryDynamoDBService[T]) Update(ctx context.Context, pk string, sk string, update expression.UpdateBuilder) (T, error) {
	var item T
	key, err := GetKey(pk, sk)
	if err != nil {
		return item, err
	}
	condition := expression.Name("PK").AttributeExists().And(expression.Name("SK").AttributeExists())
	expr, err := expression.NewBuilder().WithCondition(condition).WithUpdate(update).Build()
	if err != nil {
		return item, err
	}
	response, err := rs.DynamoDB.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(rs.TableName),
		Key:                       key,
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if IsConditionFailed(err) {
			return item, exceptions.NotFound(rs.resource(), sk)
		}
		return item, err
	}
	err = attributevalue.UnmarshalMap(response.Attributes, &item)
	return item, err
}

// Delete removes an existing item, failing with not found otherwise.
func (rs *RepositoryDynamoDBService[T]) Delete(ctx context.Context, pk string, sk string) error {
	key, err := GetKey(pk, sk)
	if err != nil {
		return err
	}
	expr, err := expression.NewBuilder().WithCondition(expression.Name("PK").AttributeExists()).Build()
	if err != nil {
		return err
	}
	_, err = rs.DynamoDB.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		Key:                      key,
		TableName:                aws.String(rs.TableName),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if IsConditionFailed(err) {
		return exceptions.NotFound(rs.resource(), sk)
	}
	return err
}

func (rs *RepositoryDynamoDBService[T]) queryInput(builder expression.Builder, useIndex bool) (*dynamodb.QueryInput, error) {
	expr, err := builder.Build()
	if err != nil {
		return nil, err
	}
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(rs.TableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ProjectionExpression:      expr.Projection(),
	}
	if useIndex {
		input.IndexName = aws.String(rs.IndexName)
	}
	return input, nil
}

// Query reads one page of the key condition. The scope binds the page token
// to the partition being read.
func (rs *RepositoryDynamoDBService[T]) Query(ctx context.Context, keyEx expression.KeyConditionBuilder, useIndex bool, scope string, params data.QueryParams) (data.QueryResults[T], error) {
	input, err := rs.queryInput(expression.NewBuilder().WithKeyCondition(keyEx), useIndex)
	if err != nil {
		return data.QueryResults[T]{}, err
	}
	startKey, err := rs.TokenMarshaler.Unmarshal(scope, params.NextToken)
	if err != nil {
		return data.QueryResults[T]{}, err
	}
	input.Limit = params.GetLimit()
	input.ExclusiveStartKey = startKey
	output, err := rs.DynamoDB.Query(ctx, input)
	if err != nil {
		return data.QueryResults[T]{}, err
	}
	items := make([]T, 0, len(output.Items))
	if err := attributevalue.UnmarshalListOfMaps(output.Items, &items); err != nil {
		return data.QueryResults[T]{}, err
	}
	nextToken, err := rs.TokenMarshaler.Marshal(scope, output.LastEvaluatedKey)
	if err != nil {
		return data.QueryResults[T]{}, err
	}
	return data.QueryResults[T]{
		Items:     items,
		NextToken: nextToken,
	}, nil
}

func (rs *RepositoryDynamoDBService[T]) queryPages(ctx context.Context, input *dynamodb.QueryInput, page func(*dynamodb.QueryOutput) error) error {
	paginator := dynamodb.NewQueryPaginator(rs.DynamoDB, input)
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		if err := page(output); err != nil {
			return err
		}
	}
	return nil
}

// QueryAll reads every page of the key condition.
func (rs *RepositoryDynamoDBService[T]) QueryAll(ctx context.Context, keyEx expression.KeyConditionBuilder, useIndex bool) ([]T, error) {
	input, err := rs.queryInput(expression.NewBuilder().WithKeyCondition(keyEx), useIndex)
	if err != nil {
		return nil, err
	}
	items := []T{}
	err = rs.queryPages(ctx, input, func(output *dynamodb.QueryOutput) error {
		var page []T
		if err := attributevalue.UnmarshalListOfMaps(output.Items, &page); err != nil {
			return err
		}
		items = append(items, page...)
		return nil
	})
	return items, err
}

func (rs *RepositoryDynamoDBService[T]) Count(ctx context.Context, keyEx expression.KeyConditionBuilder, useIndex bool) (int, error) {
	input, err := rs.queryInput(expression.NewBuilder().WithKeyCondition(keyEx), useIndex)
	if err != nil {
		return 0, err
	}
	input.Select = types.SelectCount
	count := 0
	err = rs.queryPages(ctx, input, func(output *dynamodb.QueryOutput) error {
		count += int(output.Count)
		return nil
	})
	return count, err
}

// DeleteAll removes every item matched by the key condition and reports how
// many were removed.
func (rs *RepositoryDynamoDBService[T]) DeleteAll(ctx context.Context, keyEx expression.KeyConditionBuilder, useIndex bool) (int, error) {
	projection := expression.NamesList(expression.Name("PK"), expression.Name("SK"))
	input, err := rs.queryInput(expression.NewBuilder().WithKeyCondition(keyEx).WithProjection(projection), useIndex)
	if err != nil {
		return 0, err
	}
	var keys []map[string]types.AttributeValue
	err = rs.queryPages(ctx, input, func(output *dynamodb.QueryOutput) error {
		for _, item := range output.Items {
			keys = append(keys, map[string]types.AttributeValue{"PK": item["PK"], "SK": item["SK"]})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(keys), DeleteItems(ctx, rs.DynamoDB, rs.TableName, keys)
}
