package relations

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"golang.org/x/exp/slices"
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/dynamodb/services"
	"philcali.me/foodgram/internal/dynamodb/token"
)

// RelationDynamoDBService keeps each user's relations of one kind in their
// own partition, keyed by target id. GS1 indexes them by target for the
// cascades.
type RelationDynamoDBService struct {
	DynamoDB       *dynamodb.Client
	TableName      string
	IndexName      string
	TokenMarshaler token.TokenMarshaler
}

func NewRelationService(tableName string, indexName string, client *dynamodb.Client, marshaler token.TokenMarshaler) *RelationDynamoDBService {
	return &RelationDynamoDBService{
		DynamoDB:       client,
		TableName:      tableName,
		IndexName:      indexName,
		TokenMarshaler: marshaler,
	}
}

func (rs *RelationDynamoDBService) repo(kind data.RelationKind) *services.RepositoryDynamoDBService[data.RelationDTO] {
	return &services.RepositoryDynamoDBService[data.RelationDTO]{
		DynamoDB:       rs.DynamoDB,
		TableName:      rs.TableName,
		IndexName:      rs.IndexName,
		TokenMarshaler: rs.TokenMarshaler,
		Name:           string(kind),
		GetSK: func(r data.RelationDTO) string {
			return r.SK
		},
	}
}

func (rs *RelationDynamoDBService) Create(ctx context.Context, kind data.RelationKind, userId string, targetId string) (data.RelationDTO, error) {
	relation := data.RelationDTO{
		PK:         data.RelationKey(kind, userId),
		SK:         targetId,
		FirstIndex: data.RelationTargetKey(kind, targetId),
		FirstSort:  data.RelationKey(kind, userId),
		Kind:       kind,
		UserId:     userId,
		TargetId:   targetId,
		CreateTime: time.Now(),
	}
	if err := rs.repo(kind).Create(ctx, relation); err != nil {
		return data.RelationDTO{}, err
	}
	return relation, nil
}

func (rs *RelationDynamoDBService) Delete(ctx context.Context, kind data.RelationKind, userId string, targetId string) error {
	return rs.repo(kind).Delete(ctx, data.RelationKey(kind, userId), targetId)
}

func (rs *RelationDynamoDBService) Exists(ctx context.Context, kind data.RelationKind, userId string, targetIds []string) (map[string]bool, error) {
	found, err := rs.repo(kind).BatchGet(ctx, data.RelationKey(kind, userId), targetIds)
	if err != nil {
		return nil, err
	}
	exists := make(map[string]bool, len(targetIds))
	for _, targetId := range targetIds {
		_, exists[targetId] = found[targetId]
	}
	return exists, nil
}

func partitionKey(kind data.RelationKind, userId string) expression.KeyConditionBuilder {
	return expression.Key("PK").Equal(expression.Value(data.RelationKey(kind, userId)))
}

// List pages through the relations in target id order.
func (rs *RelationDynamoDBService) List(ctx context.Context, kind data.RelationKind, userId string, params data.QueryParams) (data.QueryResults[data.RelationDTO], error) {
	return rs.repo(kind).Query(ctx, partitionKey(kind, userId), false, data.RelationKey(kind, userId), params)
}

func (rs *RelationDynamoDBService) ListAll(ctx context.Context, kind data.RelationKind, userId string) ([]data.RelationDTO, error) {
	relations, err := rs.repo(kind).QueryAll(ctx, partitionKey(kind, userId), false)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(relations, func(a, b data.RelationDTO) int {
		return a.CreateTime.Compare(b.CreateTime)
	})
	return relations, nil
}

// DeleteHeld removes every relation of the kind the user holds.
func (rs *RelationDynamoDBService) DeleteHeld(ctx context.Context, kind data.RelationKind, userId string) (int, error) {
	return rs.repo(kind).DeleteAll(ctx, partitionKey(kind, userId), false)
}

// DeleteTargeting removes every relation of the kind pointing at the target,
// whoever holds it.
func (rs *RelationDynamoDBService) DeleteTargeting(ctx context.Context, kind data.RelationKind, targetId string) (int, error) {
	keyEx := expression.Key("GS1-PK").Equal(expression.Value(data.RelationTargetKey(kind, targetId)))
	return rs.repo(kind).DeleteAll(ctx, keyEx, true)
}
