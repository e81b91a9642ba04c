package ingredients

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/dynamodb/services"
)

type IngredientDynamoDBService struct {
	services.RepositoryDynamoDBService[data.IngredientDTO]
}

func NewIngredientService(tableName string, indexName string, client *dynamodb.Client) *IngredientDynamoDBService {
	return &IngredientDynamoDBService{
		RepositoryDynamoDBService: services.RepositoryDynamoDBService[data.IngredientDTO]{
			DynamoDB:  client,
			TableName: tableName,
			IndexName: indexName,
			Name:      "Ingredient",
			GetSK: func(i data.IngredientDTO) string {
				return i.SK
			},
		},
	}
}

func partition() string {
	return data.GlobalKey("Ingredient")
}

func (is *IngredientDynamoDBService) Get(ctx context.Context, ingredientId string) (data.IngredientDTO, error) {
	return is.RepositoryDynamoDBService.Get(ctx, partition(), ingredientId)
}

func (is *IngredientDynamoDBService) BatchGet(ctx context.Context, ingredientIds []string) (map[string]data.IngredientDTO, error) {
	return is.RepositoryDynamoDBService.BatchGet(ctx, partition(), ingredientIds)
}

func (is *IngredientDynamoDBService) Search(ctx context.Context, prefix string) ([]data.IngredientDTO, error) {
	keyEx := expression.Key("GS1-PK").Equal(expression.Value(data.INGREDIENT_INDEX))
	if prefix != "" {
		keyEx = keyEx.And(expression.Key("GS1-SK").BeginsWith(strings.ToLower(prefix)))
	}
	return is.QueryAll(ctx, keyEx, true)
}

// Import overwrites ingredients by name. Names repeated in the input keep
// their last unit.
func (is *IngredientDynamoDBService) Import(ctx context.Context, inputs []data.IngredientInputDTO) (int, error) {
	now := time.Now()
	positions := make(map[string]int, len(inputs))
	var items []map[string]types.AttributeValue
	for _, input := range inputs {
		id := data.IngredientId(input.Name)
		item, err := attributevalue.MarshalMap(data.IngredientDTO{
			PK:              partition(),
			SK:              id,
			FirstIndex:      data.INGREDIENT_INDEX,
			FirstSort:       strings.ToLower(input.Name),
			Name:            input.Name,
			MeasurementUnit: input.MeasurementUnit,
			CreateTime:      now,
		})
		if err != nil {
			return 0, err
		}
		if position, ok := positions[id]; ok {
			items[position] = item
			continue
		}
		positions[id] = len(items)
		items = append(items, item)
	}
	if err := services.PutItems(ctx, is.DynamoDB, is.TableName, items); err != nil {
		return 0, err
	}
	return len(items), nil
}
