package recipes

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/dynamodb/services"
	"philcali.me/foodgram/internal/dynamodb/token"
	"philcali.me/foodgram/internal/logging"
)

// RecipeDynamoDBService stores every recipe in one global partition, with
// the author's recipes reachable through GS1. Ids are time ordered, so both
// read in creation order.
type RecipeDynamoDBService struct {
	services.RepositoryDynamoDBService[data.RecipeDTO]
}

func NewRecipeService(tableName string, indexName string, client *dynamodb.Client, marshaler token.TokenMarshaler) *RecipeDynamoDBService {
	return &RecipeDynamoDBService{
		RepositoryDynamoDBService: services.RepositoryDynamoDBService[data.RecipeDTO]{
			DynamoDB:       client,
			TableName:      tableName,
			IndexName:      indexName,
			TokenMarshaler: marshaler,
			Name:           "Recipe",
			GetSK:          data.RecipeDTO.Id,
		},
	}
}

func partition() string {
	return data.GlobalKey("Recipe")
}

func (rs *RecipeDynamoDBService) Get(ctx context.Context, recipeId string) (data.RecipeDTO, error) {
	return rs.RepositoryDynamoDBService.Get(ctx, partition(), recipeId)
}

func (rs *RecipeDynamoDBService) BatchGet(ctx context.Context, recipeIds []string) (map[string]data.RecipeDTO, error) {
	return rs.RepositoryDynamoDBService.BatchGet(ctx, partition(), recipeIds)
}

func (rs *RecipeDynamoDBService) Create(ctx context.Context, authorId string, input data.RecipeInputDTO, lines []data.RecipeIngredientDTO) (data.RecipeDTO, error) {
	gid, err := uuid.NewV7()
	if err != nil {
		return data.RecipeDTO{}, err
	}
	now := time.Now()
	recipe := data.RecipeDTO{
		PK:          partition(),
		SK:          gid.String(),
		FirstIndex:  data.AuthorRecipesKey(authorId),
		FirstSort:   gid.String(),
		Author:      authorId,
		Name:        input.Name,
		Text:        input.Text,
		CookingTime: input.CookingTime,
		Image:       input.Image,
		Ingredients: lines,
		CreateTime:  now,
		UpdateTime:  now,
	}
	if err := rs.RepositoryDynamoDBService.Create(ctx, recipe); err != nil {
		return data.RecipeDTO{}, err
	}
	return recipe, nil
}

func (rs *RecipeDynamoDBService) Update(ctx context.Context, recipeId string, input data.RecipeInputDTO, lines []data.RecipeIngredientDTO) (data.RecipeDTO, error) {
	update := expression.Set(expression.Name("updateTime"), expression.Value(time.Now())).
		Set(expression.Name("name"), expression.Value(input.Name)).
		Set(expression.Name("text"), expression.Value(input.Text)).
		Set(expression.Name("cookingTime"), expression.Value(input.CookingTime)).
		Set(expression.Name("image"), expression.Value(input.Image)).
		Set(expression.Name("ingredients"), expression.Value(lines))
	return rs.RepositoryDynamoDBService.Update(ctx, partition(), recipeId, update)
}

func (rs *RecipeDynamoDBService) List(ctx context.Context, params data.QueryParams) (data.QueryResults[data.RecipeDTO], error) {
	keyEx := expression.Key("PK").Equal(expression.Value(partition()))
	return rs.Query(ctx, keyEx, false, partition(), params)
}

func authorKey(authorId string) expression.KeyConditionBuilder {
	return expression.Key("GS1-PK").Equal(expression.Value(data.AuthorRecipesKey(authorId)))
}

func (rs *RecipeDynamoDBService) ListByAuthor(ctx context.Context, authorId string, params data.QueryParams) (data.QueryResults[data.RecipeDTO], error) {
	return rs.Query(ctx, authorKey(authorId), true, data.AuthorRecipesKey(authorId), params)
}

func (rs *RecipeDynamoDBService) CountByAuthor(ctx context.Context, authorId string) (int, error) {
	return rs.Count(ctx, authorKey(authorId), true)
}

// ListIdsByAuthor returns the id of every recipe the author owns.
func (rs *RecipeDynamoDBService) ListIdsByAuthor(ctx context.Context, authorId string) ([]string, error) {
	recipes, err := rs.QueryAll(ctx, authorKey(authorId), true)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(recipes))
	for i, recipe := range recipes {
		ids[i] = recipe.Id()
	}
	return ids, nil
}

// Delete removes the recipe, then every favorite and cart entry indexed
// under it. Ingredient lines are embedded and go with the item.
func (rs *RecipeDynamoDBService) Delete(ctx context.Context, recipeId string) error {
	if err := rs.RepositoryDynamoDBService.Delete(ctx, partition(), recipeId); err != nil {
		return err
	}
	targetKey := expression.Key("GS1-PK").Equal(expression.Value(data.RelationTargetKey(data.FAVORITE, recipeId)))
	removed, err := rs.DeleteAll(ctx, targetKey, true)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("recipeId", recipeId).Msg("Failed to remove relations of deleted recipe")
		return err
	}
	logging.Ctx(ctx).Debug().Str("recipeId", recipeId).Int("relations", removed).Msg("Deleted recipe")
	return nil
}
