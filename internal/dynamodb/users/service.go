package users

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/dynamodb/relations"
	"philcali.me/foodgram/internal/dynamodb/services"
	"philcali.me/foodgram/internal/dynamodb/token"
	"philcali.me/foodgram/internal/exceptions"
	"philcali.me/foodgram/internal/logging"
)

const (
	EMAIL_GUARD    = "UserEmail"
	USERNAME_GUARD = "Username"
)

// guardDTO reserves a unique value for the user holding it.
type guardDTO struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	UserId string `dynamodbav:"userId"`
}

// RecipeCleaner is the part of the recipe store a user deletion needs.
type RecipeCleaner interface {
	ListIdsByAuthor(ctx context.Context, authorId string) ([]string, error)
	Delete(ctx context.Context, recipeId string) error
}

type UserDynamoDBService struct {
	services.RepositoryDynamoDBService[data.UserDTO]
	Recipes   RecipeCleaner
	Relations *relations.RelationDynamoDBService
}

func NewUserService(tableName string, indexName string, client *dynamodb.Client, marshaler token.TokenMarshaler, recipes RecipeCleaner, relations *relations.RelationDynamoDBService) *UserDynamoDBService {
	return &UserDynamoDBService{
		RepositoryDynamoDBService: services.RepositoryDynamoDBService[data.UserDTO]{
			DynamoDB:       client,
			TableName:      tableName,
			IndexName:      indexName,
			TokenMarshaler: marshaler,
			Name:           "User",
			GetSK:          data.UserDTO.Id,
		},
		Recipes:   recipes,
		Relations: relations,
	}
}

func partition() string {
	return data.GlobalKey("User")
}

func conditionalPut(tableName string, item interface{}) (types.TransactWriteItem, error) {
	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return types.TransactWriteItem{}, err
	}
	expr, err := expression.NewBuilder().WithCondition(expression.Name("PK").AttributeNotExists()).Build()
	if err != nil {
		return types.TransactWriteItem{}, err
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:                aws.String(tableName),
			Item:                     marshaled,
			ConditionExpression:      expr.Condition(),
			ExpressionAttributeNames: expr.Names(),
		},
	}, nil
}

// Create writes the user together with the email and username guards in a
// single transaction, so a taken value fails the whole registration.
func (us *UserDynamoDBService) Create(ctx context.Context, input data.UserInputDTO) (data.UserDTO, error) {
	gid, err := uuid.NewV7()
	if err != nil {
		return data.UserDTO{}, err
	}
	now := time.Now()
	user := data.UserDTO{
		PK:         partition(),
		SK:         gid.String(),
		FirstIndex: data.USER_INDEX,
		FirstSort:  input.Username,
		Email:      input.Email,
		Username:   input.Username,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		CreateTime: now,
		UpdateTime: now,
	}
	items := []interface{}{
		user,
		guardDTO{PK: data.GlobalKey(EMAIL_GUARD), SK: input.Email, UserId: user.Id()},
		guardDTO{PK: data.GlobalKey(USERNAME_GUARD), SK: input.Username, UserId: user.Id()},
	}
	transactItems := make([]types.TransactWriteItem, len(items))
	for i, item := range items {
		if transactItems[i], err = conditionalPut(us.TableName, item); err != nil {
			return data.UserDTO{}, err
		}
	}
	_, err = us.DynamoDB.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for i, reason := range canceled.CancellationReasons {
			if aws.ToString(reason.Code) != "ConditionalCheckFailed" {
				continue
			}
			switch i {
			case 1:
				return data.UserDTO{}, exceptions.Conflict("user", input.Email)
			case 2:
				return data.UserDTO{}, exceptions.Conflict("user", input.Username)
			}
		}
		return data.UserDTO{}, exceptions.Conflict("user", input.Email)
	}
	if err != nil {
		return data.UserDTO{}, err
	}
	return user, nil
}

func (us *UserDynamoDBService) Get(ctx context.Context, userId string) (data.UserDTO, error) {
	return us.RepositoryDynamoDBService.Get(ctx, partition(), userId)
}

func (us *UserDynamoDBService) GetByEmail(ctx context.Context, email string) (data.UserDTO, error) {
	guards := services.RepositoryDynamoDBService[guardDTO]{
		DynamoDB:  us.DynamoDB,
		TableName: us.TableName,
		Name:      "User",
	}
	guard, err := guards.Get(ctx, data.GlobalKey(EMAIL_GUARD), email)
	if err != nil {
		return data.UserDTO{}, err
	}
	return us.Get(ctx, guard.UserId)
}

func (us *UserDynamoDBService) BatchGet(ctx context.Context, userIds []string) (map[string]data.UserDTO, error) {
	return us.RepositoryDynamoDBService.BatchGet(ctx, partition(), userIds)
}

func (us *UserDynamoDBService) List(ctx context.Context, params data.QueryParams) (data.QueryResults[data.UserDTO], error) {
	keyEx := expression.Key("GS1-PK").Equal(expression.Value(data.USER_INDEX))
	return us.Query(ctx, keyEx, true, data.USER_INDEX, params)
}

func (us *UserDynamoDBService) UpdateAvatar(ctx context.Context, userId string, avatar *string) (data.UserDTO, error) {
	update := expression.Set(expression.Name("updateTime"), expression.Value(time.Now()))
	if avatar == nil {
		update = update.Remove(expression.Name("avatar"))
	} else {
		update = update.Set(expression.Name("avatar"), expression.Value(*avatar))
	}
	return us.Update(ctx, partition(), userId, update)
}

func deleteItem(tableName string, pk string, sk string, mustExist bool) (types.TransactWriteItem, error) {
	key, err := services.GetKey(pk, sk)
	if err != nil {
		return types.TransactWriteItem{}, err
	}
	item := types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(tableName),
			Key:       key,
		},
	}
	if mustExist {
		expr, err := expression.NewBuilder().WithCondition(expression.Name("PK").AttributeExists()).Build()
		if err != nil {
			return types.TransactWriteItem{}, err
		}
		item.Delete.ConditionExpression = expr.Condition()
		item.Delete.ExpressionAttributeNames = expr.Names()
	}
	return item, nil
}

// Delete removes the user's recipes and relations, the subscriptions
// pointing at them, and finally the user with their guards.
func (us *UserDynamoDBService) Delete(ctx context.Context, userId string) error {
	user, err := us.Get(ctx, userId)
	if err != nil {
		return err
	}
	logger := logging.Ctx(ctx).With().Str("userId", userId).Logger()
	recipeIds, err := us.Recipes.ListIdsByAuthor(ctx, userId)
	if err != nil {
		return err
	}
	for _, recipeId := range recipeIds {
		var notFound *exceptions.NotFoundError
		if err := us.Recipes.Delete(ctx, recipeId); err != nil && !errors.As(err, &notFound) {
			return err
		}
	}
	removed := 0
	for _, kind := range []data.RelationKind{data.FAVORITE, data.SHOPPING_CART, data.SUBSCRIPTION} {
		count, err := us.Relations.DeleteHeld(ctx, kind, userId)
		if err != nil {
			return err
		}
		removed += count
	}
	followers, err := us.Relations.DeleteTargeting(ctx, data.SUBSCRIPTION, userId)
	if err != nil {
		return err
	}
	transactItems := make([]types.TransactWriteItem, 3)
	if transactItems[0], err = deleteItem(us.TableName, partition(), userId, true); err != nil {
		return err
	}
	if transactItems[1], err = deleteItem(us.TableName, data.GlobalKey(EMAIL_GUARD), user.Email, false); err != nil {
		return err
	}
	if transactItems[2], err = deleteItem(us.TableName, data.GlobalKey(USERNAME_GUARD), user.Username, false); err != nil {
		return err
	}
	_, err = us.DynamoDB.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		return exceptions.NotFound("user", userId)
	}
	if err != nil {
		return err
	}
	logger.Info().
		Int("recipes", len(recipeIds)).
		Int("relations", removed).
		Int("followers", followers).
		Msg("Deleted user")
	return nil
}
