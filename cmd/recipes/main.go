package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"philcali.me/foodgram/internal/config"
	ingredientData "philcali.me/foodgram/internal/dynamodb/ingredients"
	recipeData "philcali.me/foodgram/internal/dynamodb/recipes"
	relationData "philcali.me/foodgram/internal/dynamodb/relations"
	"philcali.me/foodgram/internal/dynamodb/token"
	userData "philcali.me/foodgram/internal/dynamodb/users"
	"philcali.me/foodgram/internal/logging"
	"philcali.me/foodgram/internal/notifications"
	recipeService "philcali.me/foodgram/internal/recipes"
	"philcali.me/foodgram/internal/relations"
	"philcali.me/foodgram/internal/routes"
	"philcali.me/foodgram/internal/routes/ingredients"
	"philcali.me/foodgram/internal/routes/recipes"
	"philcali.me/foodgram/internal/routes/users"
	"philcali.me/foodgram/internal/shopping"
	"philcali.me/foodgram/internal/sns/services"
)

type App struct {
	Router routes.Router
}

func NewApp(ctx context.Context, cfg *config.Config) App {
	awsCfg, err := cfg.AWS(ctx)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	if cfg.TokenSecret == "" {
		logging.Fatal().Msg("token_secret is required to sign pagination tokens")
	}
	client := dynamodb.NewFromConfig(awsCfg)
	marshaler := token.NewGCM(cfg.TokenSecret)
	recipeStore := recipeData.NewRecipeService(cfg.TableName, cfg.IndexName, client, marshaler)
	relationStore := relationData.NewRelationService(cfg.TableName, cfg.IndexName, client, marshaler)
	ingredientStore := ingredientData.NewIngredientService(cfg.TableName, cfg.IndexName, client)
	userStore := userData.NewUserService(cfg.TableName, cfg.IndexName, client, marshaler, recipeStore, relationStore)

	var notifier notifications.NotificationService = notifications.NoopNotificationService{}
	if cfg.TopicArn != "" {
		notifier = &services.NotificationSNSService{
			Sns:      sns.NewFromConfig(awsCfg),
			TopicArn: cfg.TopicArn,
		}
	}
	relationService := relations.NewService(relationStore, recipeStore, userStore)
	router := routes.NewRouter(
		ingredients.NewRoute(ingredientStore),
		users.NewRoute(userStore, recipeStore, relationService),
		recipes.NewRoute(
			recipeService.NewService(recipeStore, ingredientStore, notifier),
			relationService,
			shopping.NewService(relationStore, recipeStore, userStore),
			userStore,
			cfg.PublicURL,
		),
	)
	return App{
		Router: *router,
	}
}

func (app *App) HandleRequest(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return app.Router.Invoke(request, ctx), nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	app := NewApp(context.Background(), cfg)
	lambda.Start(app.HandleRequest)
}
