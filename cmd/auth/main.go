package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"philcali.me/foodgram/internal/auth"
	"philcali.me/foodgram/internal/config"
	"philcali.me/foodgram/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if cfg.AuthPoolURL == "" {
		logging.Fatal().Msg("auth_pool_url is required for the authorizer")
	}
	pool := auth.NewUserInfoAuthorizer(cfg.AuthPoolURL)
	lambda.Start(func(ctx context.Context, event events.APIGatewayV2CustomAuthorizerV2Request) (events.APIGatewayV2CustomAuthorizerSimpleResponse, error) {
		ctx = logging.ContextWithRequestId(ctx, event.RequestContext.RequestID)
		return auth.HandleRequest(ctx, event, pool), nil
	})
}
