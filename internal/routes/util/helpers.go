package util

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/exceptions"
	"philcali.me/foodgram/internal/routes"
	"philcali.me/foodgram/internal/routes/filters"
)

type contextKey string

const userKey contextKey = "User"

// CurrentUser returns the registered user behind the request, or nil for an
// anonymous caller.
func CurrentUser(ctx context.Context) *data.UserDTO {
	if user, ok := ctx.Value(userKey).(data.UserDTO); ok {
		return &user
	}
	return nil
}

func resolveUser(ctx context.Context, users data.UserRepository) (context.Context, error) {
	email, ok := filters.Email(ctx)
	if !ok {
		return ctx, nil
	}
	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		var notFound *exceptions.NotFoundError
		if errors.As(err, &notFound) {
			return ctx, nil
		}
		return ctx, err
	}
	return context.WithValue(ctx, userKey, user), nil
}

// AuthorizedRoute only runs the route for a caller registered as a user.
func AuthorizedRoute(users data.UserRepository, route routes.Route) routes.Route {
	return func(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
		ctx, err := resolveUser(ctx, users)
		if err != nil {
			return events.APIGatewayV2HTTPResponse{}, err
		}
		if CurrentUser(ctx) == nil {
			return events.APIGatewayV2HTTPResponse{}, exceptions.Unauthorized()
		}
		return route(event, ctx)
	}
}

// ViewerRoute resolves the caller when there is one, letting anonymous
// callers through.
func ViewerRoute(users data.UserRepository, route routes.Route) routes.Route {
	return func(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
		ctx, err := resolveUser(ctx, users)
		if err != nil {
			return events.APIGatewayV2HTTPResponse{}, err
		}
		return route(event, ctx)
	}
}

func RequestParam(ctx context.Context, name string) string {
	return routes.RequestParams(ctx)[name]
}

func QueryInt(event events.APIGatewayV2HTTPRequest, name string, fallback int) (int, error) {
	raw, ok := event.QueryStringParameters[name]
	if !ok || raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, exceptions.InvalidInput(fmt.Sprintf("%s parameter was not a positive number.", name))
	}
	return value, nil
}

// QueryFlag reads a boolean filter given as 1/0 or true/false.
func QueryFlag(event events.APIGatewayV2HTTPRequest, name string) (bool, error) {
	raw, ok := event.QueryStringParameters[name]
	if !ok || raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, exceptions.InvalidInput(fmt.Sprintf("%s parameter must be 0 or 1.", name))
	}
	return value, nil
}

func QueryParams(event events.APIGatewayV2HTTPRequest) (data.QueryParams, error) {
	limit, err := QueryInt(event, "limit", 0)
	if err != nil {
		return data.QueryParams{}, err
	}
	params := data.QueryParams{Limit: limit}
	if token, ok := event.QueryStringParameters["nextToken"]; ok && token != "" {
		params.NextToken = &token
	}
	return params, nil
}

func ParseBody(event events.APIGatewayV2HTTPRequest, input interface{}) error {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return exceptions.InvalidInput("Request body is not valid base64.")
		}
		body = decoded
	}
	if len(body) == 0 {
		return exceptions.InvalidInput("Request body is required.")
	}
	if err := json.Unmarshal(body, input); err != nil {
		return exceptions.InvalidInput(err.Error())
	}
	return nil
}

func SerializeResponse[T interface{}, R interface{}](delayed func(T) R, thing T, err error, statusCode int) (events.APIGatewayV2HTTPResponse, error) {
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	body, err := json.Marshal(delayed(thing))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	headers := map[string]string{
		"Content-Type":   "application/json",
		"Content-Length": strconv.Itoa(len(body)),
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

func Identity[T interface{}](thing T) T {
	return thing
}

func SerializeResponseOK[T interface{}, R interface{}](delayed func(T) R, thing T, err error) (events.APIGatewayV2HTTPResponse, error) {
	return SerializeResponse(delayed, thing, err, 200)
}

func SerializeResponseCreated[T interface{}, R interface{}](delayed func(T) R, thing T, err error) (events.APIGatewayV2HTTPResponse, error) {
	return SerializeResponse(delayed, thing, err, 201)
}

func SerializeResponseNoContent(err error) (events.APIGatewayV2HTTPResponse, error) {
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: 204,
	}, nil
}

// SerializeAttachment returns plain text the browser saves as filename.
func SerializeAttachment(body string, filename string, err error) (events.APIGatewayV2HTTPResponse, error) {
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: 200,
		Headers: map[string]string{
			"Content-Type":        "text/plain; charset=utf-8",
			"Content-Length":      strconv.Itoa(len(body)),
			"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filename),
		},
		Body: body,
	}, nil
}

func Redirect(location string) (events.APIGatewayV2HTTPResponse, error) {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: 302,
		Headers: map[string]string{
			"Location": location,
		},
	}, nil
}

func MapOnList[D interface{}, R interface{}](items []D, thunk func(D) R) []R {
	mapped := make([]R, len(items))
	for i, item := range items {
		mapped[i] = thunk(item)
	}
	return mapped
}
