package filters

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

type FilterContext struct {
	Request  *events.APIGatewayV2HTTPRequest
	Response *events.APIGatewayV2HTTPResponse
	Context  *context.Context
}

type RequestFilter interface {
	Filter(ctx *FilterContext) (*FilterContext, bool)
}

type CorsFilter struct {
	Methods []string
	Origins []string
	Headers []string
}

func (cf *CorsFilter) Filter(ctx *FilterContext) (*FilterContext, bool) {
	if ctx.Request.RequestContext.HTTP.Method == "OPTIONS" {
		headers := ctx.Response.Headers
		if headers == nil {
			headers = make(map[string]string, 4)
		}
		headers["content-length"] = "0"
		headers["access-control-allow-headers"] = strings.Join(cf.Headers, ", ")
		headers["access-control-allow-methods"] = strings.Join(cf.Methods, ", ")
		headers["access-control-allow-origin"] = strings.Join(cf.Origins, ", ")
		return &FilterContext{
			Request: ctx.Request,
			Context: ctx.Context,
			Response: &events.APIGatewayV2HTTPResponse{
				Headers:    headers,
				StatusCode: ctx.Response.StatusCode,
			},
		}, true
	}
	return ctx, false
}

type contextKey string

const emailKey contextKey = "Email"

// Email returns the verified email the authorizer attached to the request.
func Email(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok && email != ""
}

func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey, email)
}

// AuthenticationFilter lifts the caller's email out of the authorizer
// claims. Reads and public routes pass anonymously, every other request
// needs an identity.
type AuthenticationFilter struct {
	ClaimField string
	Public     map[string]bool
}

func (af *AuthenticationFilter) Identity(request *events.APIGatewayV2HTTPRequest) (string, bool) {
	authorizer := request.RequestContext.Authorizer
	if authorizer == nil {
		return "", false
	}
	if authorizer.JWT != nil {
		if email, ok := authorizer.JWT.Claims[af.ClaimField]; ok && email != "" {
			return email, true
		}
	}
	if value, ok := authorizer.Lambda[af.ClaimField]; ok {
		if email, ok := value.(string); ok && email != "" {
			return email, true
		}
	}
	return "", false
}

func (af *AuthenticationFilter) Filter(ctx *FilterContext) (*FilterContext, bool) {
	if email, ok := af.Identity(ctx.Request); ok {
		authorized := WithEmail(*ctx.Context, email)
		return &FilterContext{
			Request:  ctx.Request,
			Response: ctx.Response,
			Context:  &authorized,
		}, false
	}
	method := ctx.Request.RequestContext.HTTP.Method
	if method == "GET" || af.Public[method+":"+strings.TrimSuffix(ctx.Request.RawPath, "/")] {
		return ctx, false
	}
	body, _ := json.Marshal(map[string]string{"message": "Unauthorized"})
	return &FilterContext{
		Request: ctx.Request,
		Context: ctx.Context,
		Response: &events.APIGatewayV2HTTPResponse{
			Headers: map[string]string{
				"Content-Type":   "application/json",
				"Content-Length": strconv.Itoa(len(body)),
			},
			StatusCode: 401,
			Body:       string(body),
		},
	}, true
}

func DefaultFilterContext(event events.APIGatewayV2HTTPRequest, ctx context.Context) *FilterContext {
	return &FilterContext{
		Request: &event,
		Response: &events.APIGatewayV2HTTPResponse{
			StatusCode: 200,
		},
		Context: &ctx,
	}
}

func DefaultCorsFilter() *CorsFilter {
	return &CorsFilter{
		Methods: []string{"GET", "PUT", "PATCH", "POST", "DELETE"},
		Headers: []string{"Content-Type", "Content-Length", "Authorization"},
		Origins: []string{"*"},
	}
}

func DefaultAuthenticationFilter() *AuthenticationFilter {
	return &AuthenticationFilter{
		ClaimField: "email",
		Public: map[string]bool{
			"POST:/users": true,
		},
	}
}
