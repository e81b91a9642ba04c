// Package auth resolves bearer tokens into the caller's email for the API
// gateway authorizer.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"philcali.me/foodgram/internal/logging"
)

const EMAIL_CLAIM = "email"

type Authorizer interface {
	Authorize(ctx context.Context, bearerToken string) (*events.APIGatewayV2CustomAuthorizerSimpleResponse, error)
}

// UserInfoAuthorizer trades the bearer token for the identity pool's user
// info and passes the email claim on to the routes.
type UserInfoAuthorizer struct {
	PoolURL string
	Client  *http.Client
}

func NewUserInfoAuthorizer(poolURL string) *UserInfoAuthorizer {
	return &UserInfoAuthorizer{
		PoolURL: strings.TrimSuffix(poolURL, "/"),
		Client:  http.DefaultClient,
	}
}

func (ua *UserInfoAuthorizer) Authorize(ctx context.Context, bearerToken string) (*events.APIGatewayV2CustomAuthorizerSimpleResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/oauth2/userInfo", ua.PoolURL), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Authorization", bearerToken)
	resp, err := ua.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info rejected token with status %d", resp.StatusCode)
	}
	var claims map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}
	email, ok := claims[EMAIL_CLAIM].(string)
	if !ok || email == "" {
		return nil, fmt.Errorf("user info is missing the %s claim", EMAIL_CLAIM)
	}
	return &events.APIGatewayV2CustomAuthorizerSimpleResponse{
		IsAuthorized: true,
		Context: map[string]interface{}{
			EMAIL_CLAIM: email,
		},
	}, nil
}

// HandleRequest tries each authorizer in turn. A request without a token, or
// one every authorizer rejects, is denied rather than failed.
func HandleRequest(ctx context.Context, event events.APIGatewayV2CustomAuthorizerV2Request, authorizers ...Authorizer) events.APIGatewayV2CustomAuthorizerSimpleResponse {
	denied := events.APIGatewayV2CustomAuthorizerSimpleResponse{
		IsAuthorized: false,
	}
	bearerToken, ok := event.Headers["authorization"]
	if !ok || bearerToken == "" {
		return denied
	}
	for _, authorizer := range authorizers {
		resp, err := authorizer.Authorize(ctx, bearerToken)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Skipping authorizer")
			continue
		}
		if resp != nil {
			return *resp
		}
	}
	return denied
}
