package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPool(t *testing.T, status int, body string) *UserInfoAuthorizer {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth2/userInfo", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return NewUserInfoAuthorizer(server.URL + "/")
}

func request(token string) events.APIGatewayV2CustomAuthorizerV2Request {
	headers := map[string]string{}
	if token != "" {
		headers["authorization"] = token
	}
	return events.APIGatewayV2CustomAuthorizerV2Request{Headers: headers}
}

func TestUserInfoAuthorizer(t *testing.T) {
	pool := newPool(t, http.StatusOK, `{"sub":"123","email":"cook@example.com"}`)

	resp, err := pool.Authorize(context.TODO(), "Bearer good")
	require.NoError(t, err)
	assert.True(t, resp.IsAuthorized)
	assert.Equal(t, "cook@example.com", resp.Context[EMAIL_CLAIM])

	_, err = pool.Authorize(context.TODO(), "Bearer bad")
	assert.ErrorContains(t, err, "401")
}

func TestUserInfoAuthorizerMissingEmail(t *testing.T) {
	pool := newPool(t, http.StatusOK, `{"sub":"123"}`)
	_, err := pool.Authorize(context.TODO(), "Bearer good")
	assert.ErrorContains(t, err, "missing the email claim")
}

func TestHandleRequest(t *testing.T) {
	pool := newPool(t, http.StatusOK, `{"email":"cook@example.com"}`)

	assert.False(t, HandleRequest(context.TODO(), request(""), pool).IsAuthorized)
	assert.False(t, HandleRequest(context.TODO(), request("Bearer bad"), pool).IsAuthorized)

	resp := HandleRequest(context.TODO(), request("Bearer good"), pool)
	assert.True(t, resp.IsAuthorized)
	assert.Equal(t, "cook@example.com", resp.Context[EMAIL_CLAIM])
}
