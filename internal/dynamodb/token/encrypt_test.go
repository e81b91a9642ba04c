package token_test

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"philcali.me/foodgram/internal/dynamodb/token"
	"philcali.me/foodgram/internal/exceptions"
)

func TestEncryptionMarshaler(t *testing.T) {
	marshaler := token.NewGCM("secret")
	scope := "Global:Recipe"
	lastKey := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "Global:Recipe"},
		"SK": &types.AttributeValueMemberS{Value: "0190a5c4-recipe"},
	}

	t.Run("thing==Unmarshal(Marshal(thing))", func(t *testing.T) {
		nextToken, err := marshaler.Marshal(scope, lastKey)
		require.NoError(t, err)
		require.NotNil(t, nextToken)
		otherKey, err := marshaler.Unmarshal(scope, nextToken)
		require.NoError(t, err)
		assert.Equal(t, lastKey, otherKey)
	})

	t.Run("len(token)==nil", func(t *testing.T) {
		nextToken, err := marshaler.Marshal(scope, nil)
		require.NoError(t, err)
		assert.Nil(t, nextToken)

		startKey, err := marshaler.Unmarshal(scope, nil)
		require.NoError(t, err)
		assert.Nil(t, startKey)
	})

	t.Run("scopeA!=scopeB", func(t *testing.T) {
		nextToken, err := marshaler.Marshal(scope, lastKey)
		require.NoError(t, err)
		otherKey, err := marshaler.Unmarshal("user-1:Favorite", nextToken)
		var invalid *exceptions.InvalidInputError
		assert.ErrorAs(t, err, &invalid)
		assert.Nil(t, otherKey)
	})

	t.Run("secretA!=secretB", func(t *testing.T) {
		nextToken, err := marshaler.Marshal(scope, lastKey)
		require.NoError(t, err)
		_, err = token.NewGCM("other").Unmarshal(scope, nextToken)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		garbage := "not a token"
		_, err := marshaler.Unmarshal(scope, &garbage)
		assert.Equal(t, 400, exceptions.StatusCode(err))
	})
}
