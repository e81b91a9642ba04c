package token

import "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

// TokenMarshaler turns a DynamoDB last evaluated key into an opaque page
// token. A token only unmarshals under the scope that produced it.
type TokenMarshaler interface {
	Marshal(scope string, lastKey map[string]types.AttributeValue) (*string, error)

	Unmarshal(scope string, token *string) (map[string]types.AttributeValue, error)
}
