package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/exceptions"
)

type EncryptMode func(cipher.Block) (cipher.AEAD, error)

type EncryptionTokenMarshaler struct {
	Mode   EncryptMode
	Secret string
}

func NewGCM(secret string) *EncryptionTokenMarshaler {
	return &EncryptionTokenMarshaler{
		Mode:   cipher.NewGCM,
		Secret: secret,
	}
}

type sealed struct {
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
}

func convertLastKeyToToken(lastKey map[string]types.AttributeValue) ([]byte, error) {
	if len(lastKey) == 0 {
		return nil, nil
	}
	token := make(data.NextToken, len(lastKey))
	for key, value := range lastKey {
		innerMap := make(map[string]string, 1)
		switch v := value.(type) {
		case *types.AttributeValueMemberS:
			innerMap["S"] = v.Value
		case *types.AttributeValueMemberN:
			innerMap["N"] = v.Value
		case *types.AttributeValueMemberB:
			innerMap["B"] = base64.StdEncoding.EncodeToString(v.Value)
		}
		token[key] = innerMap
	}
	return json.Marshal(token)
}

func convertTokenToLastKey(token []byte) (map[string]types.AttributeValue, error) {
	var nextToken data.NextToken
	if err := json.Unmarshal(token, &nextToken); err != nil {
		return nil, err
	}
	lastKey := make(map[string]types.AttributeValue, len(nextToken))
	for field, innerMap := range nextToken {
		if sv, ok := innerMap["S"]; ok {
			lastKey[field] = &types.AttributeValueMemberS{Value: sv}
		}
		if nv, ok := innerMap["N"]; ok {
			lastKey[field] = &types.AttributeValueMemberN{Value: nv}
		}
		if bv, ok := innerMap["B"]; ok {
			decoded, err := base64.StdEncoding.DecodeString(bv)
			if err != nil {
				return nil, err
			}
			lastKey[field] = &types.AttributeValueMemberB{Value: decoded}
		}
	}
	return lastKey, nil
}

func (em *EncryptionTokenMarshaler) mode(scope string) (cipher.AEAD, error) {
	hash := sha256.New()
	hash.Write([]byte(em.Secret))
	hash.Write([]byte{0})
	hash.Write([]byte(scope))
	key, err := aes.NewCipher(hash.Sum(nil))
	if err != nil {
		return nil, err
	}
	return em.Mode(key)
}

func (em *EncryptionTokenMarshaler) Marshal(scope string, lastKey map[string]types.AttributeValue) (*string, error) {
	serialized, err := convertLastKeyToToken(lastKey)
	if err != nil || serialized == nil {
		return nil, err
	}
	aesgcm, err := em.mode(scope)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(sealed{
		Ciphertext: hex.EncodeToString(aesgcm.Seal(nil, nonce, serialized, nil)),
		Nonce:      hex.EncodeToString(nonce),
	})
	if err != nil {
		return nil, err
	}
	encoded := base64.URLEncoding.EncodeToString(payload)
	return &encoded, nil
}

// Unmarshal reports any token that fails to decode or decrypt as invalid
// input, never as a server error.
func (em *EncryptionTokenMarshaler) Unmarshal(scope string, token *string) (map[string]types.AttributeValue, error) {
	if token == nil || *token == "" {
		return nil, nil
	}
	invalid := exceptions.InvalidInput("nextToken is invalid")
	decoded, err := base64.URLEncoding.DecodeString(*token)
	if err != nil {
		return nil, invalid
	}
	var payload sealed
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return nil, invalid
	}
	ciphertext, err := hex.DecodeString(payload.Ciphertext)
	if err != nil {
		return nil, invalid
	}
	nonce, err := hex.DecodeString(payload.Nonce)
	if err != nil {
		return nil, invalid
	}
	aesgcm, err := em.mode(scope)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aesgcm.NonceSize() {
		return nil, invalid
	}
	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, invalid
	}
	lastKey, err := convertTokenToLastKey(plaintext)
	if err != nil {
		return nil, invalid
	}
	return lastKey, nil
}
