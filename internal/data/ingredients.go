package data

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Ingredient ids are name based so that the key itself keeps names unique.
var ingredientNamespace = uuid.MustParse("6f1c3f3e-2a57-4c1e-9d4b-2b7f6a1e0c11")

func IngredientId(name string) string {
	return uuid.NewSHA1(ingredientNamespace, []byte(name)).String()
}

type IngredientDTO struct {
	PK              string    `dynamodbav:"PK"`
	SK              string    `dynamodbav:"SK"`
	FirstIndex      string    `dynamodbav:"GS1-PK"`
	FirstSort       string    `dynamodbav:"GS1-SK"`
	Name            string    `dynamodbav:"name"`
	MeasurementUnit string    `dynamodbav:"measurementUnit"`
	CreateTime      time.Time `dynamodbav:"createTime"`
}

type IngredientInputDTO struct {
	Name            string `json:"name" validate:"required,max=128"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=64"`
}

type IngredientRepository interface {
	Get(ctx context.Context, ingredientId string) (IngredientDTO, error)
	BatchGet(ctx context.Context, ingredientIds []string) (map[string]IngredientDTO, error)
	// Search returns every ingredient whose name starts with the prefix,
	// ignoring case, ordered by name.
	Search(ctx context.Context, prefix string) ([]IngredientDTO, error)
	// Import writes the ingredients, overwriting existing ones with the same
	// name, and reports how many were written.
	Import(ctx context.Context, inputs []IngredientInputDTO) (int, error)
}
