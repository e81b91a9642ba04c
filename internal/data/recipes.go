package data

import (
	"context"
	"time"
)

type RecipeIngredientDTO struct {
	IngredientId    string `dynamodbav:"ingredientId"`
	Name            string `dynamodbav:"name"`
	MeasurementUnit string `dynamodbav:"measurementUnit"`
	Amount          int    `dynamodbav:"amount"`
}

type RecipeDTO struct {
	PK          string                `dynamodbav:"PK"`
	SK          string                `dynamodbav:"SK"`
	FirstIndex  string                `dynamodbav:"GS1-PK"`
	FirstSort   string                `dynamodbav:"GS1-SK"`
	Author      string                `dynamodbav:"author"`
	Name        string                `dynamodbav:"name"`
	Text        string                `dynamodbav:"text"`
	CookingTime int                   `dynamodbav:"cookingTime"`
	Image       string                `dynamodbav:"image"`
	Ingredients []RecipeIngredientDTO `dynamodbav:"ingredients"`
	CreateTime  time.Time             `dynamodbav:"createTime"`
	UpdateTime  time.Time             `dynamodbav:"updateTime"`
}

func (r RecipeDTO) Id() string {
	return r.SK
}

type IngredientAmountDTO struct {
	Id     string `json:"id" validate:"required"`
	Amount int    `json:"amount" validate:"min=1"`
}

type RecipeInputDTO struct {
	Name        string                `json:"name" validate:"required,max=256"`
	Text        string                `json:"text" validate:"required"`
	CookingTime int                   `json:"cooking_time" validate:"min=1"`
	Image       string                `json:"image" validate:"required"`
	Ingredients []IngredientAmountDTO `json:"ingredients" validate:"required,min=1,unique=Id,dive"`
}

type RecipeRepository interface {
	Get(ctx context.Context, recipeId string) (RecipeDTO, error)
	// BatchGet silently skips ids that no longer exist.
	BatchGet(ctx context.Context, recipeIds []string) (map[string]RecipeDTO, error)
	Create(ctx context.Context, authorId string, input RecipeInputDTO, lines []RecipeIngredientDTO) (RecipeDTO, error)
	// Update rewrites every field of the recipe, the ingredient lines
	// included, in a single write.
	Update(ctx context.Context, recipeId string, input RecipeInputDTO, lines []RecipeIngredientDTO) (RecipeDTO, error)
	List(ctx context.Context, params QueryParams) (QueryResults[RecipeDTO], error)
	ListByAuthor(ctx context.Context, authorId string, params QueryParams) (QueryResults[RecipeDTO], error)
	CountByAuthor(ctx context.Context, authorId string) (int, error)
	// Delete removes the recipe and every favorite and cart entry for it.
	Delete(ctx context.Context, recipeId string) error
}
