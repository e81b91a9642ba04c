// Package recipes creates, replaces and deletes recipes on behalf of their
// authors.
package recipes

import (
	"context"
	"fmt"

	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/exceptions"
	"philcali.me/foodgram/internal/logging"
	"philcali.me/foodgram/internal/notifications"
	"philcali.me/foodgram/internal/validation"
)

type Service struct {
	Recipes       data.RecipeRepository
	Ingredients   data.IngredientRepository
	Notifications notifications.NotificationService
}

func NewService(recipes data.RecipeRepository, ingredients data.IngredientRepository, notifier notifications.NotificationService) *Service {
	if notifier == nil {
		notifier = notifications.NoopNotificationService{}
	}
	return &Service{
		Recipes:       recipes,
		Ingredients:   ingredients,
		Notifications: notifier,
	}
}

func IsOwner(recipe data.RecipeDTO, user *data.UserDTO) bool {
	return user != nil && recipe.Author == user.Id()
}

// lines validates the input and resolves every ingredient reference, copying
// the name and unit onto the line.
func (s *Service) lines(ctx context.Context, input data.RecipeInputDTO) ([]data.RecipeIngredientDTO, error) {
	if err := validation.ValidateStruct(&input); err != nil {
		return nil, err
	}
	ids := make([]string, len(input.Ingredients))
	for i, amount := range input.Ingredients {
		ids[i] = amount.Id
	}
	found, err := s.Ingredients.BatchGet(ctx, ids)
	if err != nil {
		return nil, err
	}
	lines := make([]data.RecipeIngredientDTO, 0, len(input.Ingredients))
	for _, amount := range input.Ingredients {
		ingredient, ok := found[amount.Id]
		if !ok {
			return nil, exceptions.NotFound("ingredient", amount.Id)
		}
		lines = append(lines, data.RecipeIngredientDTO{
			IngredientId:    ingredient.SK,
			Name:            ingredient.Name,
			MeasurementUnit: ingredient.MeasurementUnit,
			Amount:          amount.Amount,
		})
	}
	return lines, nil
}

func (s *Service) Create(ctx context.Context, author data.UserDTO, input data.RecipeInputDTO) (data.RecipeDTO, error) {
	lines, err := s.lines(ctx, input)
	if err != nil {
		return data.RecipeDTO{}, err
	}
	recipe, err := s.Recipes.Create(ctx, author.Id(), input, lines)
	if err != nil {
		return data.RecipeDTO{}, err
	}
	event := notifications.RecipePublished{
		RecipeId:       recipe.Id(),
		Name:           recipe.Name,
		AuthorId:       author.Id(),
		AuthorUsername: author.Username,
	}
	if err := s.Notifications.PublishRecipe(ctx, event); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("recipeId", recipe.Id()).Msg("Failed to announce recipe")
	}
	return recipe, nil
}

func (s *Service) owned(ctx context.Context, editor data.UserDTO, recipeId string) (data.RecipeDTO, error) {
	recipe, err := s.Recipes.Get(ctx, recipeId)
	if err != nil {
		return data.RecipeDTO{}, err
	}
	if !IsOwner(recipe, &editor) {
		return data.RecipeDTO{}, exceptions.Forbidden("recipe", recipeId)
	}
	return recipe, nil
}

// Update replaces every field of the recipe, ingredient lines included. Lines
// left out of the input are gone afterwards.
func (s *Service) Update(ctx context.Context, editor data.UserDTO, recipeId string, input data.RecipeInputDTO) (data.RecipeDTO, error) {
	if _, err := s.owned(ctx, editor, recipeId); err != nil {
		return data.RecipeDTO{}, err
	}
	lines, err := s.lines(ctx, input)
	if err != nil {
		return data.RecipeDTO{}, err
	}
	updated, err := s.Recipes.Update(ctx, recipeId, input, lines)
	if err != nil {
		return data.RecipeDTO{}, fmt.Errorf("update recipe %s: %w", recipeId, err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, editor data.UserDTO, recipeId string) error {
	if _, err := s.owned(ctx, editor, recipeId); err != nil {
		return err
	}
	return s.Recipes.Delete(ctx, recipeId)
}
