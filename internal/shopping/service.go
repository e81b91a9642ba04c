// Package shopping turns the recipes in a user's shopping cart into a
// printable shopping list.
package shopping

import (
	"context"

	"philcali.me/foodgram/internal/data"
)

type Service struct {
	Relations data.RelationRepository
	Recipes   data.RecipeRepository
	Users     data.UserRepository
}

func NewService(relations data.RelationRepository, recipes data.RecipeRepository, users data.UserRepository) *Service {
	return &Service{
		Relations: relations,
		Recipes:   recipes,
		Users:     users,
	}
}

// CartRecipes loads the recipes in the user's cart, oldest entry first.
// Entries whose recipe has disappeared are skipped.
func (s *Service) CartRecipes(ctx context.Context, user data.UserDTO) ([]CartRecipe, error) {
	entries, err := s.Relations.ListAll(ctx, data.SHOPPING_CART, user.Id())
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []CartRecipe{}, nil
	}
	recipeIds := make([]string, len(entries))
	for i, entry := range entries {
		recipeIds[i] = entry.TargetId
	}
	recipes, err := s.Recipes.BatchGet(ctx, recipeIds)
	if err != nil {
		return nil, err
	}
	authorIds := make([]string, 0, len(recipes))
	for _, recipe := range recipes {
		authorIds = append(authorIds, recipe.Author)
	}
	authors, err := s.Users.BatchGet(ctx, authorIds)
	if err != nil {
		return nil, err
	}
	cart := make([]CartRecipe, 0, len(recipes))
	for _, recipeId := range recipeIds {
		recipe, ok := recipes[recipeId]
		if !ok {
			continue
		}
		cart = append(cart, CartRecipe{
			Recipe:         recipe,
			AuthorUsername: authors[recipe.Author].Username,
		})
	}
	return cart, nil
}

func (s *Service) Report(ctx context.Context, user data.UserDTO) (Report, error) {
	cart, err := s.CartRecipes(ctx, user)
	if err != nil {
		return Report{}, err
	}
	return Aggregate(user.Username, cart), nil
}
