package memory

import (
	"context"
	"time"

	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/exceptions"
)

type RecipeStore struct {
	store *Store
}

func (rs *RecipeStore) Get(ctx context.Context, recipeId string) (data.RecipeDTO, error) {
	rs.store.mu.RLock()
	defer rs.store.mu.RUnlock()
	recipe, ok := rs.store.recipes[recipeId]
	if !ok {
		return data.RecipeDTO{}, exceptions.NotFound("recipe", recipeId)
	}
	return recipe, nil
}

func (rs *RecipeStore) BatchGet(ctx context.Context, recipeIds []string) (map[string]data.RecipeDTO, error) {
	rs.store.mu.RLock()
	defer rs.store.mu.RUnlock()
	found := make(map[string]data.RecipeDTO, len(recipeIds))
	for _, id := range recipeIds {
		if recipe, ok := rs.store.recipes[id]; ok {
			found[id] = recipe
		}
	}
	return found, nil
}

func copyLines(lines []data.RecipeIngredientDTO) []data.RecipeIngredientDTO {
	copied := make([]data.RecipeIngredientDTO, len(lines))
	copy(copied, lines)
	return copied
}

func (rs *RecipeStore) Create(ctx context.Context, authorId string, input data.RecipeInputDTO, lines []data.RecipeIngredientDTO) (data.RecipeDTO, error) {
	rs.store.mu.Lock()
	defer rs.store.mu.Unlock()
	now := rs.store.tick()
	id := newId()
	recipe := data.RecipeDTO{
		PK:          data.GlobalKey("Recipe"),
		SK:          id,
		FirstIndex:  data.AuthorRecipesKey(authorId),
		FirstSort:   id,
		Author:      authorId,
		Name:        input.Name,
		Text:        input.Text,
		CookingTime: input.CookingTime,
		Image:       input.Image,
		Ingredients: copyLines(lines),
		CreateTime:  now,
		UpdateTime:  now,
	}
	rs.store.recipes[id] = recipe
	return recipe, nil
}

func (rs *RecipeStore) Update(ctx context.Context, recipeId string, input data.RecipeInputDTO, lines []data.RecipeIngredientDTO) (data.RecipeDTO, error) {
	rs.store.mu.Lock()
	defer rs.store.mu.Unlock()
	recipe, ok := rs.store.recipes[recipeId]
	if !ok {
		return data.RecipeDTO{}, exceptions.NotFound("recipe", recipeId)
	}
	recipe.Name = input.Name
	recipe.Text = input.Text
	recipe.CookingTime = input.CookingTime
	recipe.Image = input.Image
	recipe.Ingredients = copyLines(lines)
	recipe.UpdateTime = rs.store.tick()
	rs.store.recipes[recipeId] = recipe
	return recipe, nil
}

func (rs *RecipeStore) filter(keep func(data.RecipeDTO) bool) []data.RecipeDTO {
	rs.store.mu.RLock()
	defer rs.store.mu.RUnlock()
	recipes := []data.RecipeDTO{}
	for _, recipe := range rs.store.recipes {
		if keep(recipe) {
			recipes = append(recipes, recipe)
		}
	}
	byCreateTime(recipes, func(r data.RecipeDTO) time.Time { return r.CreateTime }, data.RecipeDTO.Id)
	return recipes
}

func (rs *RecipeStore) List(ctx context.Context, params data.QueryParams) (data.QueryResults[data.RecipeDTO], error) {
	return page(rs.filter(func(data.RecipeDTO) bool { return true }), params)
}

func (rs *RecipeStore) ListByAuthor(ctx context.Context, authorId string, params data.QueryParams) (data.QueryResults[data.RecipeDTO], error) {
	return page(rs.filter(func(r data.RecipeDTO) bool { return r.Author == authorId }), params)
}

func (rs *RecipeStore) CountByAuthor(ctx context.Context, authorId string) (int, error) {
	return len(rs.filter(func(r data.RecipeDTO) bool { return r.Author == authorId })), nil
}

func (rs *RecipeStore) Delete(ctx context.Context, recipeId string) error {
	rs.store.mu.Lock()
	defer rs.store.mu.Unlock()
	if _, ok := rs.store.recipes[recipeId]; !ok {
		return exceptions.NotFound("recipe", recipeId)
	}
	rs.store.deleteRecipeLocked(recipeId)
	return nil
}
