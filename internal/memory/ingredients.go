package memory

import (
	"context"
	"strings"

	"golang.org/x/exp/slices"
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/exceptions"
)

type IngredientStore struct {
	store *Store
}

func (is *IngredientStore) Get(ctx context.Context, ingredientId string) (data.IngredientDTO, error) {
	is.store.mu.RLock()
	defer is.store.mu.RUnlock()
	ingredient, ok := is.store.ingredients[ingredientId]
	if !ok {
		return data.IngredientDTO{}, exceptions.NotFound("ingredient", ingredientId)
	}
	return ingredient, nil
}

func (is *IngredientStore) BatchGet(ctx context.Context, ingredientIds []string) (map[string]data.IngredientDTO, error) {
	is.store.mu.RLock()
	defer is.store.mu.RUnlock()
	found := make(map[string]data.IngredientDTO, len(ingredientIds))
	for _, id := range ingredientIds {
		if ingredient, ok := is.store.ingredients[id]; ok {
			found[id] = ingredient
		}
	}
	return found, nil
}

func (is *IngredientStore) Search(ctx context.Context, prefix string) ([]data.IngredientDTO, error) {
	is.store.mu.RLock()
	defer is.store.mu.RUnlock()
	prefix = strings.ToLower(prefix)
	matches := []data.IngredientDTO{}
	for _, ingredient := range is.store.ingredients {
		if strings.HasPrefix(ingredient.FirstSort, prefix) {
			matches = append(matches, ingredient)
		}
	}
	slices.SortFunc(matches, func(a, b data.IngredientDTO) int {
		return strings.Compare(a.FirstSort+"\x00"+a.Name, b.FirstSort+"\x00"+b.Name)
	})
	return matches, nil
}

func (is *IngredientStore) Import(ctx context.Context, inputs []data.IngredientInputDTO) (int, error) {
	is.store.mu.Lock()
	defer is.store.mu.Unlock()
	now := is.store.tick()
	written := make(map[string]bool, len(inputs))
	for _, input := range inputs {
		id := data.IngredientId(input.Name)
		written[id] = true
		is.store.ingredients[id] = data.IngredientDTO{
			PK:              data.GlobalKey("Ingredient"),
			SK:              id,
			FirstIndex:      data.INGREDIENT_INDEX,
			FirstSort:       strings.ToLower(input.Name),
			Name:            input.Name,
			MeasurementUnit: input.MeasurementUnit,
			CreateTime:      now,
		}
	}
	return len(written), nil
}
