package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/memory"
	"philcali.me/foodgram/internal/relations"
)

func TestWithRecipesLimit(t *testing.T) {
	ctx := context.TODO()
	store := memory.NewStore()
	author, err := store.Users().Create(ctx, data.UserInputDTO{Email: "baker@example.com", Username: "baker", FirstName: "B", LastName: "K"})
	require.NoError(t, err)
	total := data.MAX_LIMIT + 5
	for i := 0; i < total; i++ {
		_, err := store.Recipes().Create(ctx, author.Id(), data.RecipeInputDTO{Name: "Bun", Text: "Bake.", CookingTime: 5, Image: "bun.png"}, nil)
		require.NoError(t, err)
	}
	presenter := &Presenter{
		Relations: relations.NewService(store.Relations(), store.Recipes(), store.Users()),
		Recipes:   store.Recipes(),
	}

	for limit, expected := range map[int]int{
		NO_RECIPES_LIMIT:   total,
		0:                  0,
		3:                  3,
		data.MAX_LIMIT + 1: data.MAX_LIMIT + 1,
		total + 10:         total,
	} {
		views, err := presenter.WithRecipes(ctx, nil, []data.UserDTO{author}, limit)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Len(t, views[0].Recipes, expected, "recipes_limit=%d", limit)
		assert.NotNil(t, views[0].Recipes)
		assert.Equal(t, total, views[0].RecipesCount)
	}
}
