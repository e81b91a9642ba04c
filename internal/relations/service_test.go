package relations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/exceptions"
	"philcali.me/foodgram/internal/memory"
	"philcali.me/foodgram/internal/relations"
)

type fixture struct {
	service *relations.Service
	alice   data.UserDTO
	bob     data.UserDTO
	recipe  data.RecipeDTO
}

func newFixture(t *testing.T) fixture {
	store := memory.NewStore()
	ctx := context.TODO()
	alice, err := store.Users().Create(ctx, data.UserInputDTO{
		Email:     "alice@example.com",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Smith",
	})
	require.NoError(t, err)
	bob, err := store.Users().Create(ctx, data.UserInputDTO{
		Email:     "bob@example.com",
		Username:  "bob",
		FirstName: "Bob",
		LastName:  "Jones",
	})
	require.NoError(t, err)
	recipe, err := store.Recipes().Create(ctx, bob.Id(), data.RecipeInputDTO{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 10,
		Image:       "pancakes.png",
	}, nil)
	require.NoError(t, err)
	return fixture{
		service: relations.NewService(store.Relations(), store.Recipes(), store.Users()),
		alice:   alice,
		bob:     bob,
		recipe:  recipe,
	}
}

func TestAddFavorite(t *testing.T) {
	f := newFixture(t)
	ctx := context.TODO()

	target, err := f.service.Add(ctx, f.alice, f.recipe.Id(), data.FAVORITE)
	require.NoError(t, err)
	require.NotNil(t, target.Recipe)
	assert.Nil(t, target.User)
	assert.Equal(t, "Pancakes", target.Recipe.Name)
	assert.Equal(t, f.alice.Id(), target.Relation.UserId)

	_, err = f.service.Add(ctx, f.alice, f.recipe.Id(), data.FAVORITE)
	var conflict *exceptions.ConflictError
	assert.ErrorAs(t, err, &conflict)

	_, err = f.service.Add(ctx, f.alice, f.recipe.Id(), data.SHOPPING_CART)
	assert.NoError(t, err, "cart and favorites are independent")
}

func TestAddMissingTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.TODO()
	var notFound *exceptions.NotFoundError

	_, err := f.service.Add(ctx, f.alice, "missing", data.SHOPPING_CART)
	assert.ErrorAs(t, err, &notFound)

	_, err = f.service.Add(ctx, f.alice, "missing", data.SUBSCRIPTION)
	assert.ErrorAs(t, err, &notFound)
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t)
	ctx := context.TODO()

	_, err := f.service.Add(ctx, f.alice, f.alice.Id(), data.SUBSCRIPTION)
	var invalid *exceptions.InvalidOperationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 400, exceptions.StatusCode(err))

	target, err := f.service.Add(ctx, f.alice, f.bob.Id(), data.SUBSCRIPTION)
	require.NoError(t, err)
	require.NotNil(t, target.User)
	assert.Equal(t, "bob", target.User.Username)

	_, err = f.service.Add(ctx, f.alice, f.bob.Id(), data.SUBSCRIPTION)
	assert.Equal(t, 409, exceptions.StatusCode(err))
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.TODO()

	err := f.service.Remove(ctx, f.alice, f.recipe.Id(), data.FAVORITE)
	var notFound *exceptions.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = f.service.Add(ctx, f.alice, f.recipe.Id(), data.FAVORITE)
	require.NoError(t, err)
	assert.NoError(t, f.service.Remove(ctx, f.alice, f.recipe.Id(), data.FAVORITE))
	assert.ErrorAs(t, f.service.Remove(ctx, f.alice, f.recipe.Id(), data.FAVORITE), &notFound)
}

func TestFlags(t *testing.T) {
	f := newFixture(t)
	ctx := context.TODO()

	flags, err := f.service.Flags(ctx, nil, data.FAVORITE, []string{f.recipe.Id()})
	require.NoError(t, err)
	assert.Empty(t, flags)

	_, err = f.service.Add(ctx, f.alice, f.recipe.Id(), data.FAVORITE)
	require.NoError(t, err)

	flags, err = f.service.Flags(ctx, &f.alice, data.FAVORITE, []string{f.recipe.Id(), "other"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{f.recipe.Id(): true, "other": false}, flags)

	flags, err = f.service.Flags(ctx, &f.bob, data.FAVORITE, []string{f.recipe.Id()})
	require.NoError(t, err)
	assert.False(t, flags[f.recipe.Id()])
}
